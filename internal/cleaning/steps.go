package cleaning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/noshow-cli/internal/appointment"
)

// Rename maps misspelled source columns to corrected names. Names already
// corrected are left alone, and column order is preserved.
func Rename(df dataframe.DataFrame, renames map[string]string) (dataframe.DataFrame, error) {
	names := df.Names()
	next := make([]string, len(names))
	changed := false
	for i, n := range names {
		next[i] = n
		if to, ok := renames[n]; ok && to != n {
			next[i] = to
			changed = true
		}
	}
	if !changed {
		return df, nil
	}
	out, err := withNames(df, next)
	if err != nil {
		return df, fmt.Errorf("rename columns: %w", err)
	}
	return out, nil
}

// DropColumns removes the named columns; names not present are skipped.
func DropColumns(df dataframe.DataFrame, names []string) (dataframe.DataFrame, []string, error) {
	present := map[string]bool{}
	for _, n := range df.Names() {
		present[n] = true
	}
	var drop []string
	for _, n := range names {
		if present[n] {
			drop = append(drop, n)
		}
	}
	if len(drop) == 0 {
		return df, nil, nil
	}
	out := df.Drop(drop)
	if out.Err != nil {
		return out, nil, fmt.Errorf("drop columns: %w", out.Err)
	}
	return out, drop, nil
}

// FilterNegativeAge removes rows whose age is below zero and returns how many
// were removed. The age column is matched case-insensitively so the step works
// before or after name normalization. Unparseable ages are kept and rejected
// later when records are built.
func FilterNegativeAge(df dataframe.DataFrame) (dataframe.DataFrame, int, error) {
	col, ok := findColumn(df, appointment.ColAge)
	if !ok {
		return df, 0, fmt.Errorf("%w: %s", ErrMissingColumn, appointment.ColAge)
	}
	vals := df.Col(col).Records()
	keep := make([]int, 0, len(vals))
	for i, v := range vals {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f < 0 {
			continue
		}
		keep = append(keep, i)
	}
	removed := len(vals) - len(keep)
	if removed == 0 {
		return df, 0, nil
	}
	if len(keep) == 0 {
		return emptyLike(df), removed, nil
	}
	out := df.Subset(keep)
	if out.Err != nil {
		return out, 0, fmt.Errorf("filter negative age: %w", out.Err)
	}
	return out, removed, nil
}

// NormalizeColumnNames lowercases names and replaces '-' with '_'.
// Applying it twice yields the same names as applying it once.
func NormalizeColumnNames(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	names := df.Names()
	norm := make([]string, len(names))
	changed := false
	for i, n := range names {
		norm[i] = NormalizeName(n)
		if norm[i] != n {
			changed = true
		}
	}
	if !changed {
		return df, nil
	}
	out, err := withNames(df, norm)
	if err != nil {
		return df, fmt.Errorf("normalize column names: %w", err)
	}
	return out, nil
}

// NormalizeName is the per-name rule behind NormalizeColumnNames.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// ParseDates converts the scheduling and appointment columns with layout and
// projects the frame into records. Any value that does not match the layout
// fails the whole step with a *DateParseError.
func ParseDates(df dataframe.DataFrame, layout string) ([]appointment.Record, error) {
	cols := map[string][]string{}
	for _, name := range requiredColumns {
		c, ok := findColumn(df, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		cols[name] = df.Col(c).Records()
	}
	n := df.Nrow()
	out := make([]appointment.Record, n)
	for i := 0; i < n; i++ {
		var r appointment.Record
		var err error
		if r.ScheduledAt, err = parseTime(cols, appointment.ColScheduledDay, i, layout); err != nil {
			return nil, err
		}
		if r.AppointmentAt, err = parseTime(cols, appointment.ColAppointment, i, layout); err != nil {
			return nil, err
		}
		ints := []struct {
			col string
			dst *int
		}{
			{appointment.ColAge, &r.Age},
			{appointment.ColScholarship, &r.Scholarship},
			{appointment.ColHypertension, &r.Hypertension},
			{appointment.ColDiabetes, &r.Diabetes},
			{appointment.ColAlcoholism, &r.Alcoholism},
			{appointment.ColHandicap, &r.Handicap},
			{appointment.ColSMSReceived, &r.SMSReceived},
		}
		for _, f := range ints {
			if *f.dst, err = parseInt(cols, f.col, i); err != nil {
				return nil, err
			}
		}
		r.Gender = strings.TrimSpace(cols[appointment.ColGender][i])
		r.Neighbourhood = strings.TrimSpace(cols[appointment.ColNeighbourhood][i])
		r.NoShow = strings.TrimSpace(cols[appointment.ColNoShow][i])
		out[i] = r
	}
	return out, nil
}

// DeriveDaysUntil sets the whole-day distance between the scheduling date and
// the appointment date. Times of day are ignored; negative distances are
// clamped to zero and counted.
func DeriveDaysUntil(in []appointment.Record) ([]appointment.Record, int) {
	out := make([]appointment.Record, len(in))
	clamped := 0
	for i, r := range in {
		d := DaysBetween(r.ScheduledAt, r.AppointmentAt)
		if d < 0 {
			d = 0
			clamped++
		}
		r.DaysUntil = d
		out[i] = r
	}
	return out, clamped
}

// DaysBetween returns the calendar-day difference to-from, ignoring time of day.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

// DeriveWeekday sets the English weekday name of each appointment date.
func DeriveWeekday(in []appointment.Record) []appointment.Record {
	out := make([]appointment.Record, len(in))
	for i, r := range in {
		r.Weekday = r.AppointmentAt.Weekday().String()
		out[i] = r
	}
	return out
}

var requiredColumns = []string{
	appointment.ColGender,
	appointment.ColScheduledDay,
	appointment.ColAppointment,
	appointment.ColAge,
	appointment.ColNeighbourhood,
	appointment.ColScholarship,
	appointment.ColHypertension,
	appointment.ColDiabetes,
	appointment.ColAlcoholism,
	appointment.ColHandicap,
	appointment.ColSMSReceived,
	appointment.ColNoShow,
}

func parseTime(cols map[string][]string, col string, row int, layout string) (time.Time, error) {
	v := strings.TrimSpace(cols[col][row])
	t, err := time.Parse(layout, v)
	if err != nil {
		return time.Time{}, &DateParseError{Column: col, Row: row + 1, Value: v, Layout: layout, Err: err}
	}
	return t, nil
}

func parseInt(cols map[string][]string, col string, row int) (int, error) {
	v := strings.TrimSpace(cols[col][row])
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: column %s row %d: %q", ErrInvalidValue, col, row+1, v)
	}
	return int(f), nil
}

// findColumn returns the frame's spelling of name, compared case-insensitively.
func findColumn(df dataframe.DataFrame, name string) (string, bool) {
	for _, n := range df.Names() {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// withNames returns a copy of df carrying names; df itself is left untouched.
func withNames(df dataframe.DataFrame, names []string) (dataframe.DataFrame, error) {
	out := df.Copy()
	if err := out.SetNames(names...); err != nil {
		return df, err
	}
	return out, nil
}

func emptyLike(df dataframe.DataFrame) dataframe.DataFrame {
	names := df.Names()
	types := df.Types()
	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = series.New([]string{}, types[i], n)
	}
	return dataframe.New(cols...)
}

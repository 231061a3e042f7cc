package cleaning

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/KaramelBytes/noshow-cli/internal/appointment"
	"github.com/KaramelBytes/noshow-cli/internal/config"
	"github.com/KaramelBytes/noshow-cli/internal/loader"
)

// Options fixes the cleaning sequence parameters.
type Options struct {
	// Renames maps misspelled source columns to corrected names.
	Renames map[string]string
	// DropColumns lists identifier columns irrelevant to the analysis.
	DropColumns []string
	// DateLayout is the Go time layout of ScheduledDay/AppointmentDay.
	DateLayout string
}

// DefaultOptions returns the corrections for the no-show appointments dataset.
func DefaultOptions() Options {
	return Options{
		Renames: map[string]string{
			"Hipertension": "Hypertension",
			"Handcap":      "Handicap",
		},
		DropColumns: []string{"PatientId", "AppointmentID"},
		DateLayout:  config.DefaultDateLayout,
	}
}

// Stats records what each step did. Counts are informational only.
type Stats struct {
	RowsIn             int      `json:"rows_in"`
	RowsOut            int      `json:"rows_out"`
	NegativeAgeRemoved int      `json:"negative_age_removed"`
	Renamed            []string `json:"renamed"`
	Dropped            []string `json:"dropped"`
	DaysClamped        int      `json:"days_clamped"`
	// Repeated identifiers are reported, never deduplicated.
	DuplicatePatientIDs     int `json:"duplicate_patient_ids"`
	DuplicateAppointmentIDs int `json:"duplicate_appointment_ids"`
}

// Result is the cleaned table and its bookkeeping.
type Result struct {
	Source  string
	Columns []string
	Records []appointment.Record
	Stats   Stats
}

// Run applies the fixed cleaning sequence to a loaded source. Each step returns a
// new table; the source is not modified.
func Run(src *loader.Source, opt Options, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}
	if opt.DateLayout == "" {
		opt.DateLayout = config.DefaultDateLayout
	}
	df, err := src.Frame()
	if err != nil {
		return nil, err
	}
	st := Stats{RowsIn: df.Nrow()}
	st.DuplicatePatientIDs = repeatedValues(df, "PatientId")
	st.DuplicateAppointmentIDs = repeatedValues(df, "AppointmentID")

	before := df.Names()
	if df, err = Rename(df, opt.Renames); err != nil {
		return nil, err
	}
	for i, n := range df.Names() {
		if n != before[i] {
			st.Renamed = append(st.Renamed, before[i]+"->"+n)
		}
	}

	if df, st.Dropped, err = DropColumns(df, opt.DropColumns); err != nil {
		return nil, err
	}

	if df, st.NegativeAgeRemoved, err = FilterNegativeAge(df); err != nil {
		return nil, err
	}
	if st.NegativeAgeRemoved > 0 {
		log.Info("removed rows with negative age", slog.Int("count", st.NegativeAgeRemoved))
	}

	if df, err = NormalizeColumnNames(df); err != nil {
		return nil, err
	}

	recs, err := ParseDates(df, opt.DateLayout)
	if err != nil {
		return nil, fmt.Errorf("parse dates: %w", err)
	}
	recs, st.DaysClamped = DeriveDaysUntil(recs)
	if st.DaysClamped > 0 {
		log.Info("clamped negative scheduling distances to zero", slog.Int("count", st.DaysClamped))
	}
	recs = DeriveWeekday(recs)
	st.RowsOut = len(recs)

	log.Debug("cleaning finished",
		slog.String("source", src.Name),
		slog.Int("rows_in", st.RowsIn),
		slog.Int("rows_out", st.RowsOut),
		slog.String("renamed", strings.Join(st.Renamed, ",")),
		slog.String("dropped", strings.Join(st.Dropped, ",")),
		slog.Int("duplicate_patient_ids", st.DuplicatePatientIDs))

	cols := append(df.Names(), appointment.ColDaysUntil, appointment.ColWeekday)
	return &Result{Source: src.Name, Columns: cols, Records: recs, Stats: st}, nil
}

// repeatedValues counts rows whose value in col already appeared earlier.
func repeatedValues(df dataframe.DataFrame, col string) int {
	name, ok := findColumn(df, col)
	if !ok {
		return 0
	}
	seen := map[string]struct{}{}
	dup := 0
	for _, v := range df.Col(name).Records() {
		if _, ok := seen[v]; ok {
			dup++
			continue
		}
		seen[v] = struct{}{}
	}
	return dup
}

// Package report turns cleaned appointments into answers for the four
// research questions and renders them as Markdown, JSON, XLSX and terminal
// tables.
package report

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/noshow-cli/internal/aggregate"
	"github.com/KaramelBytes/noshow-cli/internal/appointment"
	"github.com/KaramelBytes/noshow-cli/internal/cleaning"
)

// Findings is everything one analysis run concluded.
type Findings struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Source      string            `json:"source"`
	Rows        int               `json:"rows"`
	Cleaning    cleaning.Stats    `json:"cleaning"`
	Outcomes    []aggregate.Count `json:"outcomes"`
	NoShowRate  float64           `json:"no_show_rate"`

	Age        AgeFinding       `json:"age"`
	Conditions ConditionFinding `json:"conditions"`
	SMS        SMSFinding       `json:"sms"`
	Weekdays   WeekdayFinding   `json:"weekdays"`

	Charts   []string `json:"charts,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Caveats  []string `json:"caveats"`
}

// AgeFinding answers how age is distributed among no-shows and which gender's
// no-shows are older on average.
type AgeFinding struct {
	MeanByOutcome      []aggregate.Mean `json:"mean_by_outcome"`
	NoShowMeanByGender []aggregate.Mean `json:"no_show_mean_by_gender"`
	// OlderNoShowGender is empty when either gender has no no-shows.
	OlderNoShowGender string `json:"older_no_show_gender,omitempty"`
}

// ConditionFinding answers which patient group misses appointments most.
type ConditionFinding struct {
	Sums                   []aggregate.FlagSums `json:"sums"`
	MostCommonAmongNoShows string               `json:"most_common_among_no_shows,omitempty"`
}

// SMSFinding compares attendance with and without an SMS reminder.
type SMSFinding struct {
	Received               []aggregate.Count `json:"received"`
	NotReceived            []aggregate.Count `json:"not_received"`
	NoShowShareReceived    float64           `json:"no_show_share_received"`
	NoShowShareNotReceived float64           `json:"no_show_share_not_received"`
	LowerWithSMS           bool              `json:"lower_with_sms"`
}

// WeekdayFinding ranks weekdays by appointments and by no-shows, fewest first.
type WeekdayFinding struct {
	Appointments []aggregate.Count `json:"appointments"`
	NoShows      []aggregate.Count `json:"no_shows"`
	Busiest      string            `json:"busiest,omitempty"`
	MostNoShows  string            `json:"most_no_shows,omitempty"`
}

// Build computes the findings for a cleaned table.
func Build(res *cleaning.Result, runID string) (*Findings, error) {
	rows := res.Records
	f := &Findings{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Source:      res.Source,
		Rows:        len(rows),
		Cleaning:    res.Stats,
	}
	var err error
	if f.Outcomes, err = aggregate.CountBy(rows, appointment.ColNoShow, aggregate.All, appointment.OutcomeLevels); err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	f.NoShowRate = aggregate.Share(f.Outcomes, appointment.NoShowYes)

	if err := f.buildAge(rows); err != nil {
		return nil, err
	}
	if err := f.buildConditions(rows); err != nil {
		return nil, err
	}
	if err := f.buildSMS(rows); err != nil {
		return nil, err
	}
	if err := f.buildWeekdays(rows); err != nil {
		return nil, err
	}
	f.Caveats = caveats(res.Stats)
	return f, nil
}

func (f *Findings) buildAge(rows []appointment.Record) error {
	var err error
	if f.Age.MeanByOutcome, err = aggregate.MeanBy(rows, appointment.ColNoShow, appointment.ColAge, aggregate.All, appointment.OutcomeLevels); err != nil {
		return fmt.Errorf("mean age by outcome: %w", err)
	}
	noShows := aggregate.Where(appointment.ColNoShow, appointment.NoShowYes)
	if f.Age.NoShowMeanByGender, err = aggregate.MeanBy(rows, appointment.ColGender, appointment.ColAge, noShows, appointment.GenderLevels); err != nil {
		return fmt.Errorf("mean age by gender: %w", err)
	}
	var fem, male aggregate.Mean
	for _, m := range f.Age.NoShowMeanByGender {
		switch m.Group {
		case "F":
			fem = m
		case "M":
			male = m
		}
	}
	if fem.N > 0 && male.N > 0 && fem.Mean != male.Mean {
		f.Age.OlderNoShowGender = "M"
		if fem.Mean > male.Mean {
			f.Age.OlderNoShowGender = "F"
		}
	}
	return nil
}

func (f *Findings) buildConditions(rows []appointment.Record) error {
	var err error
	if f.Conditions.Sums, err = aggregate.SumBy(rows, appointment.ColNoShow, appointment.ConditionColumns, appointment.OutcomeLevels); err != nil {
		return fmt.Errorf("sum conditions: %w", err)
	}
	for _, g := range f.Conditions.Sums {
		if g.Group != appointment.NoShowYes {
			continue
		}
		best := 0.0
		for i, v := range g.Sums {
			if v > best {
				best = v
				f.Conditions.MostCommonAmongNoShows = g.Flags[i]
			}
		}
	}
	return nil
}

func (f *Findings) buildSMS(rows []appointment.Record) error {
	var err error
	if f.SMS.Received, err = aggregate.CountBy(rows, appointment.ColNoShow, aggregate.Where(appointment.ColSMSReceived, "1"), appointment.OutcomeLevels); err != nil {
		return fmt.Errorf("count sms received: %w", err)
	}
	if f.SMS.NotReceived, err = aggregate.CountBy(rows, appointment.ColNoShow, aggregate.Where(appointment.ColSMSReceived, "0"), appointment.OutcomeLevels); err != nil {
		return fmt.Errorf("count sms not received: %w", err)
	}
	f.SMS.NoShowShareReceived = aggregate.Share(f.SMS.Received, appointment.NoShowYes)
	f.SMS.NoShowShareNotReceived = aggregate.Share(f.SMS.NotReceived, appointment.NoShowYes)
	f.SMS.LowerWithSMS = aggregate.Total(f.SMS.Received) > 0 &&
		aggregate.Total(f.SMS.NotReceived) > 0 &&
		f.SMS.NoShowShareReceived < f.SMS.NoShowShareNotReceived
	return nil
}

func (f *Findings) buildWeekdays(rows []appointment.Record) error {
	days, err := aggregate.CountBy(rows, appointment.ColWeekday, aggregate.All, appointment.WeekdayLevels)
	if err != nil {
		return fmt.Errorf("count weekdays: %w", err)
	}
	missed, err := aggregate.CountBy(rows, appointment.ColWeekday, aggregate.Where(appointment.ColNoShow, appointment.NoShowYes), appointment.WeekdayLevels)
	if err != nil {
		return fmt.Errorf("count weekday no-shows: %w", err)
	}
	f.Weekdays.Appointments = aggregate.SortAscending(aggregate.NonZero(days))
	f.Weekdays.NoShows = aggregate.SortAscending(aggregate.NonZero(missed))
	if n := len(f.Weekdays.Appointments); n > 0 {
		f.Weekdays.Busiest = f.Weekdays.Appointments[n-1].Key
	}
	if n := len(f.Weekdays.NoShows); n > 0 {
		f.Weekdays.MostNoShows = f.Weekdays.NoShows[n-1].Key
	}
	return nil
}

func caveats(st cleaning.Stats) []string {
	return []string{
		`no_show keeps the dataset's inverted encoding: "Yes" means the patient did NOT attend, "No" means they attended.`,
		fmt.Sprintf("Rows are not deduplicated: %d repeated patient ids and %d repeated appointment ids were seen before identifiers were dropped.",
			st.DuplicatePatientIDs, st.DuplicateAppointmentIDs),
		fmt.Sprintf("%d rows with negative age were removed.", st.NegativeAgeRemoved),
		fmt.Sprintf("%d appointments dated before their scheduling day had their day distance clamped to 0.", st.DaysClamped),
		"Weekday rankings list only days that have appointments.",
	}
}

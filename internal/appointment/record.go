// Package appointment defines the cleaned appointment record and the column
// names the rest of the pipeline addresses it by.
//
// The no_show column keeps the dataset's encoding: "Yes" means the patient did
// NOT attend. Rows are never deduplicated; the same patient can appear on
// several dates.
package appointment

import (
	"errors"
	"fmt"
	"time"
)

// Column names after normalization.
const (
	ColAge           = "age"
	ColGender        = "gender"
	ColScheduledDay  = "scheduledday"
	ColAppointment   = "appointmentday"
	ColDaysUntil     = "days_until_appointment"
	ColNeighbourhood = "neighbourhood"
	ColScholarship   = "scholarship"
	ColHypertension  = "hypertension"
	ColDiabetes      = "diabetes"
	ColAlcoholism    = "alcoholism"
	ColHandicap      = "handicap"
	ColSMSReceived   = "sms_received"
	ColNoShow        = "no_show"
	ColWeekday       = "weekday"
)

// Attendance outcomes as encoded in no_show.
const (
	NoShowYes = "Yes" // did not attend
	NoShowNo  = "No"  // attended
)

var (
	// OutcomeLevels lists no_show values, attended first.
	OutcomeLevels = []string{NoShowNo, NoShowYes}
	// GenderLevels lists gender codes used by the dataset.
	GenderLevels = []string{"F", "M"}
	// WeekdayLevels lists weekday names in calendar order starting Monday.
	WeekdayLevels = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	// ConditionColumns are the chronic-condition flags compared across outcomes.
	ConditionColumns = []string{ColHypertension, ColDiabetes, ColAlcoholism, ColHandicap}
)

// ErrUnknownColumn is returned when a column name has no accessor.
var ErrUnknownColumn = errors.New("unknown column")

// Record is one scheduled visit after cleaning.
type Record struct {
	Age           int
	Gender        string
	ScheduledAt   time.Time
	AppointmentAt time.Time
	DaysUntil     int
	Neighbourhood string
	Scholarship   int
	Hypertension  int
	Diabetes      int
	Alcoholism    int
	Handicap      int
	SMSReceived   int
	NoShow        string
	Weekday       string
}

// Attended reports whether the patient showed up.
func (r Record) Attended() bool { return r.NoShow == NoShowNo }

// Number returns a numeric column value.
func (r Record) Number(col string) (float64, error) {
	switch col {
	case ColAge:
		return float64(r.Age), nil
	case ColDaysUntil:
		return float64(r.DaysUntil), nil
	case ColScholarship:
		return float64(r.Scholarship), nil
	case ColHypertension:
		return float64(r.Hypertension), nil
	case ColDiabetes:
		return float64(r.Diabetes), nil
	case ColAlcoholism:
		return float64(r.Alcoholism), nil
	case ColHandicap:
		return float64(r.Handicap), nil
	case ColSMSReceived:
		return float64(r.SMSReceived), nil
	}
	return 0, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, col)
}

// Category returns a column value as a group key. Numeric flags are rendered as
// integers so they can be grouped on too.
func (r Record) Category(col string) (string, error) {
	switch col {
	case ColGender:
		return r.Gender, nil
	case ColNeighbourhood:
		return r.Neighbourhood, nil
	case ColNoShow:
		return r.NoShow, nil
	case ColWeekday:
		return r.Weekday, nil
	}
	v, err := r.Number(col)
	if err != nil {
		return "", fmt.Errorf("%w: %q cannot be grouped on", ErrUnknownColumn, col)
	}
	return fmt.Sprintf("%d", int(v)), nil
}

// GenderLabel expands the dataset's gender code for display.
func GenderLabel(code string) string {
	switch code {
	case "F":
		return "Female"
	case "M":
		return "Male"
	}
	return code
}

// OutcomeLabel spells out a no_show value for legends and axis ticks.
func OutcomeLabel(v string) string {
	switch v {
	case NoShowNo:
		return "No (attended)"
	case NoShowYes:
		return "Yes (missed)"
	}
	return v
}

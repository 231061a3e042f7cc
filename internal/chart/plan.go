package chart

import (
	"gonum.org/v1/plot"

	"github.com/KaramelBytes/noshow-cli/internal/aggregate"
	"github.com/KaramelBytes/noshow-cli/internal/appointment"
)

// Figure file stems.
const (
	AgeHistogram       = "age_by_no_show"
	AgeBoxPlot         = "age_by_gender_and_no_show"
	ConditionBars      = "conditions_by_no_show"
	SMSReceivedBars    = "sms_received_by_no_show"
	SMSNotReceivedBars = "sms_not_received_by_no_show"
	WeekdayBars        = "appointments_by_weekday"
	WeekdayNoShowBars  = "no_shows_by_weekday"
)

// Plan computes the aggregates for the standard figure set and returns one job
// per figure. Weekday figures list only days that occur, fewest first.
func Plan(rows []appointment.Record, bins int) ([]Job, error) {
	ages, err := aggregate.DistributionBy(rows, appointment.ColNoShow, appointment.ColAge, appointment.OutcomeLevels)
	if err != nil {
		return nil, err
	}
	boxes, err := aggregate.DistributionBy2(rows, appointment.ColGender, appointment.ColNoShow, appointment.ColAge,
		appointment.GenderLevels, appointment.OutcomeLevels)
	if err != nil {
		return nil, err
	}
	conds, err := aggregate.SumBy(rows, appointment.ColNoShow, appointment.ConditionColumns, appointment.OutcomeLevels)
	if err != nil {
		return nil, err
	}
	smsYes, err := aggregate.CountBy(rows, appointment.ColNoShow, aggregate.Where(appointment.ColSMSReceived, "1"), appointment.OutcomeLevels)
	if err != nil {
		return nil, err
	}
	smsNo, err := aggregate.CountBy(rows, appointment.ColNoShow, aggregate.Where(appointment.ColSMSReceived, "0"), appointment.OutcomeLevels)
	if err != nil {
		return nil, err
	}
	days, err := aggregate.CountBy(rows, appointment.ColWeekday, aggregate.All, appointment.WeekdayLevels)
	if err != nil {
		return nil, err
	}
	missed, err := aggregate.CountBy(rows, appointment.ColWeekday, aggregate.Where(appointment.ColNoShow, appointment.NoShowYes), appointment.WeekdayLevels)
	if err != nil {
		return nil, err
	}
	days = aggregate.SortAscending(aggregate.NonZero(days))
	missed = aggregate.SortAscending(aggregate.NonZero(missed))

	return []Job{
		{
			Spec: Spec{Name: AgeHistogram, Title: "Age distribution by no-show", XLabel: "Age", YLabel: "Frequency", Label: appointment.OutcomeLabel},
			Build: func(s Spec) (*plot.Plot, error) { return Histogram(s, ages, bins) },
		},
		{
			Spec:  Spec{Name: AgeBoxPlot, Title: "Age by gender and no-show", XLabel: "Gender / no-show", YLabel: "Age", Label: boxLabel},
			Build: func(s Spec) (*plot.Plot, error) { return BoxPlot(s, boxes) },
		},
		{
			Spec: Spec{Name: ConditionBars, Title: "Chronic conditions by no-show", XLabel: "Condition", YLabel: "Patients with condition", Label: appointment.OutcomeLabel},
			Build: func(s Spec) (*plot.Plot, error) {
				return GroupedBars(s, conds, appointment.ConditionColumns)
			},
		},
		{
			Spec:  Spec{Name: SMSReceivedBars, Title: "Received SMS", XLabel: "No-show", YLabel: "Appointments", Label: appointment.OutcomeLabel},
			Build: func(s Spec) (*plot.Plot, error) { return Bars(s, smsYes) },
		},
		{
			Spec:  Spec{Name: SMSNotReceivedBars, Title: "Did not receive SMS", XLabel: "No-show", YLabel: "Appointments", Label: appointment.OutcomeLabel},
			Build: func(s Spec) (*plot.Plot, error) { return Bars(s, smsNo) },
		},
		{
			Spec:  Spec{Name: WeekdayBars, Title: "Appointments by weekday", XLabel: "Days of the week", YLabel: "Count of appointment days"},
			Build: func(s Spec) (*plot.Plot, error) { return Bars(s, days) },
		},
		{
			Spec:  Spec{Name: WeekdayNoShowBars, Title: "No-shows by weekday", XLabel: "Days of the week", YLabel: "Missed appointments"},
			Build: func(s Spec) (*plot.Plot, error) { return Bars(s, missed) },
		},
	}, nil
}

// boxLabel handles both gender codes and no_show values, which do not overlap.
func boxLabel(k string) string {
	if g := appointment.GenderLabel(k); g != k {
		return g
	}
	return appointment.OutcomeLabel(k)
}

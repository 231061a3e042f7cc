package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/noshow-cli/internal/aggregate"
	"github.com/KaramelBytes/noshow-cli/internal/appointment"
)

type sheet struct {
	name   string
	header []string
	rows   [][]any
}

// WriteXLSX saves the findings as a workbook with one sheet per question.
func (f *Findings) WriteXLSX(path string) error {
	x := excelize.NewFile()
	defer x.Close()

	sheets := f.sheets()
	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	for i, s := range sheets {
		if i == 0 {
			if err := x.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("xlsx sheet %s: %w", s.name, err)
			}
		} else if _, err := x.NewSheet(s.name); err != nil {
			return fmt.Errorf("xlsx sheet %s: %w", s.name, err)
		}
		if err := writeRow(x, s.name, 1, toAny(s.header)); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(s.header), 1)
		if err := x.SetCellStyle(s.name, "A1", last, bold); err != nil {
			return fmt.Errorf("xlsx style %s: %w", s.name, err)
		}
		for r, row := range s.rows {
			if err := writeRow(x, s.name, r+2, row); err != nil {
				return err
			}
		}
		if err := x.SetColWidth(s.name, "A", "A", 28); err != nil {
			return fmt.Errorf("xlsx width %s: %w", s.name, err)
		}
	}
	if err := x.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

func writeRow(x *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := x.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("xlsx %s row %d: %w", sheet, row, err)
	}
	return nil
}

func (f *Findings) sheets() []sheet {
	summary := sheet{name: "Summary", header: []string{"metric", "value"}, rows: [][]any{
		{"run_id", f.RunID},
		{"source", f.Source},
		{"rows_in", f.Cleaning.RowsIn},
		{"rows", f.Rows},
		{"no_show_rate", f.NoShowRate},
		{"negative_age_removed", f.Cleaning.NegativeAgeRemoved},
		{"days_clamped", f.Cleaning.DaysClamped},
		{"duplicate_patient_ids", f.Cleaning.DuplicatePatientIDs},
		{"duplicate_appointment_ids", f.Cleaning.DuplicateAppointmentIDs},
	}}

	age := sheet{name: "Age", header: []string{"group", "subset", "mean_age", "n"}}
	for _, m := range f.Age.MeanByOutcome {
		age.rows = append(age.rows, []any{appointment.OutcomeLabel(m.Group), "all", m.Mean, m.N})
	}
	for _, m := range f.Age.NoShowMeanByGender {
		age.rows = append(age.rows, []any{appointment.GenderLabel(m.Group), "no-shows", m.Mean, m.N})
	}

	conds := sheet{name: "Conditions", header: append([]string{"no_show"}, appointment.ConditionColumns...)}
	for _, g := range f.Conditions.Sums {
		row := []any{g.Group}
		for _, c := range appointment.ConditionColumns {
			row = append(row, g.Sum(c))
		}
		conds.rows = append(conds.rows, row)
	}

	sms := sheet{name: "SMS", header: []string{"sms_received", "no_show", "count"}}
	sms.rows = append(sms.rows, countRows("1", f.SMS.Received)...)
	sms.rows = append(sms.rows, countRows("0", f.SMS.NotReceived)...)

	days := sheet{name: "Weekdays", header: []string{"ranking", "weekday", "count"}}
	days.rows = append(days.rows, countRows("appointments", f.Weekdays.Appointments)...)
	days.rows = append(days.rows, countRows("no-shows", f.Weekdays.NoShows)...)

	cav := sheet{name: "Caveats", header: []string{"caveat"}}
	for _, c := range f.Caveats {
		cav.rows = append(cav.rows, []any{c})
	}
	return []sheet{summary, age, conds, sms, days, cav}
}

func countRows(prefix string, counts []aggregate.Count) [][]any {
	out := make([][]any, len(counts))
	for i, c := range counts {
		out[i] = []any{prefix, c.Key, c.N}
	}
	return out
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/noshow-cli/internal/aggregate"
	"github.com/KaramelBytes/noshow-cli/internal/appointment"
)

var heading = color.New(color.FgCyan, color.Bold)

// PrintTables writes a compact terminal view of the findings to w.
func (f *Findings) PrintTables(w io.Writer) {
	heading.Fprintf(w, "Run %s: %d appointments, no-show rate %s\n", f.RunID, f.Rows, pct(f.NoShowRate))

	heading.Fprintln(w, "\nAge and gender")
	t := newTable(w, "group", "subset", "mean age", "n")
	for _, m := range f.Age.MeanByOutcome {
		t.Append([]string{appointment.OutcomeLabel(m.Group), "all", mean(m), strconv.Itoa(m.N)})
	}
	for _, m := range f.Age.NoShowMeanByGender {
		t.Append([]string{appointment.GenderLabel(m.Group), "no-shows", mean(m), strconv.Itoa(m.N)})
	}
	t.Render()

	heading.Fprintln(w, "\nPatient groups")
	t = newTable(w, append([]string{"no_show"}, appointment.ConditionColumns...)...)
	for _, g := range f.Conditions.Sums {
		row := []string{appointment.OutcomeLabel(g.Group)}
		for _, c := range appointment.ConditionColumns {
			row = append(row, fmt.Sprintf("%.0f", g.Sum(c)))
		}
		t.Append(row)
	}
	t.Render()

	heading.Fprintln(w, "\nSMS reminders")
	t = newTable(w, "sms", "no_show", "count")
	appendCounts(t, "received", f.SMS.Received)
	appendCounts(t, "not received", f.SMS.NotReceived)
	t.SetFooter([]string{"", "no-show share", pct(f.SMS.NoShowShareReceived) + " / " + pct(f.SMS.NoShowShareNotReceived)})
	t.Render()

	heading.Fprintln(w, "\nWeekdays (fewest first)")
	t = newTable(w, "ranking", "weekday", "count")
	appendCounts(t, "appointments", f.Weekdays.Appointments)
	appendCounts(t, "no-shows", f.Weekdays.NoShows)
	t.Render()

	warn := color.New(color.FgYellow)
	for _, c := range f.Caveats {
		warn.Fprintf(w, "⚠ %s\n", c)
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func appendCounts(t *tablewriter.Table, label string, counts []aggregate.Count) {
	for _, c := range counts {
		key := c.Key
		if key == appointment.NoShowYes || key == appointment.NoShowNo {
			key = appointment.OutcomeLabel(key)
		}
		t.Append([]string{label, key, strconv.Itoa(c.N)})
	}
}

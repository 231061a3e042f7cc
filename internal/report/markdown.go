package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/noshow-cli/internal/aggregate"
	"github.com/KaramelBytes/noshow-cli/internal/appointment"
	"github.com/KaramelBytes/noshow-cli/internal/utils"
)

// Markdown renders the findings as a standalone document.
func (f *Findings) Markdown() string {
	var b strings.Builder
	b.WriteString("[RUN SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", f.RunID))
	b.WriteString(fmt.Sprintf("Generated: %s\n", f.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	if f.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", f.Source))
	}
	b.WriteString(fmt.Sprintf("Rows: %d (read %d)\n", f.Rows, f.Cleaning.RowsIn))
	b.WriteString(fmt.Sprintf("No-show rate: %s\n", pct(f.NoShowRate)))
	writeCounts(&b, f.Outcomes, appointment.OutcomeLabel)

	b.WriteString("\n[CLEANING]\n")
	if len(f.Cleaning.Renamed) > 0 {
		b.WriteString(fmt.Sprintf("- renamed: %s\n", strings.Join(f.Cleaning.Renamed, ", ")))
	}
	if len(f.Cleaning.Dropped) > 0 {
		b.WriteString(fmt.Sprintf("- dropped: %s\n", strings.Join(f.Cleaning.Dropped, ", ")))
	}
	b.WriteString(fmt.Sprintf("- negative ages removed: %d\n", f.Cleaning.NegativeAgeRemoved))
	b.WriteString(fmt.Sprintf("- day distances clamped: %d\n", f.Cleaning.DaysClamped))

	b.WriteString("\n[AGE AND GENDER]\n")
	for _, m := range f.Age.MeanByOutcome {
		b.WriteString(fmt.Sprintf("- mean age, %s: %s (n=%d)\n", appointment.OutcomeLabel(m.Group), mean(m), m.N))
	}
	for _, m := range f.Age.NoShowMeanByGender {
		b.WriteString(fmt.Sprintf("- mean age of %s no-shows: %s (n=%d)\n", appointment.GenderLabel(m.Group), mean(m), m.N))
	}
	if f.Age.OlderNoShowGender != "" {
		b.WriteString(fmt.Sprintf("Older on average among no-shows: %s\n", appointment.GenderLabel(f.Age.OlderNoShowGender)))
	}

	b.WriteString("\n[PATIENT GROUPS]\n")
	b.WriteString("| no_show | " + strings.Join(appointment.ConditionColumns, " | ") + " |\n")
	b.WriteString("|---" + strings.Repeat("|---", len(appointment.ConditionColumns)) + "|\n")
	for _, g := range f.Conditions.Sums {
		cells := make([]string, len(appointment.ConditionColumns))
		for i, c := range appointment.ConditionColumns {
			cells[i] = fmt.Sprintf("%.0f", g.Sum(c))
		}
		b.WriteString(fmt.Sprintf("| %s | %s |\n", g.Group, strings.Join(cells, " | ")))
	}
	if f.Conditions.MostCommonAmongNoShows != "" {
		b.WriteString(fmt.Sprintf("Most common condition among no-shows: %s\n", f.Conditions.MostCommonAmongNoShows))
	}

	b.WriteString("\n[SMS REMINDERS]\n")
	b.WriteString("Received SMS:\n")
	writeCounts(&b, f.SMS.Received, appointment.OutcomeLabel)
	b.WriteString("Did not receive SMS:\n")
	writeCounts(&b, f.SMS.NotReceived, appointment.OutcomeLabel)
	b.WriteString(fmt.Sprintf("No-show share with SMS: %s, without SMS: %s\n",
		pct(f.SMS.NoShowShareReceived), pct(f.SMS.NoShowShareNotReceived)))
	if f.SMS.LowerWithSMS {
		b.WriteString("The no-show share is lower among patients who received an SMS.\n")
	}

	b.WriteString("\n[WEEKDAYS]\n")
	b.WriteString("Appointments (fewest first):\n")
	writeCounts(&b, f.Weekdays.Appointments, nil)
	b.WriteString("No-shows (fewest first):\n")
	writeCounts(&b, f.Weekdays.NoShows, nil)
	if f.Weekdays.Busiest != "" {
		b.WriteString(fmt.Sprintf("Most appointments: %s. Most no-shows: %s.\n", f.Weekdays.Busiest, f.Weekdays.MostNoShows))
	}

	if len(f.Charts) > 0 {
		b.WriteString("\n[CHARTS]\n")
		for _, c := range f.Charts {
			b.WriteString(fmt.Sprintf("- %s\n", filepath.Base(c)))
		}
	}
	if len(f.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range f.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	b.WriteString("\n[CAVEATS]\n")
	for _, c := range f.Caveats {
		b.WriteString("- " + c + "\n")
	}
	return b.String()
}

// JSON renders the findings as indented JSON.
func (f *Findings) JSON() ([]byte, error) {
	return utils.PrettyJSON(f)
}

func writeCounts(b *strings.Builder, counts []aggregate.Count, label func(string) string) {
	total := aggregate.Total(counts)
	for _, c := range counts {
		k := c.Key
		if label != nil {
			k = label(k)
		}
		share := 0.0
		if total > 0 {
			share = float64(c.N) / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %d (%s)\n", k, c.N, pct(share)))
	}
}

func pct(x float64) string { return fmt.Sprintf("%.1f%%", x*100) }

func mean(m aggregate.Mean) string {
	if m.N == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", m.Mean)
}

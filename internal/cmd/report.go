package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/store"
)

// ReportCmd prints the aggregator's rollups
type ReportCmd struct {
	Months int  `help:"Number of months to include, counting the current one (0 = everything)" default:"1"`
	Days   bool `help:"Print per-day project totals instead of the month/week rollup"`
}

// Run executes the report command
func (r *ReportCmd) Run(cli *CLI) error {
	data, err := cli.Container.loadReportData(context.Background(), sinceMonths(r.Months, time.Now()))
	if err != nil {
		return err
	}

	out := cli.out()
	if len(data.sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded for this period.")
		return nil
	}

	if r.Days {
		return printDays(out, metrics.GroupByDayAndProject(data.sessions, data.projects))
	}
	printMonths(out, metrics.GroupByMonthAndWeek(data.sessions, data.projects))
	return nil
}

// sinceMonths filters sessions to the current month and the months-1 before it.
func sinceMonths(months int, now time.Time) store.SessionFilter {
	if months <= 0 {
		return store.SessionFilter{}
	}
	now = now.Local()
	from := time.Date(now.Year(), now.Month()-time.Month(months-1), 1, 0, 0, 0, 0, time.Local)
	return store.SessionFilter{From: &from}
}

func printDays(out io.Writer, days []metrics.DayStats) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tPROJECT\tWORKED\tELAPSED\tEFFICIENCY")
	for _, d := range days {
		for _, p := range d.Projects {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				d.Date, p.ProjectName,
				formatMinutes(p.ActualWorkMinutes), formatMinutes(p.ElapsedMinutes),
				formatEfficiency(metrics.CalculateEfficiency(p.ActualWorkMinutes, p.ElapsedMinutes)))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Date, "(total)",
			formatMinutes(d.TotalActualWorkMinutes), formatMinutes(d.TotalElapsedMinutes),
			formatEfficiency(d.Efficiency))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d days\n", len(days))
	return nil
}

func printMonths(out io.Writer, months []metrics.MonthStats) {
	for i, m := range months {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s  %s over %d days\n", m.MonthName, formatMinutes(m.TotalActualWorkMinutes), m.DaysWorked)
		for _, week := range m.Weeks {
			fmt.Fprintf(out, "  W%02d  %s\n", week.WeekNumber, formatMinutes(week.TotalActualWorkMinutes))
			for _, d := range week.Days {
				fmt.Fprintf(out, "    %s  %-8s %s\n", d.Date, formatMinutes(d.TotalActualWorkMinutes), formatEfficiency(d.Efficiency))
			}
		}
	}
}

func formatMinutes(m float64) string {
	total := int(m + 0.5)
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}

func formatEfficiency(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

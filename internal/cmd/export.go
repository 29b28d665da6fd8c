package cmd

import (
	"context"
	"fmt"

	"github.com/sadopc/timeplease/internal/export"
	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/store"
)

// ExportCmd writes sessions or day rollups to a file
type ExportCmd struct {
	Format string `help:"Output format" enum:"csv,json" default:"csv" short:"f"`
	Out    string `help:"Destination file" type:"path" required:"" short:"o"`
	Days   bool   `help:"Export per-day project totals instead of raw sessions"`
}

// Run executes the export command
func (e *ExportCmd) Run(cli *CLI) error {
	data, err := cli.Container.loadReportData(context.Background(), store.SessionFilter{})
	if err != nil {
		return err
	}

	switch {
	case e.Days && e.Format == "json":
		err = export.DaysToJSON(
			metrics.GroupByDayAndProject(data.sessions, data.projects),
			metrics.GroupByMonthAndWeek(data.sessions, data.projects),
			e.Out)
	case e.Days:
		err = export.DaysToCSV(metrics.GroupByDayAndProject(data.sessions, data.projects), e.Out)
	case e.Format == "json":
		err = export.SessionsToJSON(data.sessions, data.projectsByID(), e.Out)
	default:
		err = export.SessionsToCSV(data.sessions, data.projectsByID(), e.Out)
	}
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	logging.Logger.Info("exported", "path", e.Out, "format", e.Format, "days", e.Days, "sessions", len(data.sessions))
	fmt.Fprintf(cli.out(), "Exported %d sessions to %s\n", len(data.sessions), e.Out)
	return nil
}

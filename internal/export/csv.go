package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/model"
)

// SessionsToCSV writes one row per session.
func SessionsToCSV(sessions []model.Session, projects map[string]model.Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Project", "Type", "Start", "End", "Elapsed (s)", "Elapsed", "Actual (min)", "Label"}); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			s.ID,
			projectName(projects, s.ProjectID),
			s.Type.Label(),
			s.StartTime.Local().Format(time.RFC3339),
			s.EndTime.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", s.ElapsedSeconds),
			formatDuration(s.ElapsedSeconds),
			formatMinutes(s.ActualWorkMinutes),
			s.Label,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// DaysToCSV writes one row per day and project, as produced by the metrics rollup.
func DaysToCSV(days []metrics.DayStats, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Project", "Actual (min)", "Elapsed (min)", "Day actual (min)", "Day elapsed (min)", "Day efficiency (%)"}); err != nil {
		return err
	}

	for _, d := range days {
		for _, p := range d.Projects {
			row := []string{
				d.Date,
				p.ProjectName,
				formatMinutes(p.ActualWorkMinutes),
				formatMinutes(p.ElapsedMinutes),
				formatMinutes(d.TotalActualWorkMinutes),
				formatMinutes(d.TotalElapsedMinutes),
				formatMinutes(d.Efficiency),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func projectName(projects map[string]model.Project, id string) string {
	if p, ok := projects[id]; ok && p.Name != "" {
		return p.Name
	}
	return metrics.UnknownProjectName
}

func formatMinutes(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

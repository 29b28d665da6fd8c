package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/model"
)

type jsonSessionExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID                string  `json:"id"`
	Project           string  `json:"project"`
	ProjectID         string  `json:"project_id"`
	Type              string  `json:"type"`
	StartTime         string  `json:"start_time"`
	EndTime           string  `json:"end_time"`
	ElapsedSec        int64   `json:"elapsed_seconds"`
	Elapsed           string  `json:"elapsed"`
	ActualWorkMinutes float64 `json:"actual_work_minutes"`
	Label             string  `json:"label,omitempty"`
}

type jsonDayExport struct {
	ExportedAt string               `json:"exported_at"`
	Count      int                  `json:"count"`
	Days       []metrics.DayStats   `json:"days"`
	Months     []metrics.MonthStats `json:"months,omitempty"`
}

func SessionsToJSON(sessions []model.Session, projects map[string]model.Project, path string) error {
	export := jsonSessionExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
		Sessions:   []jsonSession{},
	}

	for _, s := range sessions {
		export.Sessions = append(export.Sessions, jsonSession{
			ID:                s.ID,
			Project:           projectName(projects, s.ProjectID),
			ProjectID:         s.ProjectID,
			Type:              string(s.Type),
			StartTime:         s.StartTime.Local().Format(time.RFC3339),
			EndTime:           s.EndTime.Local().Format(time.RFC3339),
			ElapsedSec:        s.ElapsedSeconds,
			Elapsed:           formatDuration(s.ElapsedSeconds),
			ActualWorkMinutes: s.ActualWorkMinutes,
			Label:             s.Label,
		})
	}

	return writeJSON(export, path)
}

// DaysToJSON writes the day rollups and, when given, the month rollups.
func DaysToJSON(days []metrics.DayStats, months []metrics.MonthStats, path string) error {
	return writeJSON(jsonDayExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(days),
		Days:       days,
		Months:     months,
	}, path)
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

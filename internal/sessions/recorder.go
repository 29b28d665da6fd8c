package sessions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/store"
)

var ErrInvalidMinutes = errors.New("actual work minutes must not be negative")

// Confirmation is what the user reports after a run.
type Confirmation struct {
	ActualWorkMinutes float64
	Label             string
}

// Recorder turns confirmed runs into sessions and keeps the daily counters current.
type Recorder struct {
	store *Store
	now   func() time.Time
}

func NewRecorder(s *Store) *Recorder {
	return &Recorder{store: s, now: time.Now}
}

// SuggestedMinutes is the default answer offered for a run: its elapsed time in whole minutes.
func SuggestedMinutes(c model.CompletedSession) float64 {
	return float64(c.ElapsedSeconds / 60)
}

// Record saves c as a session that ended now.
func (r *Recorder) Record(c model.CompletedSession, conf Confirmation) (model.Session, error) {
	return r.RecordAt(c, conf, r.now())
}

// RecordAt saves c as a session that ended at end and counts it in the daily stats.
func (r *Recorder) RecordAt(c model.CompletedSession, conf Confirmation, end time.Time) (model.Session, error) {
	if conf.ActualWorkMinutes < 0 {
		return model.Session{}, ErrInvalidMinutes
	}
	if c.ProjectID == "" {
		return model.Session{}, fmt.Errorf("record session: project is required")
	}

	elapsed := max(c.ElapsedSeconds, 0)
	session := model.Session{
		ID:                uuid.NewString(),
		ProjectID:         c.ProjectID,
		StartTime:         end.Add(-time.Duration(elapsed) * time.Second),
		EndTime:           end,
		ElapsedSeconds:    int64(elapsed),
		ActualWorkMinutes: conf.ActualWorkMinutes,
		Label:             strings.TrimSpace(conf.Label),
		Type:              c.Mode,
	}

	r.store.Add(session)
	r.store.gateway.IncrementDailyStats(model.LocalDate(session.StartTime), store.DailyStatsDelta{
		WorkSessionsCompleted: 1,
		TotalWorkMinutes:      session.ActualWorkMinutes,
	})

	logging.Logger.Info("session recorded",
		"session_id", session.ID, "project_id", session.ProjectID, "type", session.Type,
		"elapsed_seconds", session.ElapsedSeconds, "actual_minutes", session.ActualWorkMinutes)
	return session, nil
}

// BreakFinished counts a completed Pomodoro break for today.
func (r *Recorder) BreakFinished() {
	r.store.gateway.IncrementDailyStats(model.LocalDate(r.now()), store.DailyStatsDelta{BreaksTaken: 1})
}

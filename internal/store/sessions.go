package store

import (
	"fmt"
	"time"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
)

const sessionColumns = `id, project_id, start_time, end_time, elapsed_seconds, actual_work_minutes, label, type`

// SaveSession appends a session. Failures are logged and swallowed.
func (s *Store) SaveSession(session model.Session) {
	_, err := s.db.Exec(
		`INSERT INTO sessions (`+sessionColumns+`, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.ProjectID,
		session.StartTime.UTC().Format(time.RFC3339),
		session.EndTime.UTC().Format(time.RFC3339),
		session.ElapsedSeconds, session.ActualWorkMinutes, session.Label, string(session.Type),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		logging.Logger.Error("failed to save session", "session_id", session.ID, "error", err)
		return
	}
	logging.Logger.Debug("saved session", "session_id", session.ID, "project_id", session.ProjectID)
}

// GetSessions returns every stored session ordered by start time. Read failures yield an empty list.
func (s *Store) GetSessions() []model.Session {
	sessions, err := s.ListSessions(SessionFilter{})
	if err != nil {
		logging.Logger.Warn("failed to load sessions", "error", err)
		return []model.Session{}
	}
	if sessions == nil {
		return []model.Session{}
	}
	return sessions
}

// ListSessions returns sessions matching f, oldest first.
func (s *Store) ListSessions(f SessionFilter) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	var args []any

	if f.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, f.ProjectID)
	}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY start_time`
	if f.Limit > 0 {
		// Most recent N, still returned oldest first.
		query = `SELECT * FROM (` + query + ` DESC LIMIT ` + fmt.Sprintf("%d", f.Limit) + `) ORDER BY start_time`
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var sess model.Session
		var startTime, endTime, typ string
		if err := rows.Scan(&sess.ID, &sess.ProjectID, &startTime, &endTime,
			&sess.ElapsedSeconds, &sess.ActualWorkMinutes, &sess.Label, &typ); err != nil {
			return nil, err
		}
		sess.StartTime, _ = time.Parse(time.RFC3339, startTime)
		sess.EndTime, _ = time.Parse(time.RFC3339, endTime)
		sess.Type = model.Mode(typ)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

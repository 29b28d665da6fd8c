package store

import (
	"fmt"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
)

// GetDailyStats returns all daily counters ordered by date. Read failures yield an empty list.
func (s *Store) GetDailyStats() []model.DailyStats {
	rows, err := s.db.Query(
		`SELECT date, breaks_taken, work_sessions_completed, total_work_minutes FROM daily_stats ORDER BY date`,
	)
	if err != nil {
		logging.Logger.Warn("failed to load daily stats", "error", err)
		return []model.DailyStats{}
	}
	defer rows.Close()

	stats := []model.DailyStats{}
	for rows.Next() {
		var ds model.DailyStats
		if err := rows.Scan(&ds.Date, &ds.BreaksTaken, &ds.WorkSessionsCompleted, &ds.TotalWorkMinutes); err != nil {
			logging.Logger.Warn("failed to scan daily stats", "error", err)
			return []model.DailyStats{}
		}
		stats = append(stats, ds)
	}
	if err := rows.Err(); err != nil {
		logging.Logger.Warn("failed to load daily stats", "error", err)
		return []model.DailyStats{}
	}
	return stats
}

// UpdateDailyStats upserts the row for date, inserting zeroed counters first.
// Only non-nil fields of u are written. Failures are logged and swallowed.
func (s *Store) UpdateDailyStats(date string, u DailyStatsUpdate) {
	if err := s.updateDailyStats(date, u); err != nil {
		logging.Logger.Error("failed to update daily stats", "date", date, "error", err)
	}
}

func (s *Store) updateDailyStats(date string, u DailyStatsUpdate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO daily_stats (date) VALUES (?)`, date); err != nil {
		return fmt.Errorf("insert daily stats: %w", err)
	}
	if u.BreaksTaken != nil {
		if _, err := tx.Exec(`UPDATE daily_stats SET breaks_taken = ? WHERE date = ?`, *u.BreaksTaken, date); err != nil {
			return fmt.Errorf("update breaks_taken: %w", err)
		}
	}
	if u.WorkSessionsCompleted != nil {
		if _, err := tx.Exec(`UPDATE daily_stats SET work_sessions_completed = ? WHERE date = ?`, *u.WorkSessionsCompleted, date); err != nil {
			return fmt.Errorf("update work_sessions_completed: %w", err)
		}
	}
	if u.TotalWorkMinutes != nil {
		if _, err := tx.Exec(`UPDATE daily_stats SET total_work_minutes = ? WHERE date = ?`, *u.TotalWorkMinutes, date); err != nil {
			return fmt.Errorf("update total_work_minutes: %w", err)
		}
	}
	return tx.Commit()
}

// IncrementDailyStats adds d to the counters for date. Failures are logged and swallowed.
func (s *Store) IncrementDailyStats(date string, d DailyStatsDelta) {
	_, err := s.db.Exec(
		`INSERT INTO daily_stats (date, breaks_taken, work_sessions_completed, total_work_minutes)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			breaks_taken = breaks_taken + excluded.breaks_taken,
			work_sessions_completed = work_sessions_completed + excluded.work_sessions_completed,
			total_work_minutes = total_work_minutes + excluded.total_work_minutes`,
		date, d.BreaksTaken, d.WorkSessionsCompleted, d.TotalWorkMinutes,
	)
	if err != nil {
		logging.Logger.Error("failed to increment daily stats", "date", date, "error", err)
	}
}

package store

import "time"

// DailyStatsUpdate is a partial update for one DailyStats row. Nil fields are left unchanged.
type DailyStatsUpdate struct {
	BreaksTaken           *int
	WorkSessionsCompleted *int
	TotalWorkMinutes      *float64
}

// DailyStatsDelta is added to the counters of one DailyStats row.
type DailyStatsDelta struct {
	BreaksTaken           int
	WorkSessionsCompleted int
	TotalWorkMinutes      float64
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	ProjectID string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// Setting is one raw key/value row of the settings table.
type Setting struct {
	Key   string
	Value string
}

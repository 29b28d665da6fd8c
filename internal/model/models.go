package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mode is the timer mode a session was tracked in.
type Mode string

const (
	ModeFlow Mode = "FLOW"
	ModePomo Mode = "POMO"
)

// Label renders the mode for display, e.g. "Flow".
func (m Mode) Label() string {
	return cases.Title(language.Und).String(strings.ToLower(string(m)))
}

// Status is the run status of the timer.
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusRunning Status = "RUNNING"
	StatusPaused  Status = "PAUSED"
	StatusBreak   Status = "BREAK"
)

type Project struct {
	ID         string
	Name       string
	Color      string
	Notes      string
	IsArchived bool
}

// Session is one confirmed, completed timer run. Sessions are append-only.
type Session struct {
	ID                string
	ProjectID         string
	StartTime         time.Time
	EndTime           time.Time
	ElapsedSeconds    int64
	ActualWorkMinutes float64
	Label             string
	Type              Mode
}

// DailyStats holds the per-date counters. Date is YYYY-MM-DD in local time.
type DailyStats struct {
	Date                  string
	BreaksTaken           int
	WorkSessionsCompleted int
	TotalWorkMinutes      float64
}

// DateLayout is the layout of DailyStats.Date and day keys.
const DateLayout = "2006-01-02"

// LocalDate returns the YYYY-MM-DD key of t in the local time zone.
func LocalDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// CompletedSession describes a finished timer run awaiting confirmation by the user.
type CompletedSession struct {
	ElapsedSeconds int
	Mode           Mode
	ProjectID      string
}

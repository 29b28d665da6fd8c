package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewProjects
	viewReports
	viewSettings
)

var viewNames = []string{"Timer", "Projects", "Reports", "Settings"}

// --- Messages ---

type snapshotMsg timer.Snapshot

type sessionRecordedMsg struct {
	session model.Session
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatMinutes renders a minute total as hours and minutes, e.g. "1h 05m".
func formatMinutes(minutes float64) string {
	total := int(minutes + 0.5)
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}

func formatEfficiency(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

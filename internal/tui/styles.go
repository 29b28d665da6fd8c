package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeplease/internal/model"
)

// Color palette. Each color has a light and a dark variant; applyTheme picks one.
var (
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#5A52E0", Dark: "#6C63FF"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#1B998B", Dark: "#2EC4B6"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#D64545", Dark: "#FF6B6B"}
	colorMuted     = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#666666"}
	colorSuccess   = lipgloss.AdaptiveColor{Light: "#1E9E55", Dark: "#2ECC71"}
	colorWarning   = lipgloss.AdaptiveColor{Light: "#C77C02", Dark: "#F39C12"}
	colorFg        = lipgloss.AdaptiveColor{Light: "#24283B", Dark: "#C0CAF5"}
	colorSubtle    = lipgloss.AdaptiveColor{Light: "#C8CCE0", Dark: "#414868"}
	colorHighlight = lipgloss.AdaptiveColor{Light: "#2E5FD0", Dark: "#7AA2F7"}
)

var (
	detectOnce     sync.Once
	terminalIsDark bool
)

// applyTheme selects the light or dark palette. The system theme follows the
// terminal background, detected once per process.
func applyTheme(t model.Theme) {
	switch t {
	case model.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	case model.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	default:
		detectOnce.Do(func() { terminalIsDark = lipgloss.HasDarkBackground() })
		lipgloss.SetHasDarkBackground(terminalIsDark)
	}
}

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Timer clock, one style per engine status
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Align(lipgloss.Center)

	timerRunningStyle = timerStyle.Foreground(colorSuccess)

	timerPausedStyle = timerStyle.Foreground(colorWarning)

	timerBreakStyle = timerStyle.Foreground(colorSecondary)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	accentStyle    = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)

// projectDot renders a colored bullet for a project color, falling back to
// the muted color when none is set.
func projectDot(color string) string {
	if color == "" {
		return mutedStyle.Render("●")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeplease/internal/export"
	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/projects"
	"github.com/sadopc/timeplease/internal/sessions"
	"github.com/sadopc/timeplease/internal/settings"
	"github.com/sadopc/timeplease/internal/timer"
)

// Deps are the long-lived components the program drives.
type Deps struct {
	Engine   *timer.Engine
	Settings *settings.Store
	Projects *projects.Store
	Sessions *sessions.Store
	Recorder *sessions.Recorder

	// Snapshots receives the engine's state changes. Nil disables live updates.
	Snapshots <-chan timer.Snapshot

	// ExportDir is where exports are written. Empty means the home directory.
	ExportDir string
}

var exportFormats = []string{"Sessions (CSV)", "Sessions (JSON)", "Daily totals (CSV)", "Daily totals (JSON)"}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	projects  projectsModel
	reports   reportsModel
	settings  settingsModel

	help   help.Model
	status string
}

func NewApp(deps Deps) App {
	h := help.New()
	h.ShowAll = false
	if deps.Settings != nil {
		applyTheme(deps.Settings.Snapshot().Theme)
	}

	return App{
		deps:       deps,
		activeView: viewTimer,
		dashboard:  newDashboardModel(deps),
		projects:   newProjectsModel(deps.Projects),
		reports:    newReportsModel(deps.Projects, deps.Sessions),
		settings:   newSettingsModel(deps.Settings, deps.Engine),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		waitForSnapshot(a.deps.Snapshots),
	)
}

// waitForSnapshot delivers the next engine snapshot as a message.
func waitForSnapshot(ch <-chan timer.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewProjects
			return a, a.projects.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case snapshotMsg:
		// Snapshots always reach the timer view so a finished Pomodoro can
		// prompt for confirmation from any tab.
		var cmd tea.Cmd
		wasConfirming := a.dashboard.confirmActive
		a.dashboard, cmd = a.dashboard.update(msg)
		if a.dashboard.confirmActive && !wasConfirming && !a.isFormActive() {
			a.activeView = viewTimer
		}
		return a, tea.Batch(cmd, waitForSnapshot(a.deps.Snapshots))

	case dashboardDataMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd

	case sessionRecordedMsg:
		a.status = fmt.Sprintf("Recorded %s on %s", formatMinutes(msg.session.ActualWorkMinutes), a.dashboard.projectName(msg.session.ProjectID))
		return a, tea.Batch(a.dashboard.loadData(), a.reports.refresh())

	case statusMsg:
		a.status = msg.text
		if msg.isError {
			logging.Logger.Warn("tui status", "message", msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTimer:
		return a.dashboard.confirmActive
	case viewProjects:
		return a.projects.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimer:
		return a.dashboard.loadData()
	case viewProjects:
		return a.projects.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.dashboard.view()
	case viewProjects:
		content = a.projects.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("timeplease")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	timerInfo := ""
	clock := timer.FormatClock(a.dashboard.snap.Time)
	switch {
	case a.dashboard.snap.Status == model.StatusBreak:
		timerInfo = accentStyle.Render(" ☕ " + clock)
	case a.dashboard.isRunning():
		timerInfo = successStyle.Render(" ● " + clock)
	case a.dashboard.isPaused():
		timerInfo = warningStyle.Render(" ⏸ " + clock)
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) exportPath(kind, ext string) string {
	dir := a.deps.ExportDir
	if dir == "" {
		dir, _ = os.UserHomeDir()
	}
	return filepath.Join(dir, fmt.Sprintf("timeplease-%s-%s.%s", kind, time.Now().Format(model.DateLayout), ext))
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		all := a.deps.Sessions.Sessions()
		plist := a.deps.Projects.All()
		byID := make(map[string]model.Project, len(plist))
		for _, p := range plist {
			byID[p.ID] = p
		}

		var path string
		var err error
		switch format {
		case 0:
			path = a.exportPath("sessions", "csv")
			err = export.SessionsToCSV(all, byID, path)
		case 1:
			path = a.exportPath("sessions", "json")
			err = export.SessionsToJSON(all, byID, path)
		case 2:
			path = a.exportPath("days", "csv")
			err = export.DaysToCSV(metrics.GroupByDayAndProject(all, plist), path)
		default:
			path = a.exportPath("days", "json")
			err = export.DaysToJSON(metrics.GroupByDayAndProject(all, plist), metrics.GroupByMonthAndWeek(all, plist), path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		logging.Logger.Info("exported", "path", path, "sessions", len(all))
		return exportDoneMsg{path: path}
	}
}

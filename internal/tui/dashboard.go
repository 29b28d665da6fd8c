package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/projects"
	"github.com/sadopc/timeplease/internal/sessions"
	"github.com/sadopc/timeplease/internal/timer"
)

const recentLimit = 5

type dashboardModel struct {
	engine   *timer.Engine
	projects *projects.Store
	sessions *sessions.Store
	recorder *sessions.Recorder
	width    int
	height   int

	snap timer.Snapshot

	today      metrics.DayStats
	counters   model.DailyStats
	recent     []model.Session
	byID       map[string]model.Project
	choices    []model.Project
	dataLoaded time.Time

	// Project picker state
	picking      bool
	pickerCursor int
	startOnPick  bool

	// Honesty confirmation state
	confirmActive  bool
	confirm        *huh.Form
	pending        *model.CompletedSession
	confirmMinutes *string
	confirmLabel   *string
}

func newDashboardModel(deps Deps) dashboardModel {
	minutes, label := "", ""
	return dashboardModel{
		engine:         deps.Engine,
		projects:       deps.Projects,
		sessions:       deps.Sessions,
		recorder:       deps.Recorder,
		snap:           deps.Engine.Snapshot(),
		confirmMinutes: &minutes,
		confirmLabel:   &label,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool {
	return d.snap.Status == model.StatusRunning || d.snap.Status == model.StatusBreak
}

func (d dashboardModel) isPaused() bool { return d.snap.Status == model.StatusPaused }

type dashboardDataMsg struct {
	today    metrics.DayStats
	counters model.DailyStats
	recent   []model.Session
	byID     map[string]model.Project
	choices  []model.Project
	loadedAt time.Time
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		all := d.projects.All()
		byID := make(map[string]model.Project, len(all))
		for _, p := range all {
			byID[p.ID] = p
		}

		days := metrics.GroupByDayAndProject(d.sessions.Sessions(), all)
		today, _ := metrics.Today(days, now)

		counters := model.DailyStats{Date: model.LocalDate(now)}
		for _, s := range d.sessions.DailyStats() {
			if s.Date == counters.Date {
				counters = s
				break
			}
		}

		return dashboardDataMsg{
			today:    today,
			counters: counters,
			recent:   d.sessions.Recent(recentLimit),
			byID:     byID,
			choices:  d.projects.Active(),
			loadedAt: now,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg.(type) {
	case snapshotMsg, dashboardDataMsg:
	default:
		if d.confirmActive && d.confirm != nil {
			return d.updateConfirm(msg)
		}
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.counters = msg.counters
		d.recent = msg.recent
		d.byID = msg.byID
		d.choices = msg.choices
		d.dataLoaded = msg.loadedAt
		if d.pickerCursor >= len(d.choices) {
			d.pickerCursor = max(0, len(d.choices)-1)
		}
		return d, nil

	case snapshotMsg:
		prev := d.snap
		d.snap = timer.Snapshot(msg)
		var cmds []tea.Cmd
		if prev.Status != d.snap.Status || prev.IsBreak != d.snap.IsBreak {
			cmds = append(cmds, d.loadData())
		}
		if !d.confirmActive {
			if c := d.engine.CompletedSession(); c != nil {
				var cmd tea.Cmd
				d, cmd = d.openConfirm(*c)
				cmds = append(cmds, cmd)
			}
		}
		return d, tea.Batch(cmds...)

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			return d.start()

		case key.Matches(msg, keys.Stop):
			return d.stop()

		case key.Matches(msg, keys.Pause):
			switch d.engine.State().Status {
			case model.StatusRunning, model.StatusBreak:
				d.engine.Pause()
			case model.StatusPaused:
				d.engine.Start()
			}
			return d, nil

		case key.Matches(msg, keys.Mode):
			return d.toggleMode()

		case key.Matches(msg, keys.Project):
			if len(d.choices) == 0 {
				return d, statusCmd("No projects yet. Press 2 to go to Projects and create one.", true)
			}
			d.picking = true
			d.startOnPick = false
			d.pickerCursor = 0
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) start() (dashboardModel, tea.Cmd) {
	st := d.engine.State()
	if st.Status == model.StatusRunning || st.Status == model.StatusBreak {
		return d, nil
	}
	if st.SelectedProject != nil {
		d.engine.Start()
		return d, nil
	}
	if len(d.choices) == 0 {
		return d, statusCmd("No projects yet. Press 2 to go to Projects and create one.", true)
	}
	if len(d.choices) == 1 {
		p := d.choices[0]
		d.engine.SetProject(&p)
		d.engine.Start()
		return d, nil
	}
	d.picking = true
	d.startOnPick = true
	d.pickerCursor = 0
	return d, nil
}

// stop ends the segment and asks for confirmation of any work it contained.
func (d dashboardModel) stop() (dashboardModel, tea.Cmd) {
	st := d.engine.State()
	if st.Status == model.StatusIdle && !st.IsBreak {
		return d, nil
	}

	res := d.engine.Stop()
	if res.IsBreak {
		return d, statusCmd("Break skipped", false)
	}
	if res.ElapsedSeconds > 0 && st.SelectedProject != nil && res.Status != model.StatusIdle {
		d.engine.StageCompletedSession(model.CompletedSession{
			ElapsedSeconds: res.ElapsedSeconds,
			Mode:           res.Mode,
			ProjectID:      st.SelectedProject.ID,
		})
	}
	if c := d.engine.CompletedSession(); c != nil && !d.confirmActive {
		return d.openConfirm(*c)
	}
	return d, nil
}

func (d dashboardModel) toggleMode() (dashboardModel, tea.Cmd) {
	st := d.engine.State()
	if st.Status != model.StatusIdle {
		return d, statusCmd("Stop the timer before switching modes", true)
	}
	next := model.ModePomo
	if st.Mode == model.ModePomo {
		next = model.ModeFlow
	}
	d.engine.SetMode(next)
	return d, statusCmd(next.Label()+" mode", false)
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.choices)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if len(d.choices) == 0 {
			return d, nil
		}
		p := d.choices[d.pickerCursor]
		d.engine.SetProject(&p)
		if d.startOnPick {
			d.engine.Start()
		}
		return d, nil
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

// --- Honesty confirmation ---

func (d dashboardModel) openConfirm(c model.CompletedSession) (dashboardModel, tea.Cmd) {
	*d.confirmMinutes = strconv.FormatFloat(sessions.SuggestedMinutes(c), 'f', -1, 64)
	*d.confirmLabel = ""
	d.pending = &c

	summary := fmt.Sprintf("%s session on %s, %s elapsed",
		c.Mode.Label(), d.projectName(c.ProjectID), timer.FormatClock(c.ElapsedSeconds))

	d.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("Session complete").Description(summary),
			huh.NewInput().Title("Minutes actually worked").Value(d.confirmMinutes).Validate(validateMinutes),
			huh.NewInput().Title("What did you work on?").Placeholder("optional").Value(d.confirmLabel),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.confirmActive = true
	d.picking = false
	return d, d.confirm.Init()
}

func validateMinutes(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a number of minutes")
	}
	if v < 0 {
		return sessions.ErrInvalidMinutes
	}
	return nil
}

func (d dashboardModel) updateConfirm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		d.engine.ClearCompletedSession()
		d.closeConfirm()
		return d, statusCmd("Session discarded", false)
	}

	form, cmd := d.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.confirm = f
	}

	if d.confirm.State == huh.StateCompleted {
		record := d.recordCmd()
		d.engine.ClearCompletedSession()
		d.closeConfirm()
		return d, record
	}
	return d, cmd
}

func (d *dashboardModel) closeConfirm() {
	d.confirmActive = false
	d.confirm = nil
	d.pending = nil
}

// recordCmd saves the pending run with the answers from the confirmation form.
func (d dashboardModel) recordCmd() tea.Cmd {
	if d.pending == nil {
		return nil
	}
	c := *d.pending
	minutes, err := strconv.ParseFloat(strings.TrimSpace(*d.confirmMinutes), 64)
	if err != nil {
		return statusCmd(fmt.Sprintf("Invalid minutes: %v", err), true)
	}
	conf := sessions.Confirmation{ActualWorkMinutes: minutes, Label: *d.confirmLabel}
	recorder := d.recorder

	return func() tea.Msg {
		s, err := recorder.Record(c, conf)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return sessionRecordedMsg{session: s}
	}
}

func (d dashboardModel) projectName(id string) string {
	if p, ok := d.byID[id]; ok {
		return p.Name
	}
	if p, err := d.projects.Get(id); err == nil {
		return p.Name
	}
	return metrics.UnknownProjectName
}

// --- Views ---

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	if d.confirmActive && d.confirm != nil {
		title := titleStyle.Render("How much did you actually work?")
		return activePanelStyle.Width(contentWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", d.confirm.View()),
		)
	}

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderProjectPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	st := d.engine.State()
	clock := timer.FormatClock(d.snap.Time)

	modeLine := highlightStyle.Render(d.snap.Mode.Label())
	if d.snap.Mode == model.ModePomo {
		modeLine += mutedStyle.Render(fmt.Sprintf("  cycle %d", st.PomodoroCycle))
	}

	projectLine := mutedStyle.Render("No project selected, press c to choose")
	if st.SelectedProject != nil {
		projectLine = projectDot(st.SelectedProject.Color) + " " + highlightStyle.Render(st.SelectedProject.Name)
	}

	var timeDisplay, indicator string
	panel := panelStyle
	switch d.snap.Status {
	case model.StatusRunning:
		timeDisplay = timerRunningStyle.Width(w - 6).Render(clock)
		indicator = successStyle.Render("●  RUNNING")
		panel = activePanelStyle
	case model.StatusBreak:
		timeDisplay = timerBreakStyle.Width(w - 6).Render(clock)
		indicator = accentStyle.Render("☕  BREAK")
		panel = activePanelStyle
	case model.StatusPaused:
		timeDisplay = timerPausedStyle.Width(w - 6).Render(clock)
		indicator = warningStyle.Render("⏸  PAUSED")
		panel = activePanelStyle
	default:
		timeDisplay = timerStyle.Width(w - 6).Render(clock)
		indicator = mutedStyle.Render("■  IDLE")
		if d.snap.IsBreak {
			indicator = mutedStyle.Render("■  BREAK READY, press s to start it")
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		modeLine,
		projectLine,
	)
	return panel.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatMinutes(d.today.TotalActualWorkMinutes))
	counters := mutedStyle.Render(fmt.Sprintf("%d sessions  %d breaks",
		d.counters.WorkSessionsCompleted, d.counters.BreaksTaken))
	header := fmt.Sprintf("%s  %s  %s", title, total, counters)

	if len(d.today.Projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No sessions today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	for _, p := range d.today.Projects {
		row := fmt.Sprintf("  %s %-20s %8s  of %-8s %s",
			projectDot(p.ProjectColor),
			p.ProjectName,
			formatMinutes(p.ActualWorkMinutes),
			formatMinutes(p.ElapsedMinutes),
			mutedStyle.Render(formatEfficiency(metrics.CalculateEfficiency(p.ActualWorkMinutes, p.ElapsedMinutes))),
		)
		rows = append(rows, row)
	}
	rows = append(rows, mutedStyle.Render("  efficiency "+formatEfficiency(d.today.Efficiency)))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Sessions")
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	now := d.dataLoaded
	if now.IsZero() {
		now = time.Now()
	}

	var rows []string
	rows = append(rows, title)
	for _, s := range d.recent {
		p := d.byID[s.ProjectID]
		name := p.Name
		if name == "" {
			name = metrics.UnknownProjectName
		}
		row := fmt.Sprintf("  %s %-16s %-5s %7s  %s",
			projectDot(p.Color),
			name,
			s.Type.Label(),
			formatMinutes(s.ActualWorkMinutes),
			mutedStyle.Render(humanize.RelTime(s.EndTime, now, "ago", "from now")),
		)
		if s.Label != "" {
			row += mutedStyle.Render("  " + s.Label)
		}
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderProjectPicker(w int) string {
	title := titleStyle.Render("Select Project")

	var rows []string
	rows = append(rows, title)
	for i, p := range d.choices {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, projectDot(p.Color), p.Name)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/settings"
	"github.com/sadopc/timeplease/internal/timer"
)

type settingsModel struct {
	store  *settings.Store
	engine *timer.Engine
	width  int
	height int

	current    model.Settings
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	pomodoro     *string
	shortBreak   *string
	longBreak    *string
	beforeLong   *string
	theme        *model.Theme
	pomoNotify   *bool
	flowNotify   *bool
	flowInterval *string
}

func newSettingsModel(s *settings.Store, e *timer.Engine) settingsModel {
	pw, sb, lb, bl, fi := "", "", "", "", ""
	theme := model.ThemeSystem
	pn, fn := true, true
	return settingsModel{
		store:        s,
		engine:       e,
		current:      s.Snapshot(),
		pomodoro:     &pw,
		shortBreak:   &sb,
		longBreak:    &lb,
		beforeLong:   &bl,
		theme:        &theme,
		pomoNotify:   &pn,
		flowNotify:   &fn,
		flowInterval: &fi,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings model.Settings
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{settings: s.store.Snapshot()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.current = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func validateNonNegative(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.store.Snapshot()
	*s.pomodoro = strconv.Itoa(cur.PomodoroDuration)
	*s.shortBreak = strconv.Itoa(cur.BreakDuration)
	*s.longBreak = strconv.Itoa(cur.LongBreakDuration)
	*s.beforeLong = strconv.Itoa(cur.SessionsBeforeLongBreak)
	*s.theme = cur.Theme
	*s.pomoNotify = cur.PomoNotificationsEnabled
	*s.flowNotify = cur.FlowNotificationsEnabled
	*s.flowInterval = strconv.Itoa(cur.FlowNotificationInterval)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Pomodoro (min)").Value(s.pomodoro).Validate(validateNonNegative),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak).Validate(validateNonNegative),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(validateNonNegative),
			huh.NewInput().Title("Pomodoros before long break").Description("0 makes every break short").
				Value(s.beforeLong).Validate(validateNonNegative),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewConfirm().Title("Pomodoro notifications").Value(s.pomoNotify),
			huh.NewConfirm().Title("Flow milestone notifications").Value(s.flowNotify),
			huh.NewInput().Title("Flow milestone every (min)").Description("0 turns milestones off").
				Value(s.flowInterval).Validate(validateNonNegative),
		).Title("Notifications"),
		huh.NewGroup(
			huh.NewSelect[model.Theme]().Title("Theme").
				Options(
					huh.NewOption("System", model.ThemeSystem),
					huh.NewOption("Light", model.ThemeLight),
					huh.NewOption("Dark", model.ThemeDark),
				).Value(s.theme),
		).Title("Appearance"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.saveSettings()
	}

	return s, cmd
}

// formSettings converts the form values back into settings.
func (s settingsModel) formSettings() (model.Settings, error) {
	next := model.Settings{
		Theme:                    *s.theme,
		PomoNotificationsEnabled: *s.pomoNotify,
		FlowNotificationsEnabled: *s.flowNotify,
	}
	fields := []struct {
		name string
		in   string
		out  *int
	}{
		{"pomodoro", *s.pomodoro, &next.PomodoroDuration},
		{"short break", *s.shortBreak, &next.BreakDuration},
		{"long break", *s.longBreak, &next.LongBreakDuration},
		{"pomodoros before long break", *s.beforeLong, &next.SessionsBeforeLongBreak},
		{"flow milestone interval", *s.flowInterval, &next.FlowNotificationInterval},
	}
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f.in))
		if err != nil {
			return model.Settings{}, fmt.Errorf("parse %s: %w", f.name, err)
		}
		*f.out = n
	}
	return next, nil
}

func (s settingsModel) saveSettings() tea.Cmd {
	next, err := s.formSettings()
	if err != nil {
		return statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	if err := s.store.Replace(next); err != nil {
		return statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	s.engine.SyncSettings()
	applyTheme(next.Theme)
	return tea.Batch(s.refresh(), statusCmd("Settings saved", false))
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, row := range settingRows(s.current) {
		label := lipgloss.NewStyle().Width(30).Render(row[0])
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(row[1])))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRows(st model.Settings) [][2]string {
	return [][2]string{
		{"Pomodoro", fmt.Sprintf("%d min", st.PomodoroDuration)},
		{"Short break", fmt.Sprintf("%d min", st.BreakDuration)},
		{"Long break", fmt.Sprintf("%d min", st.LongBreakDuration)},
		{"Pomodoros before long break", strconv.Itoa(st.SessionsBeforeLongBreak)},
		{"Pomodoro notifications", onOff(st.PomoNotificationsEnabled)},
		{"Flow milestone notifications", onOff(st.FlowNotificationsEnabled)},
		{"Flow milestone every", fmt.Sprintf("%d min", st.FlowNotificationInterval)},
		{"Theme", string(st.Theme)},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

package model

// Theme is the UI theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Settings holds the user's durations and toggles. Durations are in minutes.
type Settings struct {
	PomodoroDuration         int
	BreakDuration            int
	LongBreakDuration        int
	SessionsBeforeLongBreak  int
	Theme                    Theme
	PomoNotificationsEnabled bool
	FlowNotificationsEnabled bool
	FlowNotificationInterval int
}

func DefaultSettings() Settings {
	return Settings{
		PomodoroDuration:         25,
		BreakDuration:            5,
		LongBreakDuration:        15,
		SessionsBeforeLongBreak:  4,
		Theme:                    ThemeSystem,
		PomoNotificationsEnabled: true,
		FlowNotificationsEnabled: true,
		FlowNotificationInterval: 30,
	}
}

// IsLongBreak reports whether the break after the given cycle is a long one.
// A non-positive SessionsBeforeLongBreak disables long breaks.
func (s Settings) IsLongBreak(cycle int) bool {
	if s.SessionsBeforeLongBreak <= 0 {
		return false
	}
	return cycle%s.SessionsBeforeLongBreak == 0
}

// BreakSeconds returns the planned break length for the given cycle.
func (s Settings) BreakSeconds(cycle int) int {
	if s.IsLongBreak(cycle) {
		return s.LongBreakDuration * 60
	}
	return s.BreakDuration * 60
}

// WorkSeconds returns the planned Pomodoro work length.
func (s Settings) WorkSeconds() int {
	return s.PomodoroDuration * 60
}

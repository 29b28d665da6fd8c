package settings

import (
	"errors"
	"fmt"

	"github.com/sadopc/timeplease/internal/model"
)

var ErrInvalid = errors.New("invalid settings")

// Validate rejects negative durations and unknown themes. Zero values are
// accepted: the engine treats them as degenerate but well-defined.
func Validate(s model.Settings) error {
	fields := []struct {
		name  string
		value int
	}{
		{"pomodoro duration", s.PomodoroDuration},
		{"break duration", s.BreakDuration},
		{"long break duration", s.LongBreakDuration},
		{"sessions before long break", s.SessionsBeforeLongBreak},
		{"flow notification interval", s.FlowNotificationInterval},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalid, f.name)
		}
	}

	switch s.Theme {
	case model.ThemeLight, model.ThemeDark, model.ThemeSystem:
	default:
		return fmt.Errorf("%w: unknown theme %q", ErrInvalid, s.Theme)
	}
	return nil
}

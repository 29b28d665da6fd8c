package settings

import (
	"fmt"
	"sync"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
)

// Gateway is the persistence the settings store needs.
type Gateway interface {
	LoadSettings() (model.Settings, bool)
	SaveSettings(model.Settings) error
}

// Store holds the current settings and persists every change.
// It is safe for concurrent use; the timer engine reads it on every tick.
type Store struct {
	mu       sync.RWMutex
	gateway  Gateway
	settings model.Settings
}

func New(gateway Gateway) *Store {
	return &Store{gateway: gateway, settings: model.DefaultSettings()}
}

// Load replaces the in-memory settings with the stored ones, or the defaults when none are stored.
func (s *Store) Load() model.Settings {
	loaded, ok := s.gateway.LoadSettings()
	if !ok {
		logging.Logger.Debug("no stored settings, using defaults")
		loaded = model.DefaultSettings()
	}

	s.mu.Lock()
	s.settings = loaded
	s.mu.Unlock()
	return loaded
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update applies fn to a copy of the settings, validates and persists the result.
// The in-memory value is only replaced once the write succeeded.
func (s *Store) Update(fn func(*model.Settings)) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	fn(&next)
	if err := Validate(next); err != nil {
		return s.settings, err
	}
	if err := s.gateway.SaveSettings(next); err != nil {
		return s.settings, fmt.Errorf("save settings: %w", err)
	}
	s.settings = next
	logging.Logger.Info("settings updated",
		"pomodoro", next.PomodoroDuration, "break", next.BreakDuration,
		"long_break", next.LongBreakDuration, "sessions_before_long_break", next.SessionsBeforeLongBreak)
	return next, nil
}

// Replace persists settings as a whole.
func (s *Store) Replace(settings model.Settings) error {
	_, err := s.Update(func(dst *model.Settings) { *dst = settings })
	return err
}

// Reset restores and persists the defaults.
func (s *Store) Reset() error {
	return s.Replace(model.DefaultSettings())
}

func (s *Store) SetPomodoroDuration(minutes int) error {
	_, err := s.Update(func(st *model.Settings) { st.PomodoroDuration = minutes })
	return err
}

func (s *Store) SetBreakDuration(minutes int) error {
	_, err := s.Update(func(st *model.Settings) { st.BreakDuration = minutes })
	return err
}

func (s *Store) SetLongBreakDuration(minutes int) error {
	_, err := s.Update(func(st *model.Settings) { st.LongBreakDuration = minutes })
	return err
}

func (s *Store) SetSessionsBeforeLongBreak(n int) error {
	_, err := s.Update(func(st *model.Settings) { st.SessionsBeforeLongBreak = n })
	return err
}

func (s *Store) SetTheme(theme model.Theme) error {
	_, err := s.Update(func(st *model.Settings) { st.Theme = theme })
	return err
}

func (s *Store) SetPomoNotificationsEnabled(enabled bool) error {
	_, err := s.Update(func(st *model.Settings) { st.PomoNotificationsEnabled = enabled })
	return err
}

func (s *Store) SetFlowNotificationsEnabled(enabled bool) error {
	_, err := s.Update(func(st *model.Settings) { st.FlowNotificationsEnabled = enabled })
	return err
}

func (s *Store) SetFlowNotificationInterval(minutes int) error {
	_, err := s.Update(func(st *model.Settings) { st.FlowNotificationInterval = minutes })
	return err
}

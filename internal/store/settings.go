package store

import (
	"fmt"
	"strconv"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
)

const (
	keyPomodoroDuration         = "pomodoro_duration"
	keyBreakDuration            = "break_duration"
	keyLongBreakDuration        = "long_break_duration"
	keySessionsBeforeLongBreak  = "sessions_before_long_break"
	keyTheme                    = "theme"
	keyPomoNotificationsEnabled = "pomo_notifications_enabled"
	keyFlowNotificationsEnabled = "flow_notifications_enabled"
	keyFlowNotificationInterval = "flow_notification_interval"

	// Written by older versions that had a single notification toggle.
	keyLegacyNotificationsEnabled = "notifications_enabled"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, err
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

// LoadSettings returns the stored settings merged over the defaults.
// The bool is false when nothing is stored or the read fails.
func (s *Store) LoadSettings() (model.Settings, bool) {
	rows, err := s.GetAllSettings()
	if err != nil {
		logging.Logger.Warn("failed to load settings", "error", err)
		return model.Settings{}, false
	}
	if len(rows) == 0 {
		return model.Settings{}, false
	}

	kv := make(map[string]string, len(rows))
	for _, r := range rows {
		kv[r.Key] = r.Value
	}

	settings := model.DefaultSettings()
	setInt(kv, keyPomodoroDuration, &settings.PomodoroDuration)
	setInt(kv, keyBreakDuration, &settings.BreakDuration)
	setInt(kv, keyLongBreakDuration, &settings.LongBreakDuration)
	setInt(kv, keySessionsBeforeLongBreak, &settings.SessionsBeforeLongBreak)
	setInt(kv, keyFlowNotificationInterval, &settings.FlowNotificationInterval)
	if v, ok := kv[keyTheme]; ok && v != "" {
		settings.Theme = model.Theme(v)
	}

	if legacy, ok := kv[keyLegacyNotificationsEnabled]; ok {
		if b, err := strconv.ParseBool(legacy); err == nil {
			if _, ok := kv[keyPomoNotificationsEnabled]; !ok {
				settings.PomoNotificationsEnabled = b
			}
			if _, ok := kv[keyFlowNotificationsEnabled]; !ok {
				settings.FlowNotificationsEnabled = b
			}
		}
	}
	setBool(kv, keyPomoNotificationsEnabled, &settings.PomoNotificationsEnabled)
	setBool(kv, keyFlowNotificationsEnabled, &settings.FlowNotificationsEnabled)

	return settings, true
}

// SaveSettings writes every settings field in one transaction.
func (s *Store) SaveSettings(settings model.Settings) error {
	values := map[string]string{
		keyPomodoroDuration:         strconv.Itoa(settings.PomodoroDuration),
		keyBreakDuration:            strconv.Itoa(settings.BreakDuration),
		keyLongBreakDuration:        strconv.Itoa(settings.LongBreakDuration),
		keySessionsBeforeLongBreak:  strconv.Itoa(settings.SessionsBeforeLongBreak),
		keyTheme:                    string(settings.Theme),
		keyPomoNotificationsEnabled: strconv.FormatBool(settings.PomoNotificationsEnabled),
		keyFlowNotificationsEnabled: strconv.FormatBool(settings.FlowNotificationsEnabled),
		keyFlowNotificationInterval: strconv.Itoa(settings.FlowNotificationInterval),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	defer tx.Rollback()

	for k, v := range values {
		_, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		)
		if err != nil {
			return fmt.Errorf("save setting %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	logging.Logger.Debug("saved settings")
	return nil
}

func setInt(kv map[string]string, key string, dst *int) {
	if v, ok := kv[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(kv map[string]string, key string, dst *bool) {
	if v, ok := kv[key]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

package notify

import (
	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
)

// Category selects which settings toggle gates a notification.
type Category string

const (
	CategoryPomo Category = "pomo"
	CategoryFlow Category = "flow"
)

// SettingsSource provides the current settings.
type SettingsSource interface {
	Snapshot() model.Settings
}

// Policy decides whether a notification reaches the sender.
type Policy struct {
	settings SettingsSource
	sender   Sender
}

func NewPolicy(settings SettingsSource, sender Sender) *Policy {
	return &Policy{settings: settings, sender: sender}
}

// Enabled reports whether notifications of category c are switched on.
func Enabled(c Category, s model.Settings) bool {
	switch c {
	case CategoryPomo:
		return s.PomoNotificationsEnabled
	case CategoryFlow:
		return s.FlowNotificationsEnabled
	}
	return false
}

// Notify sends title and body when the category is enabled and permission is granted.
// Failures are logged and never returned.
func (p *Policy) Notify(c Category, title, body string) {
	if p == nil || p.sender == nil {
		return
	}
	if !Enabled(c, p.settings.Snapshot()) {
		logging.Logger.Debug("notification suppressed", "category", c, "title", title)
		return
	}

	granted, err := p.sender.EnsurePermission()
	if err != nil {
		logging.Logger.Warn("notification permission check failed", "category", c, "error", err)
		return
	}
	if !granted {
		logging.Logger.Debug("notification permission denied", "category", c)
		return
	}

	if err := p.sender.Send(title, body); err != nil {
		logging.Logger.Warn("failed to send notification", "category", c, "title", title, "error", err)
	}
}

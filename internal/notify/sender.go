package notify

import (
	"sync"

	"github.com/sadopc/timeplease/internal/logging"
)

// Sender delivers a message to the user.
type Sender interface {
	// EnsurePermission asks for permission if needed and reports whether sending is allowed.
	EnsurePermission() (bool, error)
	Send(title, body string) error
}

type cachedSender struct {
	Sender
	mu      sync.Mutex
	granted bool
}

// CachePermission wraps s so that a granted permission is asked for only once.
// Denials and errors are not cached.
func CachePermission(s Sender) Sender {
	return &cachedSender{Sender: s}
}

func (c *cachedSender) EnsurePermission() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.granted {
		return true, nil
	}
	granted, err := c.Sender.EnsurePermission()
	if err != nil {
		return false, err
	}
	c.granted = granted
	return granted, nil
}

// LogSender writes notifications to the log. Used when no terminal is attached.
type LogSender struct{}

func (LogSender) EnsurePermission() (bool, error) { return true, nil }

func (LogSender) Send(title, body string) error {
	logging.Logger.Info("notification", "title", title, "body", body)
	return nil
}

// FuncSender adapts a function to a Sender that is always permitted.
type FuncSender func(title, body string) error

func (f FuncSender) EnsurePermission() (bool, error) { return true, nil }

func (f FuncSender) Send(title, body string) error { return f(title, body) }

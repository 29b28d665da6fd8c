package tui

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Sender delivers notifications to the running program as status messages
// and rings the terminal bell. Sending is not permitted until a program is attached.
type Sender struct {
	mu      sync.Mutex
	program *tea.Program
	bell    io.Writer
}

func NewSender() *Sender {
	return &Sender{bell: os.Stderr}
}

// Attach routes notifications to p.
func (s *Sender) Attach(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	s.mu.Unlock()
}

func (s *Sender) EnsurePermission() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program != nil, nil
}

func (s *Sender) Send(title, body string) error {
	s.mu.Lock()
	p, bell := s.program, s.bell
	s.mu.Unlock()
	if p == nil {
		return nil
	}
	if bell != nil {
		if _, err := io.WriteString(bell, "\a"); err != nil {
			return err
		}
	}
	// Send blocks until the program reads the message, so it must not run on the Update goroutine.
	go p.Send(statusMsg{text: "🔔 " + title + ": " + body})
	return nil
}

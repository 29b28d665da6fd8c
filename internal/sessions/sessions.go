package sessions

import (
	"slices"
	"sync"

	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/store"
)

// Gateway is the persistence the session store and recorder need.
type Gateway interface {
	GetSessions() []model.Session
	SaveSession(model.Session)
	GetDailyStats() []model.DailyStats
	IncrementDailyStats(date string, d store.DailyStatsDelta)
}

// Store is the append-only in-memory session log backed by the gateway.
type Store struct {
	mu       sync.RWMutex
	gateway  Gateway
	sessions []model.Session
}

func New(gateway Gateway) *Store {
	return &Store{gateway: gateway}
}

// Load reads every stored session, oldest first.
func (s *Store) Load() []model.Session {
	loaded := s.gateway.GetSessions()
	s.mu.Lock()
	s.sessions = loaded
	s.mu.Unlock()
	return slices.Clone(loaded)
}

// Sessions returns every session, oldest first.
func (s *Store) Sessions() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sessions)
}

// Recent returns up to n sessions, newest first.
func (s *Store) Recent(n int) []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.sessions) {
		n = len(s.sessions)
	}
	out := slices.Clone(s.sessions[len(s.sessions)-n:])
	slices.Reverse(out)
	return out
}

// Add persists session and appends it. Write failures are logged by the gateway.
func (s *Store) Add(session model.Session) {
	s.gateway.SaveSession(session)
	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	s.mu.Unlock()
}

// DailyStats returns the stored per-date counters.
func (s *Store) DailyStats() []model.DailyStats {
	return s.gateway.GetDailyStats()
}

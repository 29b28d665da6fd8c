package timer

import (
	"sync"
	"time"
)

// Scheduler runs fn every d until the returned cancel func is called.
// Cancel must not block on fn, it may be called from inside fn.
type Scheduler interface {
	Every(d time.Duration, fn func()) (cancel func())
}

// TickerScheduler runs each source on its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// A tick and cancel can be ready together.
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// ManualScheduler fires ticks only when Tick is called. Used by tests and
// by callers that drive the engine from their own clock.
type ManualScheduler struct {
	mu      sync.Mutex
	nextID  int
	sources map[int]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{sources: make(map[int]func())}
}

func (m *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.sources[id] = fn

	return func() {
		m.mu.Lock()
		delete(m.sources, id)
		m.mu.Unlock()
	}
}

// Tick fires every live source n times.
func (m *ManualScheduler) Tick(n int) {
	for range n {
		m.mu.Lock()
		fns := make([]func(), 0, len(m.sources))
		for _, fn := range m.sources {
			fns = append(fns, fn)
		}
		m.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}

// Active returns the number of live sources.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sources)
}

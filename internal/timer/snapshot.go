package timer

import (
	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
)

// EventTimerTick names the snapshot event for observers outside the process.
const EventTimerTick = "timer-tick"

// Snapshot is the observable state published on every change.
type Snapshot struct {
	Time         int
	Mode         model.Mode
	Status       model.Status
	ProjectColor string
	IsBreak      bool
}

// Subscribe registers an observer. Snapshots are dropped, not queued, when
// the channel is full.
func (e *Engine) Subscribe(buffer int) <-chan Snapshot {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)
	e.mu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes ch.
func (e *Engine) Unsubscribe(ch <-chan Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, sub := range e.subscribers {
		if sub == ch {
			close(sub)
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			return
		}
	}
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Time:    e.time,
		Mode:    e.mode,
		Status:  e.status,
		IsBreak: e.isBreak,
	}
	if e.project != nil {
		s.ProjectColor = e.project.Color
	}
	return s
}

func (e *Engine) emitLocked() {
	snap := e.snapshotLocked()
	for i, ch := range e.subscribers {
		select {
		case ch <- snap:
		default:
			logging.Logger.Warn("failed to emit timer state", "event", EventTimerTick, "subscriber", i)
		}
	}
}

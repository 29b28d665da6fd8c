package timer

import (
	"sync"
	"time"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/notify"
)

// SettingsSource provides the settings read on every tick.
type SettingsSource interface {
	Snapshot() model.Settings
}

// Notifier receives the notifications raised by the engine.
type Notifier interface {
	Notify(c notify.Category, title, body string)
}

// State is a copy of the engine's in-memory state.
type State struct {
	Time             int
	Mode             model.Mode
	Status           model.Status
	PomodoroCycle    int
	SelectedProject  *model.Project
	IsBreak          bool
	CompletedSession *model.CompletedSession
}

// StopResult describes the segment that Stop ended.
type StopResult struct {
	Mode           model.Mode
	Status         model.Status
	IsBreak        bool
	ElapsedSeconds int
}

type Option func(*Engine)

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithBreakFinished registers fn to run after a Pomodoro break runs out.
func WithBreakFinished(fn func()) Option {
	return func(e *Engine) { e.onBreakFinished = fn }
}

type notification struct {
	category    notify.Category
	title, body string
}

// Engine is the Flow/Pomodoro state machine. All operations and ticks are
// serialized by one mutex; it is created once and lives for the process.
type Engine struct {
	mu        sync.Mutex
	settings  SettingsSource
	notifier  Notifier
	scheduler Scheduler

	onBreakFinished func()

	time             int
	mode             model.Mode
	status           model.Status
	cycle            int
	project          *model.Project
	isBreak          bool
	completedSession *model.CompletedSession

	cancel      func()
	generation  uint64
	subscribers []chan Snapshot
}

// New creates an idle engine in Flow mode.
func New(settings SettingsSource, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		settings:  settings,
		notifier:  notifier,
		scheduler: TickerScheduler{},
		mode:      model.ModeFlow,
		status:    model.StatusIdle,
		cycle:     1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State{
		Time:          e.time,
		Mode:          e.mode,
		Status:        e.status,
		PomodoroCycle: e.cycle,
		IsBreak:       e.isBreak,
	}
	if e.project != nil {
		p := *e.project
		st.SelectedProject = &p
	}
	if e.completedSession != nil {
		c := *e.completedSession
		st.CompletedSession = &c
	}
	return st
}

// SetProject selects p. Clearing the selection is ignored unless the timer is idle.
func (e *Engine) SetProject(p *model.Project) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p == nil && e.status != model.StatusIdle {
		logging.Logger.Debug("ignored project clear while timer is active", "status", e.status)
		return
	}
	if p == nil {
		e.project = nil
	} else {
		cp := *p
		e.project = &cp
	}
	e.emitLocked()
}

// SetMode switches mode, resets the cycle count and the timer.
func (e *Engine) SetMode(m model.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.mode = m
	e.cycle = 1
	e.resetLocked()
	e.emitLocked()
}

// Start runs the current segment. It is ignored without a project, while
// running, or while a Pomodoro break is already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.project == nil {
		logging.Logger.Debug("ignored start without project")
		return
	}
	if e.status == model.StatusRunning || (e.status == model.StatusBreak && e.mode == model.ModePomo) {
		logging.Logger.Debug("ignored start", "status", e.status)
		return
	}

	if e.mode == model.ModePomo && e.isBreak {
		e.status = model.StatusBreak
	} else {
		e.status = model.StatusRunning
	}

	e.cancelLocked()
	gen := e.generation
	e.cancel = e.scheduler.Every(time.Second, func() { e.tick(gen) })

	logging.Logger.Debug("timer started", "mode", e.mode, "status", e.status, "project_id", e.project.ID)
	e.emitLocked()
}

// Pause stops the tick source, keeping the time.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == model.StatusIdle {
		return
	}
	e.status = model.StatusPaused
	e.cancelLocked()
	e.emitLocked()
}

// Stop ends the current segment, resets the timer in the current mode and
// reports how long the segment ran.
func (e *Engine) Stop() StopResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings := e.settings.Snapshot()
	res := StopResult{Mode: e.mode, Status: e.status, IsBreak: e.isBreak}

	var elapsed int
	switch {
	case e.mode == model.ModeFlow:
		elapsed = e.time
	case e.isBreak:
		elapsed = settings.BreakSeconds(e.cycle) - e.time
	default:
		elapsed = settings.WorkSeconds() - e.time
	}
	res.ElapsedSeconds = max(elapsed, 0)

	e.resetLocked()
	e.emitLocked()

	logging.Logger.Debug("timer stopped", "mode", res.Mode, "elapsed_seconds", res.ElapsedSeconds)
	return res
}

// SyncSettings re-seeds an idle Pomodoro work segment from the current settings.
func (e *Engine) SyncSettings() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == model.StatusIdle && e.mode == model.ModePomo && !e.isBreak {
		e.time = e.settings.Snapshot().WorkSeconds()
		e.emitLocked()
	}
}

// Sync re-emits the current snapshot.
func (e *Engine) Sync() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitLocked()
}

// CompletedSession returns the run awaiting confirmation, if any.
func (e *Engine) CompletedSession() *model.CompletedSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.completedSession == nil {
		return nil
	}
	c := *e.completedSession
	return &c
}

func (e *Engine) ClearCompletedSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completedSession = nil
}

// StageCompletedSession hands a manually stopped run to the confirmation flow.
func (e *Engine) StageCompletedSession(c model.CompletedSession) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completedSession = &c
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || e.cancel == nil {
		e.mu.Unlock()
		return
	}

	settings := e.settings.Snapshot()
	var pending []notification
	breakFinished := false

	switch e.mode {
	case model.ModeFlow:
		e.time++
		if interval := settings.FlowNotificationInterval * 60; interval > 0 && e.time%interval == 0 {
			pending = append(pending, notification{
				category: notify.CategoryFlow,
				title:    "Flow Milestone",
				body:     "You've been working for " + FormatMilestone(e.time) + ". Keep it up or take a break?",
			})
		}
	case model.ModePomo:
		if e.time > 0 {
			e.time--
		}
		if e.time == 0 {
			if e.isBreak {
				pending = append(pending, e.finishBreakLocked(settings))
				breakFinished = true
			} else {
				pending = append(pending, e.finishWorkLocked(settings))
			}
		}
	}
	e.emitLocked()
	e.mu.Unlock()

	for _, n := range pending {
		if e.notifier != nil {
			e.notifier.Notify(n.category, n.title, n.body)
		}
	}
	if breakFinished && e.onBreakFinished != nil {
		e.onBreakFinished()
	}
}

func (e *Engine) finishWorkLocked(settings model.Settings) notification {
	e.cancelLocked()
	if e.project != nil {
		e.completedSession = &model.CompletedSession{
			ElapsedSeconds: settings.WorkSeconds(),
			Mode:           e.mode,
			ProjectID:      e.project.ID,
		}
	}
	e.isBreak = true
	e.status = model.StatusIdle
	e.time = settings.BreakSeconds(e.cycle)

	logging.Logger.Info("pomodoro work finished", "cycle", e.cycle, "long_break", settings.IsLongBreak(e.cycle))
	return notification{category: notify.CategoryPomo, title: "Work session finished", body: "Time to take a break!"}
}

func (e *Engine) finishBreakLocked(settings model.Settings) notification {
	e.cancelLocked()
	e.isBreak = false
	e.cycle++
	e.status = model.StatusIdle
	e.time = settings.WorkSeconds()

	logging.Logger.Info("pomodoro break finished", "next_cycle", e.cycle)
	return notification{category: notify.CategoryPomo, title: "Break finished", body: "Time to get back to work!"}
}

// resetLocked cancels the tick source and returns to an idle work segment.
func (e *Engine) resetLocked() {
	e.cancelLocked()
	e.status = model.StatusIdle
	e.isBreak = false
	if e.mode == model.ModePomo {
		e.time = e.settings.Snapshot().WorkSeconds()
	} else {
		e.time = 0
	}
}

func (e *Engine) cancelLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.generation++
}

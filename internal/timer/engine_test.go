package timer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/notify"
)

type mutableSettings struct {
	mu sync.Mutex
	s  model.Settings
}

func (m *mutableSettings) Snapshot() model.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s
}

func (m *mutableSettings) set(fn func(*model.Settings)) {
	m.mu.Lock()
	fn(&m.s)
	m.mu.Unlock()
}

type sentNotification struct {
	Category notify.Category
	Title    string
	Body     string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(c notify.Category, title, body string) {
	r.mu.Lock()
	r.sent = append(r.sent, sentNotification{c, title, body})
	r.mu.Unlock()
}

func (r *recordingNotifier) all() []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentNotification(nil), r.sent...)
}

var projectX = model.Project{ID: "x", Name: "Project X", Color: "#ff0000"}

type fixture struct {
	engine    *Engine
	scheduler *ManualScheduler
	settings  *mutableSettings
	notifier  *recordingNotifier
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		scheduler: NewManualScheduler(),
		settings:  &mutableSettings{s: model.DefaultSettings()},
		notifier:  &recordingNotifier{},
	}
	opts = append([]Option{WithScheduler(f.scheduler)}, opts...)
	f.engine = New(f.settings, f.notifier, opts...)
	return f
}

func (f *fixture) startPomo(t *testing.T) {
	t.Helper()
	f.engine.SetMode(model.ModePomo)
	f.engine.SetProject(&projectX)
	f.engine.Start()
	require.Equal(t, model.StatusRunning, f.engine.State().Status)
}

func TestNew_InitialState(t *testing.T) {
	f := newFixture(t)

	st := f.engine.State()
	assert.Equal(t, model.ModeFlow, st.Mode)
	assert.Equal(t, model.StatusIdle, st.Status)
	assert.Equal(t, 0, st.Time)
	assert.Equal(t, 1, st.PomodoroCycle)
	assert.Nil(t, st.SelectedProject)
	assert.False(t, st.IsBreak)
	assert.Nil(t, st.CompletedSession)
}

// ============================================================
// Flow
// ============================================================

func TestFlow_MilestoneAfterThirtyMinutes(t *testing.T) {
	f := newFixture(t)
	f.engine.SetProject(&projectX)
	f.engine.Start()

	f.scheduler.Tick(1800)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.CategoryFlow, sent[0].Category)
	assert.Equal(t, "Flow Milestone", sent[0].Title)
	assert.Equal(t, "You've been working for 30m. Keep it up or take a break?", sent[0].Body)
	assert.Equal(t, 1800, f.engine.State().Time)
	assert.Equal(t, model.StatusRunning, f.engine.State().Status)
}

func TestFlow_MilestoneWithHours(t *testing.T) {
	f := newFixture(t)
	f.engine.SetProject(&projectX)
	f.engine.Start()

	f.scheduler.Tick(5400)

	sent := f.notifier.all()
	require.Len(t, sent, 3)
	assert.Equal(t, "You've been working for 1h 30m. Keep it up or take a break?", sent[2].Body)
}

func TestFlow_MilestoneDisabledByZeroInterval(t *testing.T) {
	f := newFixture(t)
	f.settings.set(func(s *model.Settings) { s.FlowNotificationInterval = 0 })
	f.engine.SetProject(&projectX)
	f.engine.Start()

	f.scheduler.Tick(3600)

	assert.Empty(t, f.notifier.all())
	assert.Equal(t, 3600, f.engine.State().Time)
}

func TestFlow_StopReturnsAccumulatedTime(t *testing.T) {
	f := newFixture(t)
	f.engine.SetProject(&projectX)
	f.engine.Start()
	f.scheduler.Tick(42)

	res := f.engine.Stop()

	assert.Equal(t, StopResult{Mode: model.ModeFlow, Status: model.StatusRunning, ElapsedSeconds: 42}, res)
	st := f.engine.State()
	assert.Equal(t, model.StatusIdle, st.Status)
	assert.Equal(t, 0, st.Time)
	assert.Equal(t, 0, f.scheduler.Active())
}

// ============================================================
// Pomodoro
// ============================================================

func TestPomo_WorkSegmentFinishes(t *testing.T) {
	f := newFixture(t)
	f.startPomo(t)
	assert.Equal(t, 1500, f.engine.State().Time)

	f.scheduler.Tick(1499)
	assert.Empty(t, f.notifier.all(), "no notification before the countdown ends")

	f.scheduler.Tick(1)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, sentNotification{notify.CategoryPomo, "Work session finished", "Time to take a break!"}, sent[0])

	st := f.engine.State()
	assert.True(t, st.IsBreak)
	assert.Equal(t, model.StatusIdle, st.Status)
	assert.Equal(t, 5*60, st.Time)
	require.NotNil(t, st.CompletedSession)
	assert.Equal(t, model.CompletedSession{ElapsedSeconds: 1500, Mode: model.ModePomo, ProjectID: "x"}, *st.CompletedSession)
	assert.Equal(t, 0, f.scheduler.Active(), "finishing a segment cancels the tick source")
}

func TestPomo_BreakFinishesAndAdvancesCycle(t *testing.T) {
	breaks := 0
	f := newFixture(t, WithBreakFinished(func() { breaks++ }))
	f.startPomo(t)
	f.scheduler.Tick(1500)

	f.engine.Start()
	require.Equal(t, model.StatusBreak, f.engine.State().Status)
	f.scheduler.Tick(300)

	st := f.engine.State()
	assert.False(t, st.IsBreak)
	assert.Equal(t, 2, st.PomodoroCycle)
	assert.Equal(t, model.StatusIdle, st.Status)
	assert.Equal(t, 1500, st.Time)
	assert.Equal(t, 1, breaks)

	sent := f.notifier.all()
	require.Len(t, sent, 2)
	assert.Equal(t, sentNotification{notify.CategoryPomo, "Break finished", "Time to get back to work!"}, sent[1])
}

func TestPomo_LongBreakOnFourthCycle(t *testing.T) {
	f := newFixture(t)
	f.settings.set(func(s *model.Settings) {
		s.PomodoroDuration = 1
		s.BreakDuration = 2
		s.LongBreakDuration = 3
		s.SessionsBeforeLongBreak = 4
	})
	f.startPomo(t)

	for cycle := 1; cycle <= 3; cycle++ {
		f.scheduler.Tick(60)
		require.Equal(t, 120, f.engine.State().Time, "cycle %d uses the short break", cycle)
		f.engine.Start()
		f.scheduler.Tick(120)
		f.engine.Start()
	}
	require.Equal(t, 4, f.engine.State().PomodoroCycle)

	f.scheduler.Tick(60)

	st := f.engine.State()
	assert.True(t, st.IsBreak)
	assert.Equal(t, 180, st.Time)
}

func TestPomo_EveryBreakShortWhenLongBreaksDisabled(t *testing.T) {
	f := newFixture(t)
	f.settings.set(func(s *model.Settings) {
		s.PomodoroDuration = 1
		s.SessionsBeforeLongBreak = 0
	})
	f.startPomo(t)

	f.scheduler.Tick(60)

	assert.Equal(t, 300, f.engine.State().Time)
}

func TestPomo_NoCompletedSessionWithoutProject(t *testing.T) {
	f := newFixture(t)
	f.startPomo(t)
	// Clearing is only allowed when idle, so swap the engine state directly.
	f.engine.mu.Lock()
	f.engine.project = nil
	f.engine.mu.Unlock()

	f.scheduler.Tick(1500)

	assert.Nil(t, f.engine.CompletedSession())
	assert.True(t, f.engine.State().IsBreak)
}

func TestPomo_StopWorkSegment(t *testing.T) {
	f := newFixture(t)
	f.startPomo(t)
	f.scheduler.Tick(600)

	res := f.engine.Stop()

	assert.Equal(t, StopResult{Mode: model.ModePomo, Status: model.StatusRunning, ElapsedSeconds: 600}, res)
	st := f.engine.State()
	assert.Equal(t, 1500, st.Time)
	assert.Equal(t, model.StatusIdle, st.Status)
	assert.Equal(t, 1, st.PomodoroCycle)
}

func TestPomo_StopBreakSegment(t *testing.T) {
	f := newFixture(t)
	f.startPomo(t)
	f.scheduler.Tick(1500)
	f.engine.Start()
	f.scheduler.Tick(100)

	res := f.engine.Stop()

	assert.Equal(t, StopResult{Mode: model.ModePomo, Status: model.StatusBreak, IsBreak: true, ElapsedSeconds: 100}, res)
	st := f.engine.State()
	assert.False(t, st.IsBreak)
	assert.Equal(t, 1500, st.Time)
}

func TestPomo_StopNeverNegative(t *testing.T) {
	f := newFixture(t)
	f.startPomo(t)
	f.scheduler.Tick(10)
	f.settings.set(func(s *model.Settings) { s.PomodoroDuration = 0 })

	res := f.engine.Stop()

	assert.Equal(t, 0, res.ElapsedSeconds)
}

func TestPomo_ZeroDurationFinishesOnFirstTick(t *testing.T) {
	f := newFixture(t)
	f.settings.set(func(s *model.Settings) { s.PomodoroDuration = 0 })
	f.startPomo(t)

	f.scheduler.Tick(1)

	st := f.engine.State()
	assert.True(t, st.IsBreak)
	assert.GreaterOrEqual(t, st.Time, 0)
}

func TestPomo_StartIgnoredWhileBreakRunning(t *testing.T) {
	f := newFixture(t)
	f.startPomo(t)
	f.scheduler.Tick(1500)
	f.engine.Start()
	f.scheduler.Tick(5)

	f.engine.Start()

	assert.Equal(t, 1, f.scheduler.Active())
	assert.Equal(t, 295, f.engine.State().Time)
}

func TestPomo_PauseAndResumeBreak(t *testing.T) {
	f := newFixture(t)
	f.startPomo(t)
	f.scheduler.Tick(1500)
	f.engine.Start()
	f.scheduler.Tick(10)

	f.engine.Pause()
	f.scheduler.Tick(10)
	assert.Equal(t, model.StatusPaused, f.engine.State().Status)
	assert.Equal(t, 290, f.engine.State().Time)

	f.engine.Start()
	assert.Equal(t, model.StatusBreak, f.engine.State().Status)
}

// ============================================================
// Transitions
// ============================================================

func TestStart_NoopWithoutProject(t *testing.T) {
	f := newFixture(t)
	ch := f.engine.Subscribe(4)

	f.engine.Start()

	assert.Equal(t, model.StatusIdle, f.engine.State().Status)
	assert.Equal(t, 0, f.scheduler.Active())
	assert.Empty(t, ch)
}

func TestStart_NoopWhenRunning(t *testing.T) {
	f := newFixture(t)
	f.engine.SetProject(&projectX)
	f.engine.Start()
	f.scheduler.Tick(3)

	f.engine.Start()
	f.scheduler.Tick(1)

	assert.Equal(t, 1, f.scheduler.Active())
	assert.Equal(t, 4, f.engine.State().Time)
}

func TestStart_DoesNotTickImmediately(t *testing.T) {
	f := newFixture(t)
	f.engine.SetProject(&projectX)

	f.engine.Start()

	assert.Equal(t, 0, f.engine.State().Time)
}

func TestSetProject_ClearRejectedUnlessIdle(t *testing.T) {
	f := newFixture(t)
	f.engine.SetProject(&projectX)
	f.engine.Start()

	f.engine.SetProject(nil)
	require.NotNil(t, f.engine.State().SelectedProject)

	f.engine.Pause()
	f.engine.SetProject(nil)
	require.NotNil(t, f.engine.State().SelectedProject, "paused is not idle")

	f.engine.Stop()
	f.engine.SetProject(nil)
	assert.Nil(t, f.engine.State().SelectedProject)
}

func TestSetProject_CopiesValue(t *testing.T) {
	f := newFixture(t)
	p := projectX
	f.engine.SetProject(&p)

	p.Color = "#000000"

	assert.Equal(t, "#ff0000", f.engine.Snapshot().ProjectColor)
}

func TestSetMode_ResetsCycleAndTimer(t *testing.T) {
	f := newFixture(t)
	f.startPomo(t)
	f.scheduler.Tick(1500)
	f.engine.Start()
	f.scheduler.Tick(300)
	require.Equal(t, 2, f.engine.State().PomodoroCycle)

	f.engine.SetMode(model.ModePomo)

	st := f.engine.State()
	assert.Equal(t, 1, st.PomodoroCycle)
	assert.Equal(t, 1500, st.Time)

	f.engine.SetMode(model.ModeFlow)
	st = f.engine.State()
	assert.Equal(t, 0, st.Time)
	assert.Equal(t, model.StatusIdle, st.Status)
	assert.False(t, st.IsBreak)
}

func TestPause_NoopWhenIdle(t *testing.T) {
	f := newFixture(t)
	ch := f.engine.Subscribe(4)

	f.engine.Pause()

	assert.Equal(t, model.StatusIdle, f.engine.State().Status)
	assert.Empty(t, ch)
}

func TestSyncSettings(t *testing.T) {
	f := newFixture(t)
	f.engine.SetMode(model.ModePomo)
	f.settings.set(func(s *model.Settings) { s.PomodoroDuration = 50 })

	f.engine.SyncSettings()
	assert.Equal(t, 3000, f.engine.State().Time)

	// Running segments keep their countdown.
	f.engine.SetProject(&projectX)
	f.engine.Start()
	f.settings.set(func(s *model.Settings) { s.PomodoroDuration = 10 })
	f.engine.SyncSettings()
	assert.Equal(t, 3000, f.engine.State().Time)
}

func TestSyncSettings_IgnoredInFlow(t *testing.T) {
	f := newFixture(t)
	f.engine.SyncSettings()
	assert.Equal(t, 0, f.engine.State().Time)
}

func TestStaleTickIgnored(t *testing.T) {
	f := newFixture(t)
	f.engine.SetProject(&projectX)
	f.engine.Start()
	gen := f.engine.generation

	f.engine.Pause()
	f.engine.tick(gen)

	assert.Equal(t, 0, f.engine.State().Time)
}

func TestCompletedSession_StageAndClear(t *testing.T) {
	f := newFixture(t)
	f.engine.StageCompletedSession(model.CompletedSession{ElapsedSeconds: 90, Mode: model.ModeFlow, ProjectID: "x"})

	got := f.engine.CompletedSession()
	require.NotNil(t, got)
	assert.Equal(t, 90, got.ElapsedSeconds)

	f.engine.ClearCompletedSession()
	assert.Nil(t, f.engine.CompletedSession())
}

// ============================================================
// Snapshots
// ============================================================

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	f := newFixture(t)
	ch := f.engine.Subscribe(16)

	f.engine.SetProject(&projectX)
	f.engine.Start()
	f.scheduler.Tick(2)

	var got []Snapshot
	for len(ch) > 0 {
		got = append(got, <-ch)
	}
	require.Len(t, got, 4)
	assert.Equal(t, Snapshot{Time: 0, Mode: model.ModeFlow, Status: model.StatusIdle, ProjectColor: "#ff0000"}, got[0])
	assert.Equal(t, model.StatusRunning, got[1].Status)
	assert.Equal(t, 2, got[3].Time)
}

func TestSubscribe_FullChannelDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	ch := f.engine.Subscribe(1)
	f.engine.SetProject(&projectX)
	f.engine.Start()

	assert.NotPanics(t, func() { f.scheduler.Tick(10) })
	assert.Len(t, ch, 1)
	assert.Equal(t, 10, f.engine.State().Time)
}

func TestSync_ReEmits(t *testing.T) {
	f := newFixture(t)
	ch := f.engine.Subscribe(2)

	f.engine.Sync()

	require.Len(t, ch, 1)
	assert.Equal(t, f.engine.Snapshot(), <-ch)
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	f := newFixture(t)
	ch := f.engine.Subscribe(1)

	f.engine.Unsubscribe(ch)
	f.engine.Sync()

	_, open := <-ch
	assert.False(t, open)
}

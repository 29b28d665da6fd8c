package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/store"
)

type failingGateway struct {
	stored model.Settings
	ok     bool
	err    error
}

func (g *failingGateway) LoadSettings() (model.Settings, bool) { return g.stored, g.ok }

func (g *failingGateway) SaveSettings(model.Settings) error { return g.err }

func newTestSettings(t *testing.T) (*Store, *store.Store) {
	t.Helper()
	db, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), db
}

func TestLoad_DefaultsWhenAbsent(t *testing.T) {
	s, _ := newTestSettings(t)

	got := s.Load()

	assert.Equal(t, model.DefaultSettings(), got)
	assert.Equal(t, model.DefaultSettings(), s.Snapshot())
}

func TestLoad_StoredValues(t *testing.T) {
	s, db := newTestSettings(t)
	stored := model.DefaultSettings()
	stored.PomodoroDuration = 45
	stored.Theme = model.ThemeLight
	require.NoError(t, db.SaveSettings(stored))

	assert.Equal(t, stored, s.Load())
}

func TestSetters_PersistChanges(t *testing.T) {
	s, db := newTestSettings(t)
	s.Load()

	require.NoError(t, s.SetPomodoroDuration(50))
	require.NoError(t, s.SetBreakDuration(10))
	require.NoError(t, s.SetLongBreakDuration(20))
	require.NoError(t, s.SetSessionsBeforeLongBreak(3))
	require.NoError(t, s.SetTheme(model.ThemeDark))
	require.NoError(t, s.SetPomoNotificationsEnabled(false))
	require.NoError(t, s.SetFlowNotificationsEnabled(false))
	require.NoError(t, s.SetFlowNotificationInterval(15))

	want := model.Settings{
		PomodoroDuration:         50,
		BreakDuration:            10,
		LongBreakDuration:        20,
		SessionsBeforeLongBreak:  3,
		Theme:                    model.ThemeDark,
		PomoNotificationsEnabled: false,
		FlowNotificationsEnabled: false,
		FlowNotificationInterval: 15,
	}
	assert.Equal(t, want, s.Snapshot())

	persisted, ok := db.LoadSettings()
	require.True(t, ok)
	assert.Equal(t, want, persisted)
}

func TestUpdate_WriteErrorPropagates(t *testing.T) {
	gw := &failingGateway{err: errors.New("disk full")}
	s := New(gw)
	s.Load()

	err := s.SetPomodoroDuration(99)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 25, s.Snapshot().PomodoroDuration, "failed write must not change in-memory settings")
}

func TestUpdate_RejectsInvalid(t *testing.T) {
	s, _ := newTestSettings(t)
	s.Load()

	err := s.SetBreakDuration(-1)
	require.ErrorIs(t, err, ErrInvalid)

	err = s.SetTheme("neon")
	require.ErrorIs(t, err, ErrInvalid)

	assert.Equal(t, model.DefaultSettings(), s.Snapshot())
}

func TestReset(t *testing.T) {
	s, _ := newTestSettings(t)
	s.Load()
	require.NoError(t, s.SetPomodoroDuration(60))

	require.NoError(t, s.Reset())

	assert.Equal(t, model.DefaultSettings(), s.Snapshot())
}

func TestValidate_ZeroIsAllowed(t *testing.T) {
	st := model.DefaultSettings()
	st.SessionsBeforeLongBreak = 0
	st.FlowNotificationInterval = 0

	assert.NoError(t, Validate(st))
}

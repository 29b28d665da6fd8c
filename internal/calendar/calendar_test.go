package calendar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/sadopc/timeplease/internal/model"
)

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) HasSession(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEvents) Insert(ctx context.Context, ev *gcal.Event) error {
	return m.Called(ctx, ev).Error(0)
}

var (
	start   = time.Date(2025, 12, 3, 9, 0, 0, 0, time.UTC)
	project = model.Project{ID: "p1", Name: "Writing", Color: "#123456", Notes: "chapter 3"}
)

func testSession(id string, at time.Time) model.Session {
	return model.Session{
		ID:                id,
		ProjectID:         "p1",
		StartTime:         at,
		EndTime:           at.Add(50 * time.Minute),
		ElapsedSeconds:    3000,
		ActualWorkMinutes: 40,
		Label:             "draft",
		Type:              model.ModePomo,
	}
}

func TestSessionToEvent(t *testing.T) {
	ev := SessionToEvent(testSession("s1", start), &project)

	assert.Equal(t, "Writing: draft", ev.Summary)
	assert.Equal(t, "2025-12-03T09:00:00Z", ev.Start.DateTime)
	assert.Equal(t, "2025-12-03T09:50:00Z", ev.End.DateTime)
	require.NotNil(t, ev.ExtendedProperties)
	assert.Equal(t, "s1", ev.ExtendedProperties.Private[SessionIDProperty])
	assert.Contains(t, ev.Description, "Mode: Pomo")
	assert.Contains(t, ev.Description, "Elapsed: 50m0s")
	assert.Contains(t, ev.Description, "Actual work: 40m")
	assert.Contains(t, ev.Description, "Efficiency: 80%")
	assert.Contains(t, ev.Description, "chapter 3")
}

func TestSessionToEvent_UnknownProjectNoLabel(t *testing.T) {
	s := testSession("s1", start)
	s.Label = ""

	ev := SessionToEvent(s, nil)

	assert.Equal(t, "Unknown Project", ev.Summary)
	assert.False(t, strings.Contains(ev.Description, "Notes:"))
}

func TestSync_PublishesNewSessions(t *testing.T) {
	events := &mockEvents{}
	events.On("HasSession", mock.Anything, "old").Return(true, nil).Once()
	events.On("HasSession", mock.Anything, "new").Return(false, nil).Once()
	events.On("Insert", mock.Anything, mock.MatchedBy(func(ev *gcal.Event) bool {
		return ev.ExtendedProperties.Private[SessionIDProperty] == "new"
	})).Return(nil).Once()

	res, err := NewPublisher(events).Sync(context.Background(),
		[]model.Session{testSession("old", start), testSession("new", start.Add(time.Hour))},
		map[string]model.Project{"p1": project},
		time.Time{},
	)

	require.NoError(t, err)
	assert.Equal(t, SyncResult{Published: 1, Skipped: 1}, res)
	events.AssertExpectations(t)
}

func TestSync_SkipsBeforeSince(t *testing.T) {
	events := &mockEvents{}

	res, err := NewPublisher(events).Sync(context.Background(),
		[]model.Session{testSession("s1", start)}, nil, start.Add(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, SyncResult{}, res)
	events.AssertNotCalled(t, "HasSession", mock.Anything, mock.Anything)
}

func TestSync_CountsFailures(t *testing.T) {
	events := &mockEvents{}
	events.On("HasSession", mock.Anything, "a").Return(false, errors.New("quota")).Once()
	events.On("HasSession", mock.Anything, "b").Return(false, nil).Once()
	events.On("Insert", mock.Anything, mock.Anything).Return(errors.New("forbidden")).Once()

	res, err := NewPublisher(events).Sync(context.Background(),
		[]model.Session{testSession("a", start), testSession("b", start)}, nil, time.Time{})

	require.NoError(t, err)
	assert.Equal(t, SyncResult{Failed: 2}, res)
}

func TestSync_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPublisher(&mockEvents{}).Sync(ctx, []model.Session{testSession("a", start)}, nil, time.Time{})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeRedirect(t *testing.T) {
	assert.Equal(t, "http://localhost:6789/oauth2callback", normalizeRedirect(""))
	assert.Equal(t, "http://localhost:6789/oauth2callback", normalizeRedirect("urn:ietf:wg:oauth:2.0:oob"))
	assert.Equal(t, "http://localhost:6789", normalizeRedirect("http://localhost"))
	assert.Equal(t, "http://127.0.0.1:6789/cb", normalizeRedirect("http://127.0.0.1:8080/cb"))
	assert.Equal(t, "https://example.com/cb", normalizeRedirect("https://example.com/cb"))
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", TokenFile)
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}

	require.NoError(t, saveToken(path, tok))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a", got.AccessToken)
	assert.Equal(t, "r", got.RefreshToken)
}

func TestClient_NotAuthorized(t *testing.T) {
	dir := t.TempDir()
	creds := `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, CredentialsFile), []byte(creds), 0o600))

	_, err := Auth{Dir: dir}.Client(context.Background())

	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestConfig_MissingCredentials(t *testing.T) {
	_, err := Auth{Dir: t.TempDir()}.Config()
	assert.Error(t, err)
}

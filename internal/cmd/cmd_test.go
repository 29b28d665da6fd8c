package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timeplease/internal/config"
	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/projects"
	"github.com/sadopc/timeplease/internal/sessions"
	"github.com/sadopc/timeplease/internal/store"
)

type testEnv struct {
	dir    string
	dbPath string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TIMEPLEASE_HOME", dir)
	return testEnv{dir: dir, dbPath: filepath.Join(dir, "test.db")}
}

// run parses args like main does and executes the selected command.
func (e testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var out bytes.Buffer
	cli.stdout = &out
	cli.stdin = strings.NewReader(stdin)

	parser, err := kong.New(&cli,
		kong.Name("timeplease"),
		kong.Vars{"version": "test"},
		kong.Bind(&cli),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)
	defer cli.Close()

	base := []string{"--db", e.dbPath, "--config", filepath.Join(e.dir, "config.yaml")}
	ctx, err := parser.Parse(append(base, args...))
	if err != nil {
		return out.String(), err
	}
	err = ctx.Run()
	return out.String(), err
}

// record stores one confirmed run that ended at end.
func (e testEnv) record(t *testing.T, projectID string, elapsed int, worked float64, label string, end time.Time) model.Session {
	t.Helper()
	c, err := NewContainer(e.dbPath)
	require.NoError(t, err)
	defer c.Close()

	s, err := c.Recorder.RecordAt(
		model.CompletedSession{ElapsedSeconds: elapsed, Mode: model.ModeFlow, ProjectID: projectID},
		sessions.Confirmation{ActualWorkMinutes: worked, Label: label},
		end,
	)
	require.NoError(t, err)
	return s
}

func (e testEnv) addProject(t *testing.T, name string) model.Project {
	t.Helper()
	c, err := NewContainer(e.dbPath)
	require.NoError(t, err)
	defer c.Close()

	p, err := c.Projects.Add(name, "", "")
	require.NoError(t, err)
	return p
}

func TestProjectsAddAndList(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "projects", "add", "Writing", "--color", "#2EC4B6", "--notes", "book\nchapter 2")
	require.NoError(t, err)
	assert.Contains(t, out, `Added project "Writing"`)

	out, err = env.run(t, "", "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Writing")
	assert.Contains(t, out, "#2EC4B6")
	assert.Contains(t, out, "book")
	assert.NotContains(t, out, "chapter 2")
	assert.Contains(t, out, "Total: 1 projects")
}

func TestProjectsListEmpty(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found.")
}

func TestProjectsAddEmptyName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "projects", "add", "  ")
	require.ErrorIs(t, err, projects.ErrEmptyName)
}

func TestProjectsArchiveAndUnarchive(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProject(t, "Research")

	out, err := env.run(t, "", "projects", "archive", "research")
	require.NoError(t, err)
	assert.Contains(t, out, `Archived project "Research"`)

	out, err = env.run(t, "", "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found.")

	out, err = env.run(t, "", "projects", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "archived")

	out, err = env.run(t, "", "projects", "unarchive", p.ID[:6])
	require.NoError(t, err)
	assert.Contains(t, out, `Restored project "Research"`)

	out, err = env.run(t, "", "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Research")
	assert.Contains(t, out, "active")
}

func TestProjectsRm(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProject(t, "Scratch")

	out, err := env.run(t, "n\n", "projects", "rm", p.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out, err = env.run(t, "y\n", "projects", "rm", p.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted project "Scratch"`)

	_, err = env.run(t, "", "projects", "rm", "--force", p.ID)
	require.ErrorIs(t, err, projects.ErrNotFound)
}

func TestResolveProject(t *testing.T) {
	db, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := projects.New(db)
	s.Load()

	a, err := s.Add("Alpha", "", "")
	require.NoError(t, err)
	_, err = s.Add("Beta", "", "")
	require.NoError(t, err)

	got, err := resolveProject(s, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = resolveProject(s, "ALPHA")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = resolveProject(s, "gamma")
	assert.ErrorIs(t, err, projects.ErrNotFound)

	_, err = resolveProject(s, "")
	assert.ErrorIs(t, err, projects.ErrNotFound)
}

func TestResolveProject_Ambiguous(t *testing.T) {
	db, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SaveProjects([]model.Project{
		{ID: "abc-1", Name: "One"},
		{ID: "abc-2", Name: "Two"},
	}))
	s := projects.New(db)
	s.Load()

	_, err = resolveProject(s, "abc")
	assert.ErrorIs(t, err, errAmbiguousProject)

	got, err := resolveProject(s, "abc-2")
	require.NoError(t, err)
	assert.Equal(t, "Two", got.Name)
}

func TestSessionsList(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProject(t, "Writing")
	now := time.Now()
	env.record(t, p.ID, 1500, 20, "draft", now.Add(-2*time.Hour))
	env.record(t, "gone", 600, 10, "", now.Add(-time.Hour))

	out, err := env.run(t, "", "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Writing")
	assert.Contains(t, out, metrics.UnknownProjectName)
	assert.Contains(t, out, "draft")
	assert.Contains(t, out, "ago")
	assert.Contains(t, out, "Total: 2 sessions")

	// Newest first.
	assert.Less(t, strings.Index(out, metrics.UnknownProjectName), strings.Index(out, "Writing"))

	out, err = env.run(t, "", "sessions", "list", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1 sessions")
	assert.NotContains(t, out, "draft")

	out, err = env.run(t, "", "sessions", "list", "--project", "writing")
	require.NoError(t, err)
	assert.Contains(t, out, "draft")
	assert.Contains(t, out, "Total: 1 sessions")
}

func TestSessionsListEmpty(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")
}

func TestSessionsStats(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProject(t, "Writing")
	end := time.Date(2025, 12, 3, 18, 0, 0, 0, time.Local)
	env.record(t, p.ID, 1500, 25, "", end)
	env.record(t, p.ID, 3600, 50, "", end.Add(2*time.Hour))

	out, err := env.run(t, "", "sessions", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-12-03")
	assert.Contains(t, out, "1h 15m")
	assert.Contains(t, out, "TOTAL")
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProject(t, "Writing")
	end := time.Date(2025, 12, 3, 18, 0, 0, 0, time.Local)
	env.record(t, p.ID, 3600, 45, "", end)

	out, err := env.run(t, "", "report", "--months", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "December 2025")
	assert.Contains(t, out, "45m over 1 days")
	assert.Contains(t, out, "W49")
	assert.Contains(t, out, "2025-12-03")
	assert.Contains(t, out, "75%")

	out, err = env.run(t, "", "report", "--months", "0", "--days")
	require.NoError(t, err)
	assert.Contains(t, out, "Writing")
	assert.Contains(t, out, "1h 00m")
	assert.Contains(t, out, "Total: 1 days")
}

func TestReportEmpty(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions recorded")
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProject(t, "Writing")
	env.record(t, p.ID, 1500, 20, "draft", time.Date(2025, 12, 3, 18, 0, 0, 0, time.Local))

	tests := []struct {
		name string
		args []string
		file string
	}{
		{name: "sessions csv", args: []string{"--format", "csv"}, file: "sessions.csv"},
		{name: "sessions json", args: []string{"--format", "json"}, file: "sessions.json"},
		{name: "days csv", args: []string{"--format", "csv", "--days"}, file: "days.csv"},
		{name: "days json", args: []string{"--format", "json", "--days"}, file: "days.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			out, err := env.run(t, "", append([]string{"export", "--out", path}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "Exported 1 sessions")

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			if strings.HasSuffix(tt.file, ".json") {
				assert.True(t, json.Valid(raw))
			}
			assert.Contains(t, string(raw), "Writing")
		})
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "export", "--format", "xml", "--out", filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
}

func TestCalendarSyncInvalidSince(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "calendar", "sync", "--since", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestCalendarSyncNotAuthorized(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "calendar", "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}

func TestParseSince(t *testing.T) {
	got, err := parseSince("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseSince("2025-12-03")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 12, 3, 0, 0, 0, 0, time.Local)))
}

func TestSinceMonths(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)

	assert.Nil(t, sinceMonths(0, now).From)

	f := sinceMonths(1, now)
	require.NotNil(t, f.From)
	assert.True(t, f.From.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)))

	f = sinceMonths(4, now)
	require.NotNil(t, f.From)
	assert.True(t, f.From.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.Local)))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", formatMinutes(0))
	assert.Equal(t, "25m", formatMinutes(25))
	assert.Equal(t, "1h 05m", formatMinutes(65))
	assert.Equal(t, "2h 00m", formatMinutes(119.6))
}

func TestApplyConfig(t *testing.T) {
	t.Setenv("TIMEPLEASE_HOME", t.TempDir())
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.MaxLogFiles = 5
	cfg.Debug = true

	t.Run("file fills defaults", func(t *testing.T) {
		cli := CLI{MaxLogFiles: logging.DefaultMaxLogFiles}
		cli.applyConfig(cfg)
		assert.Equal(t, 5, cli.MaxLogFiles)
		assert.True(t, cli.Debug)
		assert.Equal(t, cfg.DBPath(), cli.DBPath)
		assert.Same(t, cfg, cli.Config())
	})

	t.Run("flags win", func(t *testing.T) {
		cli := CLI{MaxLogFiles: 7, DBPath: "/tmp/custom.db"}
		cli.applyConfig(cfg)
		assert.Equal(t, 7, cli.MaxLogFiles)
		assert.Equal(t, "/tmp/custom.db", cli.DBPath)
	})

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("TIMEPLEASE_MAX_LOG_FILES", "100")
		t.Setenv("TIMEPLEASE_DEBUG", "0")
		cli := CLI{MaxLogFiles: logging.DefaultMaxLogFiles}
		cli.applyConfig(cfg)
		assert.Equal(t, logging.DefaultMaxLogFiles, cli.MaxLogFiles)
		assert.False(t, cli.Debug)
	})
}

func TestConfigFileSetsDataDir(t *testing.T) {
	env := newTestEnv(t)
	dataDir := filepath.Join(env.dir, "data")
	cfgPath := filepath.Join(env.dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data_dir: "+dataDir+"\n"), 0o644))

	var cli CLI
	cli.stdout = &bytes.Buffer{}
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Bind(&cli), kong.Exit(func(int) {}))
	require.NoError(t, err)
	defer cli.Close()

	_, err = parser.Parse([]string{"--config", cfgPath, "projects", "list"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "timeplease.db"), cli.DBPath)
	assert.FileExists(t, cli.DBPath)
}

func TestLoadReportData(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProject(t, "Writing")
	old := env.record(t, p.ID, 600, 10, "", time.Date(2025, 11, 3, 18, 0, 0, 0, time.Local))
	recent := env.record(t, p.ID, 600, 10, "", time.Date(2025, 12, 3, 18, 0, 0, 0, time.Local))

	c, err := NewContainer(env.dbPath)
	require.NoError(t, err)
	defer c.Close()

	data, err := c.loadReportData(context.Background(), store.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, data.projects, 1)
	require.Len(t, data.sessions, 2)
	assert.Equal(t, old.ID, data.sessions[0].ID)
	assert.Contains(t, data.projectsByID(), p.ID)

	from := time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local)
	data, err = c.loadReportData(context.Background(), store.SessionFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, data.sessions, 1)
	assert.Equal(t, recent.ID, data.sessions[0].ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.loadReportData(ctx, store.SessionFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContainerCloseTwice(t *testing.T) {
	env := newTestEnv(t)
	c, err := NewContainer(env.dbPath)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

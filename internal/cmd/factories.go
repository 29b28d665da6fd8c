package cmd

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/projects"
	"github.com/sadopc/timeplease/internal/sessions"
	"github.com/sadopc/timeplease/internal/settings"
	"github.com/sadopc/timeplease/internal/store"
)

// Container holds all dependencies for the application
type Container struct {
	Store    *store.Store
	Settings *settings.Store
	Projects *projects.Store
	Sessions *sessions.Store
	Recorder *sessions.Recorder
}

// NewContainer opens the database at dbPath and loads every store from it.
func NewContainer(dbPath string) (*Container, error) {
	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newContainerWithStore(db), nil
}

func newContainerWithStore(db *store.Store) *Container {
	set := settings.New(db)
	set.Load()
	proj := projects.New(db)
	proj.Load()
	sess := sessions.New(db)
	sess.Load()

	return &Container{
		Store:    db,
		Settings: set,
		Projects: proj,
		Sessions: sess,
		Recorder: sessions.NewRecorder(sess),
	}
}

// Close closes all resources held by the container. It is safe to call twice.
func (c *Container) Close() error {
	if c.Store == nil {
		return nil
	}
	err := c.Store.Close()
	c.Store = nil
	return err
}

// reportData is the input of the aggregator: every project plus the matching sessions.
type reportData struct {
	projects []model.Project
	sessions []model.Session
}

func (d reportData) projectsByID() map[string]model.Project {
	m := make(map[string]model.Project, len(d.projects))
	for _, p := range d.projects {
		m[p.ID] = p
	}
	return m
}

// loadReportData reads projects and sessions from the database concurrently.
func (c *Container) loadReportData(ctx context.Context, f store.SessionFilter) (reportData, error) {
	var data reportData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data.projects = c.Store.LoadProjects()
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		list, err := c.Store.ListSessions(f)
		if err != nil {
			return err
		}
		data.sessions = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return reportData{}, fmt.Errorf("load report data: %w", err)
	}
	logging.Logger.Debug("report data loaded", "projects", len(data.projects), "sessions", len(data.sessions))
	return data, nil
}

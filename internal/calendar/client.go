package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
)

var ErrCalendarNotFound = errors.New("calendar not found")

// Events is the part of the Calendar API the publisher uses.
type Events interface {
	// HasSession reports whether an event for sessionID already exists.
	HasSession(ctx context.Context, sessionID string) (bool, error)
	Insert(ctx context.Context, ev *gcal.Event) error
}

// GoogleEvents talks to one Google calendar.
type GoogleEvents struct {
	srv        *gcal.Service
	calendarID string
}

// NewGoogleEvents resolves the calendar whose summary is calendarName.
func NewGoogleEvents(ctx context.Context, client *http.Client, calendarName string) (*GoogleEvents, error) {
	srv, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	list, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	for _, item := range list.Items {
		if item.Summary == calendarName {
			return &GoogleEvents{srv: srv, calendarID: item.Id}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrCalendarNotFound, calendarName)
}

func (g *GoogleEvents) HasSession(ctx context.Context, sessionID string) (bool, error) {
	events, err := g.srv.Events.List(g.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", SessionIDProperty, sessionID)).
		Context(ctx).
		Do()
	if err != nil {
		return false, err
	}
	return len(events.Items) > 0, nil
}

func (g *GoogleEvents) Insert(ctx context.Context, ev *gcal.Event) error {
	_, err := g.srv.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	return err
}

// SyncResult counts what Sync did.
type SyncResult struct {
	Published int
	Skipped   int
	Failed    int
}

// Publisher copies sessions into a calendar.
type Publisher struct {
	events Events
}

func NewPublisher(events Events) *Publisher {
	return &Publisher{events: events}
}

// Sync publishes every session that started at or after since and is not in
// the calendar yet. A failing session is logged and counted; the context
// aborts the run.
func (p *Publisher) Sync(ctx context.Context, sessions []model.Session, projects map[string]model.Project, since time.Time) (SyncResult, error) {
	var res SyncResult
	for _, s := range sessions {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if s.StartTime.Before(since) {
			continue
		}

		exists, err := p.events.HasSession(ctx, s.ID)
		if err != nil {
			logging.Logger.Warn("failed to look up calendar event", "session_id", s.ID, "error", err)
			res.Failed++
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		var project *model.Project
		if pr, ok := projects[s.ProjectID]; ok {
			project = &pr
		}
		if err := p.events.Insert(ctx, SessionToEvent(s, project)); err != nil {
			logging.Logger.Warn("failed to publish session", "session_id", s.ID, "error", err)
			res.Failed++
			continue
		}
		res.Published++
	}

	logging.Logger.Info("calendar sync finished", "published", res.Published, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

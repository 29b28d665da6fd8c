package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sadopc/timeplease/internal/calendar"
	"github.com/sadopc/timeplease/internal/config"
	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/store"
)

// CalendarCmd publishes sessions to Google Calendar
type CalendarCmd struct {
	Auth CalendarAuthCmd `cmd:"auth" help:"Authorize timeplease to write to your calendar"`
	Sync CalendarSyncCmd `cmd:"sync" help:"Publish sessions that are not in the calendar yet"`
}

func calendarAuth(cli *CLI) (calendar.Auth, error) {
	dir, err := config.Dir()
	if err != nil {
		return calendar.Auth{}, err
	}
	return calendar.Auth{Dir: dir, Out: cli.out()}, nil
}

// CalendarAuthCmd runs the OAuth flow
type CalendarAuthCmd struct{}

// Run executes the auth command
func (a *CalendarAuthCmd) Run(cli *CLI) error {
	auth, err := calendarAuth(cli)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := auth.Login(ctx); err != nil {
		return fmt.Errorf("failed to authorize calendar access: %w", err)
	}
	fmt.Fprintf(cli.out(), "Authorized. Token saved to %s\n", filepath.Join(auth.Dir, calendar.TokenFile))
	return nil
}

// CalendarSyncCmd publishes sessions
type CalendarSyncCmd struct {
	Since    string `help:"Only publish sessions started on or after this date (YYYY-MM-DD)"`
	Calendar string `help:"Name of the target calendar (defaults to the config value)"`
}

// Run executes the sync command
func (s *CalendarSyncCmd) Run(cli *CLI) error {
	since, err := parseSince(s.Since)
	if err != nil {
		return err
	}
	name := s.Calendar
	if name == "" {
		name = cli.Config().Calendar
	}

	auth, err := calendarAuth(cli)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	filter := store.SessionFilter{}
	if !since.IsZero() {
		filter.From = &since
	}
	data, err := cli.Container.loadReportData(ctx, filter)
	if err != nil {
		return err
	}

	client, err := auth.Client(ctx)
	if err != nil {
		return err
	}
	events, err := calendar.NewGoogleEvents(ctx, client, name)
	if err != nil {
		return err
	}

	logging.Logger.Info("Syncing sessions to calendar", "calendar", name, "sessions", len(data.sessions), "since", s.Since)
	res, err := calendar.NewPublisher(events).Sync(ctx, data.sessions, data.projectsByID(), since)
	fmt.Fprintf(cli.out(), "Published %d, already present %d, failed %d\n", res.Published, res.Skipped, res.Failed)
	if err != nil {
		return fmt.Errorf("calendar sync interrupted: %w", err)
	}
	return nil
}

// parseSince reads a local YYYY-MM-DD date. Empty means no lower bound.
func parseSince(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(model.DateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q, want YYYY-MM-DD: %w", v, err)
	}
	return t, nil
}

package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/store"
)

// SessionsCmd inspects recorded sessions
type SessionsCmd struct {
	List  SessionsListCmd  `cmd:"list" help:"List the most recent sessions" default:"1"`
	Stats SessionsStatsCmd `cmd:"stats" help:"Show the daily counters"`
}

// SessionsListCmd lists sessions
type SessionsListCmd struct {
	Limit   int    `help:"Number of sessions to show (0 = all)" default:"20" short:"n"`
	Project string `help:"Only show sessions of this project (ID, ID prefix, or name)" short:"p"`
}

// Run executes the list command
func (s *SessionsListCmd) Run(cli *CLI) error {
	filter := store.SessionFilter{Limit: s.Limit}
	if s.Project != "" {
		proj, err := resolveProject(cli.Container.Projects, s.Project)
		if err != nil {
			return err
		}
		filter.ProjectID = proj.ID
	}

	data, err := cli.Container.loadReportData(context.Background(), filter)
	if err != nil {
		return err
	}

	out := cli.out()
	if len(data.sessions) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return nil
	}

	byID := data.projectsByID()
	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tTYPE\tENDED\tELAPSED\tWORKED\tLABEL")
	// Newest first.
	for i := len(data.sessions) - 1; i >= 0; i-- {
		sess := data.sessions[i]
		name := metrics.UnknownProjectName
		if p, ok := byID[sess.ProjectID]; ok {
			name = p.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(sess.ID), name, sess.Type.Label(),
			humanize.RelTime(sess.EndTime, now, "ago", "from now"),
			formatMinutes(float64(sess.ElapsedSeconds)/60), formatMinutes(sess.ActualWorkMinutes),
			sess.Label)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal: %d sessions\n", len(data.sessions))
	return nil
}

// SessionsStatsCmd prints the per-day counters
type SessionsStatsCmd struct{}

// Run executes the stats command
func (s *SessionsStatsCmd) Run(cli *CLI) error {
	stats := cli.Container.Sessions.DailyStats()
	out := cli.out()
	if len(stats) == 0 {
		fmt.Fprintln(out, "No daily stats yet.")
		return nil
	}

	var sessions, breaks int
	var minutes float64
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSESSIONS\tWORKED\tBREAKS")
	for _, d := range stats {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", d.Date, d.WorkSessionsCompleted, formatMinutes(d.TotalWorkMinutes), d.BreaksTaken)
		sessions += d.WorkSessionsCompleted
		breaks += d.BreaksTaken
		minutes += d.TotalWorkMinutes
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", "TOTAL", humanize.Comma(int64(sessions)), formatMinutes(minutes), humanize.Comma(int64(breaks)))
	return w.Flush()
}

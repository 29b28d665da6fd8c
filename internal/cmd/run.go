package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/notify"
	"github.com/sadopc/timeplease/internal/timer"
	"github.com/sadopc/timeplease/internal/tui"
)

// RunCmd starts the TUI application
type RunCmd struct {
	ExportDir string `help:"Directory that TUI exports are written to (defaults to the home directory)" type:"path"`
}

// Run executes the TUI
func (r *RunCmd) Run(cli *CLI) error {
	c := cli.Container
	logging.Logger.Info("Starting timeplease TUI", "db_path", cli.DBPath)

	sender := tui.NewSender()
	policy := notify.NewPolicy(c.Settings, notify.CachePermission(sender))
	engine := timer.New(c.Settings, policy, timer.WithBreakFinished(c.Recorder.BreakFinished))

	snapshots := engine.Subscribe(16)
	defer engine.Unsubscribe(snapshots)

	app := tui.NewApp(tui.Deps{
		Engine:    engine,
		Settings:  c.Settings,
		Projects:  c.Projects,
		Sessions:  c.Sessions,
		Recorder:  c.Recorder,
		Snapshots: snapshots,
		ExportDir: r.ExportDir,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	sender.Attach(p)

	_, err := p.Run()
	if res := engine.Stop(); res.ElapsedSeconds > 0 && !res.IsBreak {
		logging.Logger.Info("discarded unconfirmed run on exit", "mode", res.Mode, "elapsed_seconds", res.ElapsedSeconds)
	}
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	logging.Logger.Info("timeplease TUI exited")
	return nil
}

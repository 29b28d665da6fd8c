package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sadopc/timeplease/internal/config"
	"github.com/sadopc/timeplease/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"100"`
	DBPath      string           `name:"db" help:"Path to SQLite database (defaults to <data_dir>/timeplease.db)" type:"path" env:"TIMEPLEASE_DB_PATH"`
	ConfigPath  string           `name:"config" help:"Path to config.yaml" type:"path" env:"TIMEPLEASE_CONFIG"`

	Run      RunCmd      `cmd:"" help:"Start the timeplease TUI (default)" default:"1"`
	Report   ReportCmd   `cmd:"report" help:"Print month, week and day rollups"`
	Export   ExportCmd   `cmd:"export" help:"Export sessions or daily rollups to CSV or JSON"`
	Projects ProjectsCmd `cmd:"projects" help:"Manage projects (list, add, archive, rm)"`
	Sessions SessionsCmd `cmd:"sessions" help:"Inspect recorded sessions"`
	Calendar CalendarCmd `cmd:"calendar" help:"Publish sessions to Google Calendar"`

	// Internal fields (not flags)
	Container *Container     `kong:"-"`
	config    *config.Config `kong:"-"`
	stdout    io.Writer      `kong:"-"`
	stdin     io.Reader      `kong:"-"`
}

// AfterApply loads the config file, initializes logging and then the container.
func (c *CLI) AfterApply() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.applyConfig(cfg)

	if _, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles); err != nil {
		return err
	}
	logging.Logger.Debug("config loaded", "db_path", c.DBPath, "data_dir", cfg.DataDir)

	container, err := NewContainer(c.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Container = container
	return nil
}

func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.Load(path)
}

// applyConfig fills flags left at their defaults with values from the config file.
// Precedence: CLI flags > env vars > config.yaml > defaults.
func (c *CLI) applyConfig(cfg *config.Config) {
	c.config = cfg

	if c.DBPath == "" {
		c.DBPath = cfg.DBPath()
	}
	c.DBPath = config.ExpandPath(c.DBPath)

	if c.MaxLogFiles == logging.DefaultMaxLogFiles && cfg.MaxLogFiles > 0 {
		if _, hasEnv := os.LookupEnv("TIMEPLEASE_MAX_LOG_FILES"); !hasEnv {
			c.MaxLogFiles = cfg.MaxLogFiles
		}
	}

	if !c.Debug && cfg.Debug {
		if _, hasEnv := os.LookupEnv("TIMEPLEASE_DEBUG"); !hasEnv {
			c.Debug = true
		}
	}
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}

// Config returns the resolved config, or the defaults before AfterApply.
func (c *CLI) Config() *config.Config {
	if c.config != nil {
		return c.config
	}
	cfg, err := config.Default()
	if err != nil {
		return &config.Config{Calendar: config.DefaultCalendar}
	}
	return cfg
}

func (c *CLI) out() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}

func (c *CLI) in() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// confirm asks a y/N question on the CLI's input.
func (c *CLI) confirm(question string) bool {
	fmt.Fprintf(c.out(), "%s (y/N): ", question)
	var response string
	fmt.Fscanln(c.in(), &response)
	return response == "y" || response == "Y"
}

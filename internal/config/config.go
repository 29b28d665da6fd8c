package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "timeplease"
	configFileName = "config.yaml"
	dbFileName     = "timeplease.db"

	DefaultCalendar = "Time tracking"
)

// Config is the application config read from config.yaml. User preferences
// such as durations live in the database, not here.
type Config struct {
	DataDir     string `yaml:"data_dir"`
	Debug       bool   `yaml:"debug"`
	MaxLogFiles int    `yaml:"max_log_files"`
	Calendar    string `yaml:"calendar"`
}

// Default returns the config used when no file exists.
func Default() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataDir:  dir,
		Calendar: DefaultCalendar,
	}, nil
}

// Dir returns <UserConfigDir>/timeplease, overridable with TIMEPLEASE_HOME.
func Dir() (string, error) {
	if home := os.Getenv("TIMEPLEASE_HOME"); home != "" {
		return ExpandPath(home), nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(cfg, appName), nil
}

// DefaultPath returns the location of config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fileData Config
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	if fileData.DataDir != "" {
		cfg.DataDir = ExpandPath(fileData.DataDir)
	}
	if fileData.Calendar != "" {
		cfg.Calendar = fileData.Calendar
	}
	if fileData.MaxLogFiles > 0 {
		cfg.MaxLogFiles = fileData.MaxLogFiles
	}
	cfg.Debug = fileData.Debug
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DBPath returns the SQLite database path inside the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, dbFileName)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

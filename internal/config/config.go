// Package config loads orderlens settings from ~/.orderlens/config.yaml.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirName is the per-user state directory under $HOME.
const DirName = ".orderlens"

// Config is the full orderlens configuration.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
	Fixture FixtureConfig `yaml:"fixture"`
}

// HistoryConfig controls the lookup journal.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// FixtureConfig controls `orderlens fixture`.
type FixtureConfig struct {
	Addr string `yaml:"addr"`
	Key  string `yaml:"key"`
}

// Dir returns ~/.orderlens, or a relative .orderlens when $HOME is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// NewConfig returns a config with default values.
func NewConfig() *Config {
	dir := Dir()
	return &Config{
		BaseURL: "http://localhost:8000",
		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(dir, "history.db"),
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "orderlens.log"),
			Level: "info",
		},
		Fixture: FixtureConfig{
			Addr: "127.0.0.1:8000",
			Key:  "order_uid",
		},
	}
}

// Load reads the config at path over the defaults. An empty path means
// DefaultPath; a missing default file is not an error, a missing explicit
// one is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url: missing host")
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path: required when history is enabled")
	}
	if c.Fixture.Key == "" {
		return fmt.Errorf("fixture.key: must not be empty")
	}
	return nil
}

func (c *Config) expandPaths() {
	c.History.Path = ExpandHome(c.History.Path)
	c.Log.File = ExpandHome(c.Log.File)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

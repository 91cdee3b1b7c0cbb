// ABOUTME: Configuration loading and parsing for chatmerge
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Input formats for script text
const (
	FormatCoded    = "coded"
	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

// Config represents the complete chatmerge configuration
type Config struct {
	Merge   MergeConfig   `yaml:"merge" toml:"merge"`
	Display DisplayConfig `yaml:"display" toml:"display"`
	Journal JournalConfig `yaml:"journal" toml:"journal"`
	Input   InputConfig   `yaml:"input" toml:"input"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// MergeConfig holds correlation window settings
type MergeConfig struct {
	Window        time.Duration `yaml:"-" toml:"-"`
	SweepInterval time.Duration `yaml:"-" toml:"-"`
	MaxRecords    int           `yaml:"max_records" toml:"max_records"`

	// Raw string values for unmarshaling
	WindowRaw        string `yaml:"window" toml:"window"`
	SweepIntervalRaw string `yaml:"sweep_interval" toml:"sweep_interval"`
}

// DisplayConfig holds pane and terminal output settings
type DisplayConfig struct {
	Panes        []string `yaml:"panes" toml:"panes"`
	HistoryLimit int      `yaml:"history_limit" toml:"history_limit"`
	Color        bool     `yaml:"color" toml:"color"`
	Rewrite      bool     `yaml:"rewrite" toml:"rewrite"` // redraw merged lines in place
}

// JournalConfig holds transcript database settings
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// InputConfig selects how script text is parsed
type InputConfig struct {
	Format string `yaml:"format" toml:"format"` // coded, markdown, plain
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Merge: MergeConfig{
			Window:           15 * time.Second,
			SweepInterval:    30 * time.Second,
			WindowRaw:        "15s",
			SweepIntervalRaw: "30s",
		},
		Display: DisplayConfig{
			Panes:        []string{"main"},
			HistoryLimit: 100,
			Color:        true,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    defaultJournalPath(),
		},
		Input: InputConfig{
			Format: FormatCoded,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultJournalPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "chatmerge.db"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "chatmerge", "transcript.db")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// The format is chosen by extension (.yaml, .yml or .toml). Values not set in
// the file keep their defaults. Environment variables in the format ${VAR_NAME}
// are expanded. Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	cfg := Default()
	switch formatOf(path) {
	case "yaml":
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Write encodes the configuration to path in the format its extension
// selects, creating parent directories as needed.
func (c *Config) Write(path string) error {
	var buf bytes.Buffer
	switch formatOf(path) {
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("encoding toml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all configuration fields are valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Merge.Window <= 0 {
		return fmt.Errorf("merge.window must be positive")
	}
	if c.Merge.SweepInterval < 0 {
		return fmt.Errorf("merge.sweep_interval must not be negative")
	}
	if c.Merge.MaxRecords < 0 {
		return fmt.Errorf("merge.max_records must not be negative")
	}

	if len(c.Display.Panes) == 0 {
		return fmt.Errorf("display.panes needs at least one pane")
	}
	seen := make(map[string]bool, len(c.Display.Panes))
	for _, name := range c.Display.Panes {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("display.panes contains an empty name")
		}
		if name == "*" {
			return fmt.Errorf("display.panes: %q is reserved", name)
		}
		if seen[name] {
			return fmt.Errorf("display.panes: duplicate pane %q", name)
		}
		seen[name] = true
	}
	if c.Display.HistoryLimit < 0 {
		return fmt.Errorf("display.history_limit must not be negative")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when journal is enabled")
	}

	switch c.Input.Format {
	case FormatCoded, FormatMarkdown, FormatPlain:
	default:
		return fmt.Errorf("input.format %q must be one of coded, markdown, plain", c.Input.Format)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Merge.WindowRaw != "" {
		cfg.Merge.Window, err = time.ParseDuration(cfg.Merge.WindowRaw)
		if err != nil {
			return fmt.Errorf("parsing window %q: %w", cfg.Merge.WindowRaw, err)
		}
	}

	if cfg.Merge.SweepIntervalRaw != "" {
		cfg.Merge.SweepInterval, err = time.ParseDuration(cfg.Merge.SweepIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing sweep_interval %q: %w", cfg.Merge.SweepIntervalRaw, err)
		}
	}

	return nil
}

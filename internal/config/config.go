package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/phishdrill/internal/attempts"
	"github.com/abhisek/phishdrill/internal/difficulty"
)

// Config is the full runtime configuration.
type Config struct {
	// DBPath is the SQLite database file. Empty means the default XDG path.
	DBPath string `yaml:"db_path"`

	// RecentWindow is how many recent attempts selection avoids repeating.
	RecentWindow int `yaml:"recent_window"`

	Difficulty difficulty.Config `yaml:"difficulty"`

	// Seed fixes the selection RNG. Zero seeds from the runtime.
	Seed uint64 `yaml:"seed"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RecentWindow: attempts.DefaultRecentWindow,
		Difficulty:   difficulty.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables.
//
//	PHISHDRILL_DB             → DBPath
//	PHISHDRILL_RECENT_WINDOW  → RecentWindow
//	PHISHDRILL_SEED           → Seed
//	PHISHDRILL_LOG_LEVEL      → Logging.Level
//	PHISHDRILL_LOG_FORMAT     → Logging.Format
//	PHISHDRILL_START          → Difficulty.Start
//	PHISHDRILL_STEP_UP        → Difficulty.StepUp
//	PHISHDRILL_STEP_DOWN      → Difficulty.StepDown
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PHISHDRILL_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("PHISHDRILL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PHISHDRILL_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv("PHISHDRILL_RECENT_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Field: "PHISHDRILL_RECENT_WINDOW", Message: fmt.Sprintf("not an integer: %q", v)}
		}
		c.RecentWindow = n
	}

	if v := os.Getenv("PHISHDRILL_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return &ValidationError{Field: "PHISHDRILL_SEED", Message: fmt.Sprintf("not an unsigned integer: %q", v)}
		}
		c.Seed = n
	}

	floats := []struct {
		env string
		dst *float64
	}{
		{"PHISHDRILL_START", &c.Difficulty.Start},
		{"PHISHDRILL_STEP_UP", &c.Difficulty.StepUp},
		{"PHISHDRILL_STEP_DOWN", &c.Difficulty.StepDown},
	}
	for _, e := range floats {
		if v := os.Getenv(e.env); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return &ValidationError{Field: e.env, Message: fmt.Sprintf("not a number: %q", v)}
			}
			*e.dst = f
		}
	}
	return nil
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	d := c.Difficulty
	switch {
	case c.RecentWindow < 1:
		return &ValidationError{Field: "recent_window", Message: "must be positive"}
	case d.Min < 1 || d.Max > 5:
		return &ValidationError{Field: "difficulty", Message: "bounds must lie within [1, 5]"}
	case d.Min >= d.Max:
		return &ValidationError{Field: "difficulty.min", Message: "must be below difficulty.max"}
	case d.StepUp <= 0:
		return &ValidationError{Field: "difficulty.step_up", Message: "must be positive"}
	case d.StepDown <= 0:
		return &ValidationError{Field: "difficulty.step_down", Message: "must be positive"}
	case d.Start < d.Min || d.Start > d.Max:
		return &ValidationError{Field: "difficulty.start", Message: "must lie within [min, max]"}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return &ValidationError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// Package config loads service configuration by layering defaults, an
// optional YAML file, and TIMECLOCK_ prefixed environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config captures the process configuration for the time tracking service.
type Config struct {
	// HTTPPort is the port the API listens on.
	HTTPPort int `koanf:"http_port"`

	// SQLiteDSN locates the session database.
	SQLiteDSN string `koanf:"sqlite_dsn"`

	// Timezone anchors day, week, and month windows, e.g. "America/New_York".
	// Defaults to UTC.
	Timezone string `koanf:"timezone"`

	// WeekStart names the first day of the work week, e.g. "monday".
	WeekStart string `koanf:"week_start"`

	// DefaultWeeklyTargetMinutes seeds new employees without an explicit
	// target. 2400 minutes is a 40 hour week.
	DefaultWeeklyTargetMinutes int `koanf:"default_weekly_target_minutes"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsEnabled toggles the /metrics endpoint.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// Defaults returns the baseline configuration before file and env layering.
func Defaults() Config {
	return Config{
		HTTPPort:                   8080,
		SQLiteDSN:                  "file:timeclock.db",
		Timezone:                   "UTC",
		WeekStart:                  "monday",
		DefaultWeeklyTargetMinutes: 2400,
		LogLevel:                   "info",
		MetricsEnabled:             true,
	}
}

// Load builds a Config by layering defaults, the optional YAML file named in
// TIMECLOCK_CONFIG, and TIMECLOCK_ prefixed environment variables, in that
// order of precedence from low to high.
func Load() (Config, error) {
	cfg := Defaults()

	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv("TIMECLOCK_CONFIG")); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// TIMECLOCK_HTTP_PORT -> http_port, matching the koanf struct tags.
	envProvider := env.Provider("TIMECLOCK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "timeclock_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port %d is out of range", c.HTTPPort)
	}
	if strings.TrimSpace(c.SQLiteDSN) == "" {
		return fmt.Errorf("sqlite_dsn must not be empty")
	}
	if c.DefaultWeeklyTargetMinutes < 0 {
		return fmt.Errorf("default_weekly_target_minutes must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.WeekStartDay(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// WeekStartDay resolves the configured first day of the week.
func (c Config) WeekStartDay() (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(c.WeekStart)) {
	case "", "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	case "sunday":
		return time.Sunday, nil
	default:
		return time.Monday, fmt.Errorf("unknown week_start %q", c.WeekStart)
	}
}

// SlogLevel maps the configured log level onto slog's scale. Unknown values
// fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

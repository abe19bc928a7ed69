// Package config loads the command line tool's connection settings from
// the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"github.com/adamwoolhether/datasvc/client"
	"github.com/adamwoolhether/datasvc/internal/validate"
)

// Prefix is prepended to every variable name, e.g. DATASVC_BASE_PATH.
const Prefix = "DATASVC"

// Config holds the connection settings read from the environment.
type Config struct {
	BasePath      string            `envconfig:"BASE_PATH" validate:"omitempty,url"`
	RedirectURL   string            `envconfig:"REDIRECT_URL" validate:"omitempty,uri"`
	ForceReload   bool              `envconfig:"FORCE_RELOAD"`
	Headers       map[string]string `envconfig:"HEADERS"`
	UserAgent     string            `envconfig:"USER_AGENT" default:"datasvc/1.0"`
	LogLevel      string            `envconfig:"LOG_LEVEL" default:"warn" validate:"oneof=debug info warn error"`
	ThrottleRPS   int               `envconfig:"THROTTLE_RPS" validate:"gte=0"`
	ThrottleBurst int               `envconfig:"THROTTLE_BURST" validate:"gte=0,required_with=ThrottleRPS"`
}

// Load reads and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	if err := validate.Check(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Level returns the configured log level.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// ClientOptions translates the configuration into connection options.
func (c Config) ClientOptions(logger *slog.Logger) []client.Option {
	opts := []client.Option{
		client.WithBasePath(c.BasePath),
		client.WithRedirectURL(c.RedirectURL),
		client.WithAlwaysForceStaticReload(c.ForceReload),
		client.WithHeaders(c.Headers),
	}

	if c.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(c.UserAgent))
	}
	if logger != nil {
		opts = append(opts, client.WithLogger(logger))
	}
	if c.ThrottleRPS > 0 {
		opts = append(opts, client.WithThrottle(c.ThrottleRPS, c.ThrottleBurst))
	}

	return opts
}

// Usage writes a table of the variables Load understands to w.
func Usage(w io.Writer) error {
	var cfg Config
	return envconfig.Usagef(Prefix, &cfg, w, envconfig.DefaultTableFormat)
}

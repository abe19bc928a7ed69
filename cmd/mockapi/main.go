// Command mockapi serves the fixture JSON API datasvc connections are
// exercised against.
//
//	MOCKAPI_ADDR=:8080 MOCKAPI_ORIGINS=http://localhost:3000 mockapi
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"

	"github.com/adamwoolhether/datasvc/internal/mockapi"
	"github.com/adamwoolhether/datasvc/internal/validate"
)

type config struct {
	Addr     string   `envconfig:"ADDR" default:":8080" validate:"required"`
	Origins  []string `envconfig:"ORIGINS" default:"*"`
	LogLevel string   `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg config
	if err := envconfig.Process("MOCKAPI", &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := validate.Check(&cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return err
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))

	app := mockapi.New(mockapi.NewStore(),
		mockapi.WithAppLogger(log),
		mockapi.WithGlobalMW(mockapi.CORS(cfg.Origins)),
	)

	log.Info("starting mockapi", "addr", cfg.Addr, "origins", cfg.Origins)

	srv := mockapi.NewServer(app, mockapi.WithHost(cfg.Addr), mockapi.WithServerLogger(log))

	return srv.Run(ctx)
}

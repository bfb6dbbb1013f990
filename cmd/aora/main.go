// Command aora is a terminal client that drives the app's screens in-process.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hszk-dev/aora/internal/app"
	"github.com/hszk-dev/aora/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	sessions, err := newSessionFile(cfg.CLI.SessionFile)
	if err != nil {
		return err
	}

	deps, cleanup, err := app.Build(ctx, cfg, logger, app.Options{Events: cfg.CLI.Events})
	if err != nil {
		return err
	}
	defer cleanup()

	c := newCLI(deps.Service, sessions, stdout, logger)
	return c.dispatch(ctx, args)
}

// Command insightd serves prediction-market insights over HTTP and
// WebSocket. With -query it builds a single insight, prints it as JSON and
// exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alanyoungcy/marketinsight/internal/app"
	"github.com/alanyoungcy/marketinsight/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run holds the program body so deferred cleanup completes before main
// sets the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("insightd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "config.toml", "path to configuration file (optional)")
	query := fs.String("query", "", "build one insight for this query and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := newLogger(stdout, "info")
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		return 1
	}

	logger = newLogger(stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("insightd starting",
		slog.String("config", *configPath),
		slog.Any("settings", config.RedactedConfig(cfg)),
	)

	application := app.New(cfg, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *query != "" {
		if err := application.Query(ctx, *query, stdout); err != nil {
			fmt.Fprintf(stderr, "fatal: %v\n", err)
			return 1
		}
		return 0
	}

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("application shut down gracefully")
		} else {
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(stderr, "fatal: %v\n", err)
			return 1
		}
	}

	logger.Info("insightd stopped")
	return 0
}

// newLogger returns a JSON logger on w at the named level.
func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
}

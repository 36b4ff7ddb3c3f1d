// Command warblerctl drives the Warbler services from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/observability"
	"warbler/internal/service"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "warblerctl",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSamplerRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer stopTracing(logger, shutdown)

	metrics := observability.NewMetrics(prometheus.NewRegistry())

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{
		ApplySchema: !cfg.IsProduction(),
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	c := cache.Connect(cfg.RedisURL, metrics, logger)
	defer func() { _ = c.Close() }()

	ctx := observability.WithCorrelationID(context.Background(), observability.NewCorrelationID())
	a := newApp(db, c, cfg, os.Stdout, service.Observer{Logger: logger, Metrics: metrics})
	return a.dispatch(ctx, args)
}

func stopTracing(logger *slog.Logger, shutdown func(context.Context) error) {
	if err := shutdown(context.Background()); err != nil {
		logger.Error("tracing shutdown failed", slog.String("error", err.Error()))
	}
}

func printUsage() {
	fmt.Println("Usage: warblerctl <command> [args]")
	fmt.Println()
	for _, c := range commands {
		fmt.Printf("  %-40s %s\n", c.name+" "+c.usage, c.help)
	}
}

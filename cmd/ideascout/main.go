package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"IdeaScout/internal/app"
	"IdeaScout/internal/config"
	"IdeaScout/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(ctx, cfg, logger, os.Args[1:]); err != nil {
		logger.Error("ideascout stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	if len(args) > 0 && args[0] == "migrate" {
		return migrate(ctx, cfg, logger, args[1:])
	}

	flags := flag.NewFlagSet("ideascout", flag.ContinueOnError)
	once := flags.Bool("once", false, "run the pipeline a single time even when the scheduler is enabled")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if cfg.Scheduler.Enabled && !*once {
		return application.Serve(ctx)
	}

	return application.Run(ctx)
}

func migrate(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	flags := flag.NewFlagSet("migrate", flag.ContinueOnError)
	from := flags.String("from", cfg.Content.Dir, "directory holding the MDX documents to migrate")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := cfg.ValidateContentStore(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	result, err := app.Migrate(ctx, cfg, *from, logger)
	if err != nil {
		return err
	}
	logger.Info("migration complete", "migrated", result.Migrated, "failed", result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%d documents failed to migrate", result.Failed)
	}
	return nil
}

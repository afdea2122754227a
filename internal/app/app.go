// Package app is the composition root wiring configuration to adapters and use cases.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"IdeaScout/internal/config"
	"IdeaScout/internal/infrastructure/scheduler"
	"IdeaScout/internal/infrastructure/storage"
	"IdeaScout/internal/logging"
	"IdeaScout/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	closers  []func() error
}

// New builds every adapter the pipeline needs. Call Close when done.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("content store: %w", err)
	}
	a.closers = append(a.closers, closeStore)

	providers, err := buildProviders(cfg, baseLogger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("search providers: %w", err)
	}

	model, err := buildLLM(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("llm: %w", err)
	}

	vcs, err := buildVCS(cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("version control: %w", err)
	}

	runLock, closeLock, err := buildLock(cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("run lock: %w", err)
	}
	a.closers = append(a.closers, closeLock)

	stageLogger := usecase.WithLogger(baseLogger)

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Discoverer: usecase.NewDiscoverer(providers, cfg.TrustTable(), discoveryPolicy(cfg), stageLogger),
		Extractor:  usecase.NewExtractor(model, cfg.LLM.ExtractionDelay, stageLogger),
		Validator:  usecase.NewValidator(model, store, validationPolicy(cfg), stageLogger),
		Generator: usecase.NewGenerator(model, usecase.Brand{
			Name:    cfg.Brand.Name,
			SiteURL: cfg.Brand.SiteURL,
		}, stageLogger),
		Publisher: usecase.NewPublisher(store, vcs, publishingPolicy(cfg), stageLogger),
		Notifier:  buildNotifier(cfg, baseLogger),
		Lock:      runLock,
		Logger:    baseLogger.With("component", "pipeline"),
	})
	return a, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) error {
	_, err := a.pipeline.Run(ctx)
	return err
}

// Serve runs the pipeline on the configured cron schedule until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver, err := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Location(),
		a.cfg.Scheduler.RunOnStart,
	)
	if err != nil {
		return err
	}

	sched := usecase.NewScheduler(driver, usecase.RunnerFunc(a.Run), a.logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"cron", a.cfg.Scheduler.CronExpression,
		"timezone", a.cfg.Scheduler.Location().String(),
		"next", driver.Next(),
	)

	<-ctx.Done()
	a.logger.Info("shutting down scheduler")
	return sched.Stop(context.WithoutCancel(ctx))
}

// Close releases database and lock-server connections.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Migrate copies every MDX document from dir into the configured database store.
func Migrate(ctx context.Context, cfg config.Config, dir string, logger *slog.Logger) (usecase.MigrationResult, error) {
	if cfg.Content.Store == config.StoreMDX {
		return usecase.MigrationResult{}, errors.New("migration target must be a database store, set CONTENT_STORE")
	}
	if dir == "" {
		dir = cfg.Content.Dir
	}

	info, err := os.Stat(dir)
	if err != nil {
		return usecase.MigrationResult{}, fmt.Errorf("migration source: %w", err)
	}
	if !info.IsDir() {
		return usecase.MigrationResult{}, fmt.Errorf("migration source %s is not a directory", dir)
	}

	source, err := storage.NewMDXStore(dir)
	if err != nil {
		return usecase.MigrationResult{}, err
	}
	target, closeTarget, err := buildStore(ctx, cfg)
	if err != nil {
		return usecase.MigrationResult{}, fmt.Errorf("content store: %w", err)
	}
	defer closeTarget()

	if logger == nil {
		logger = slog.Default()
	}
	return usecase.NewMigrator(source, target, usecase.WithLogger(logger)).Migrate(ctx)
}

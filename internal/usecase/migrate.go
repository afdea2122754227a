package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"IdeaScout/internal/ports"
)

// MigrationResult counts what a migration did.
type MigrationResult struct {
	Migrated int
	Failed   int
}

// Migrator copies every published idea from one store into another.
type Migrator struct {
	source ports.ContentLister
	target ports.ContentStore
	now    func() time.Time
	logger *slog.Logger
}

// NewMigrator builds the store-to-store copier.
func NewMigrator(source ports.ContentLister, target ports.ContentStore, opts ...Option) *Migrator {
	o := buildOptions("migration", opts)
	return &Migrator{source: source, target: target, now: o.now, logger: o.logger}
}

// Migrate upserts each source record into the target. Single-record failures are counted, not returned.
func (m *Migrator) Migrate(ctx context.Context) (MigrationResult, error) {
	var result MigrationResult

	records, err := m.source.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list source records: %w", err)
	}
	m.logger.Info("migration started", "records", len(records))

	stamp := m.now().UTC().Format(time.RFC3339)
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("migrate: %w", err)
		}
		record.Metadata.MigratedAt = stamp
		if err := m.target.Save(ctx, record); err != nil {
			m.logger.Warn("record not migrated", "slug", record.Slug, "error", err)
			result.Failed++
			continue
		}
		result.Migrated++
	}

	m.logger.Info("migration finished", "migrated", result.Migrated, "failed", result.Failed)
	return result, nil
}

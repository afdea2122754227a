package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

const commitMessagePrefix = "Add automation idea"

// PublishingPolicy caps and gates what reaches the site.
type PublishingPolicy struct {
	MaxPublishesPerRun   int
	AutoPublishThreshold int
	PublishDelay         time.Duration
}

// Publisher writes generated documents to the content store.
type Publisher struct {
	store  ports.ContentStore
	vcs    ports.VersionControl
	policy PublishingPolicy
	now    func() time.Time
	logger *slog.Logger
}

// NewPublisher builds the publishing stage; vcs may be nil for database stores.
func NewPublisher(store ports.ContentStore, vcs ports.VersionControl, policy PublishingPolicy, opts ...Option) *Publisher {
	o := buildOptions("publishing", opts)
	return &Publisher{store: store, vcs: vcs, policy: policy, now: o.now, logger: o.logger}
}

// CanPublishMore reports whether the per-run cap still has room.
func (p *Publisher) CanPublishMore(published int) bool {
	return published < p.policy.MaxPublishesPerRun
}

// ShouldAutoPublish reports whether a validated idea skips manual review.
func (p *Publisher) ShouldAutoPublish(roiScore int) bool {
	return roiScore >= p.policy.AutoPublishThreshold
}

// Publish upserts the document by slug and commits it when version control is wired.
func (p *Publisher) Publish(ctx context.Context, content domain.GeneratedContent, runID string) error {
	now := p.now().UTC()
	record := domain.ContentRecord{
		Frontmatter: content.Frontmatter,
		Body:        content.Body,
		PublishedAt: now,
		UpdatedAt:   now,
		Metadata: domain.RecordMetadata{
			ContentMDX:  content.MDXContent,
			RunID:       runID,
			GeneratedAt: now.Format(time.RFC3339),
		},
	}
	if record.Slug == "" {
		record.Slug = content.Slug
	}

	if err := p.store.Save(ctx, record); err != nil {
		return fmt.Errorf("save %s: %w", record.Slug, err)
	}
	p.logger.Info("idea saved", "slug", record.Slug)

	if p.vcs == nil {
		return nil
	}

	err := p.vcs.CommitAndPush(ctx, fmt.Sprintf("%s: %s", commitMessagePrefix, record.Slug))
	switch {
	case errors.Is(err, ports.ErrNothingToCommit):
		p.logger.Info("no changes to commit", "slug", record.Slug)
		return nil
	case err != nil:
		return fmt.Errorf("commit %s: %w", record.Slug, err)
	}

	p.logger.Info("idea committed and pushed", "slug", record.Slug)
	return nil
}

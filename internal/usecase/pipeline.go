package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

const (
	ReasonBelowAutoPublish  = "Below auto-publish threshold"
	ReasonGenerationFailure = "Content generation failed"

	notifyTimeout = 30 * time.Second
)

// PipelineDeps wires the stages and driven adapters into the orchestrator.
type PipelineDeps struct {
	Discoverer *Discoverer
	Extractor  *Extractor
	Validator  *Validator
	Generator  *Generator
	Publisher  *Publisher
	Notifier   ports.Notifier
	Lock       ports.RunLock
	Logger     *slog.Logger
	Sleep      Sleeper
	Now        func() time.Time
	NewRunID   func() string
}

// Pipeline runs discovery, extraction, validation, generation and publishing in order.
type Pipeline struct {
	discoverer *Discoverer
	extractor  *Extractor
	validator  *Validator
	generator  *Generator
	publisher  *Publisher
	notifier   ports.Notifier
	lock       ports.RunLock
	logger     *slog.Logger
	sleep      Sleeper
	now        func() time.Time
	newRunID   func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		discoverer: deps.Discoverer,
		extractor:  deps.Extractor,
		validator:  deps.Validator,
		generator:  deps.Generator,
		publisher:  deps.Publisher,
		notifier:   deps.Notifier,
		lock:       deps.Lock,
		logger:     deps.Logger,
		sleep:      deps.Sleep,
		now:        deps.Now,
		newRunID:   deps.NewRunID,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = func() string { return uuid.NewString() }
	}
	return p
}

type runState struct {
	id        string
	started   time.Time
	stats     domain.PipelineStats
	published []string
	rejected  []domain.Rejection
}

func (s *runState) reject(title, reason string) {
	s.stats.Reject(reason)
	s.rejected = append(s.rejected, domain.Rejection{Title: title, Reason: reason})
}

// Run executes the pipeline once. Any returned error has already been reported
// through the notifier, except a failure to take the run lock.
func (p *Pipeline) Run(ctx context.Context) (domain.PipelineStats, error) {
	state := &runState{
		id:      p.newRunID(),
		started: p.now(),
		stats:   domain.NewPipelineStats(),
	}
	logger := p.logger.With("run_id", state.id)

	if p.lock != nil {
		release, err := p.lock.Acquire(ctx)
		if err != nil {
			return state.stats, fmt.Errorf("acquire run lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("release run lock", "error", err)
			}
		}()
	}

	logger.Info("pipeline started")

	outcome, err := p.execute(ctx, logger, state)
	p.finish(state)
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		p.notify(ctx, logger, p.report(state, domain.OutcomeFailed, err))
		return state.stats, err
	}

	p.notify(ctx, logger, p.report(state, outcome, nil))
	p.logSummary(logger, state)
	return state.stats, nil
}

func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, state *runState) (domain.RunOutcome, error) {
	sources, err := p.discoverer.Discover(ctx)
	if err != nil {
		return "", fmt.Errorf("discovery: %w", err)
	}
	state.stats.SourcesScraped = len(sources)
	if len(sources) == 0 {
		logger.Warn("no sources found")
		return domain.OutcomeNoSources, nil
	}

	opps, err := p.extractor.Extract(ctx, sources)
	if err != nil {
		return "", fmt.Errorf("extraction: %w", err)
	}
	state.stats.OpportunitiesExtracted = len(opps)
	if len(opps) == 0 {
		logger.Warn("no opportunities extracted")
		return domain.OutcomeNoOpportunities, nil
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ROIScore > opps[j].ROIScore
	})

	for _, opp := range opps {
		if !p.publisher.CanPublishMore(len(state.published)) {
			logger.Info("publish cap reached", "max", p.publisher.policy.MaxPublishesPerRun)
			break
		}

		if err := p.process(ctx, logger, state, opp); err != nil {
			return "", err
		}
	}

	return domain.OutcomeCompleted, nil
}

func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, state *runState, opp domain.AutomationOpportunity) error {
	log := logger.With("title", opp.Title, "slug", opp.Slug)
	log.Info("processing opportunity", "industry", opp.Industry, "roi_score", opp.ROIScore, "source", opp.SourceDomain)

	result, err := p.validator.Validate(ctx, opp)
	if err != nil {
		return fmt.Errorf("validate %q: %w", opp.Title, err)
	}
	if !result.Valid {
		log.Info("opportunity rejected", "reason", result.Reason)
		state.reject(opp.Title, result.Reason)
		return nil
	}
	if len(result.Warnings) > 0 {
		log.Warn("opportunity passed with warnings", "warnings", result.Warnings)
	}
	state.stats.OpportunitiesValidated++

	if !p.publisher.ShouldAutoPublish(opp.ROIScore) {
		log.Info("below auto-publish threshold", "threshold", p.publisher.policy.AutoPublishThreshold)
		state.reject(opp.Title, ReasonBelowAutoPublish)
		return nil
	}

	content, err := p.generator.Generate(ctx, opp)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("generate %q: %w", opp.Title, ctx.Err())
		}
		log.Warn("content generation failed", "error", err)
		state.reject(opp.Title, ReasonGenerationFailure)
		return nil
	}

	if err := p.publisher.Publish(ctx, content, state.id); err != nil {
		return fmt.Errorf("publish %q: %w", opp.Title, err)
	}
	state.published = append(state.published, opp.Title)
	state.stats.IdeasPublished++
	log.Info("idea published")

	if p.publisher.CanPublishMore(len(state.published)) {
		if err := p.sleep(ctx, p.publisher.policy.PublishDelay); err != nil {
			return fmt.Errorf("publish delay: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) finish(state *runState) {
	state.stats.Duration = p.now().Sub(state.started)
	state.stats.EstimatedCost = state.stats.EstimateCost()
}

func (p *Pipeline) report(state *runState, outcome domain.RunOutcome, err error) domain.RunReport {
	report := domain.RunReport{
		RunID:           state.id,
		Outcome:         outcome,
		Stats:           state.stats,
		PublishedTitles: append([]string(nil), state.published...),
		Rejected:        append([]domain.Rejection(nil), state.rejected...),
		FinishedAt:      p.now(),
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, report domain.RunReport) {
	if p.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := p.notifier.Notify(nctx, report); err != nil {
		logger.Warn("notification failed", "outcome", report.Outcome, "error", err)
	}
}

func (p *Pipeline) logSummary(logger *slog.Logger, state *runState) {
	s := state.stats
	logger.Info("pipeline complete",
		"sources_scraped", s.SourcesScraped,
		"opportunities_extracted", s.OpportunitiesExtracted,
		"validated", s.OpportunitiesValidated,
		"published", s.IdeasPublished,
		"rejected", s.IdeasRejected,
		"duration", s.Duration.Round(time.Second).String(),
		"estimated_cost_gbp", fmt.Sprintf("%.2f", s.EstimatedCost),
	)
	for _, row := range s.TopReasons(0) {
		logger.Info("rejection reason", "count", row.Count, "reason", row.Reason)
	}
}

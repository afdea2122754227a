package notify

import (
	"context"
	"errors"
	"log/slog"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

// Multi fans a report out to every channel; one failing channel does not stop the rest.
type Multi []ports.Notifier

var _ ports.Notifier = Multi(nil)

// Notify joins the errors of failed channels.
func (m Multi) Notify(ctx context.Context, r domain.RunReport) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes the report to the structured log. It is used when no channel is configured.
type LogNotifier struct {
	logger *slog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

// NewLogNotifier wraps a logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notify")}
}

// Notify logs one line per report.
func (l *LogNotifier) Notify(_ context.Context, r domain.RunReport) error {
	if r.Failed() {
		l.logger.Error("pipeline failed", "run_id", r.RunID, "error", r.Error)
		return nil
	}
	l.logger.Info("pipeline summary",
		"run_id", r.RunID,
		"outcome", string(r.Outcome),
		"published", r.Stats.IdeasPublished,
		"rejected", r.Stats.IdeasRejected,
		"duration", r.Stats.Duration.String(),
		"estimated_cost", r.Stats.EstimatedCost,
	)
	return nil
}

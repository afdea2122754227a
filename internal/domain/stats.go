package domain

import (
	"sort"
	"time"
)

// ValidationResult is the verdict of the quality gate for one opportunity.
type ValidationResult struct {
	Valid    bool
	Reason   string
	Warnings []string
}

// Rejection pairs a rejected opportunity title with the reason.
type Rejection struct {
	Title  string
	Reason string
}

// ReasonCount is one row of the rejection histogram.
type ReasonCount struct {
	Reason string
	Count  int
}

// PipelineStats are run-scoped counters owned by the orchestrator.
type PipelineStats struct {
	SourcesScraped         int
	OpportunitiesExtracted int
	OpportunitiesValidated int
	IdeasPublished         int
	IdeasRejected          int
	RejectionReasons       map[string]int
	Duration               time.Duration
	EstimatedCost          float64
}

// NewPipelineStats returns zeroed counters with an empty histogram.
func NewPipelineStats() PipelineStats {
	return PipelineStats{RejectionReasons: map[string]int{}}
}

// Reject counts one rejection under reason.
func (s *PipelineStats) Reject(reason string) {
	if reason == "" {
		reason = "Unknown"
	}
	if s.RejectionReasons == nil {
		s.RejectionReasons = map[string]int{}
	}
	s.IdeasRejected++
	s.RejectionReasons[reason]++
}

// TopReasons returns up to n histogram rows, most frequent first.
func (s PipelineStats) TopReasons(n int) []ReasonCount {
	rows := make([]ReasonCount, 0, len(s.RejectionReasons))
	for reason, count := range s.RejectionReasons {
		rows = append(rows, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Reason < rows[j].Reason
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Per-unit API cost estimates in GBP.
const (
	costPerSearch     = 0.02
	costPerExtraction = 0.10
	costPerValidation = 0.05
	costPerGeneration = 0.15
)

// EstimateCost approximates the API spend of the run.
func (s PipelineStats) EstimateCost() float64 {
	return float64(s.SourcesScraped)*costPerSearch +
		float64(s.OpportunitiesExtracted)*costPerExtraction +
		float64(s.OpportunitiesValidated)*costPerValidation +
		float64(s.IdeasPublished)*costPerGeneration
}

// RunOutcome distinguishes clean zero-activity runs from crashes.
type RunOutcome string

const (
	OutcomeCompleted       RunOutcome = "completed"
	OutcomeNoSources       RunOutcome = "no_sources"
	OutcomeNoOpportunities RunOutcome = "no_opportunities"
	OutcomeFailed          RunOutcome = "failed"
)

// RunReport is what the notification channel receives at the end of a run.
type RunReport struct {
	RunID           string
	Outcome         RunOutcome
	Stats           PipelineStats
	PublishedTitles []string
	Rejected        []Rejection
	Error           string
	FinishedAt      time.Time
}

// Failed reports whether the run aborted.
func (r RunReport) Failed() bool {
	return r.Outcome == OutcomeFailed
}

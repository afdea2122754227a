package ports

import (
	"context"
	"errors"
	"time"

	"IdeaScout/internal/domain"
)

var (
	// ErrNotFound is returned by content stores for unknown slugs.
	ErrNotFound = errors.New("content record not found")
	// ErrNothingToCommit signals that version control had no staged changes.
	ErrNothingToCommit = errors.New("nothing to commit")
	// ErrLockHeld means another pipeline run owns the run lock.
	ErrLockHeld = errors.New("pipeline run lock is held")
)

// Citation is a single search hit returned by a search provider.
type Citation struct {
	URL           string
	Title         string
	Content       string
	PublishedDate string
}

// SearchProvider answers a discovery query with citations.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, allowed []string) ([]Citation, error)
}

// LLMTask identifies which stage issues a completion request.
type LLMTask string

const (
	TaskExtraction  LLMTask = "extraction"
	TaskSimilarity  LLMTask = "similarity"
	TaskCredibility LLMTask = "credibility"
	TaskGeneration  LLMTask = "generation"
)

// CompletionRequest is a single-turn prompt to the language model.
type CompletionRequest struct {
	Task      LLMTask
	System    string
	Prompt    string
	MaxTokens int
}

// LLM produces free text for a prompt.
type LLM interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ContentStore persists published ideas keyed by slug.
type ContentStore interface {
	Exists(ctx context.Context, slug string) (bool, error)
	ListTitles(ctx context.Context) ([]string, error)
	Get(ctx context.Context, slug string) (domain.ContentRecord, error)
	Save(ctx context.Context, record domain.ContentRecord) error
}

// ContentLister is implemented by stores that can enumerate every record.
type ContentLister interface {
	List(ctx context.Context) ([]domain.ContentRecord, error)
}

// VersionControl commits and pushes the published content directory.
type VersionControl interface {
	CommitAndPush(ctx context.Context, message string) error
}

// Notifier delivers the end-of-run report.
type Notifier interface {
	Notify(ctx context.Context, report domain.RunReport) error
}

// RunLock guarantees a single pipeline run at a time.
type RunLock interface {
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

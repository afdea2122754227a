package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

type fakeLLM struct {
	mu      sync.Mutex
	respond func(req ports.CompletionRequest) (string, error)
	calls   map[ports.LLMTask]int
	prompts []ports.CompletionRequest
}

func newFakeLLM(respond func(req ports.CompletionRequest) (string, error)) *fakeLLM {
	return &fakeLLM{respond: respond, calls: map[ports.LLMTask]int{}}
}

func (f *fakeLLM) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.calls[req.Task]++
	f.prompts = append(f.prompts, req)
	f.mu.Unlock()
	if f.respond == nil {
		return "", errors.New("no responder")
	}
	return f.respond(req)
}

func (f *fakeLLM) count(task ports.LLMTask) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[task]
}

type memoryStore struct {
	mu      sync.Mutex
	records map[string]domain.ContentRecord
	saveErr error
}

func newMemoryStore(titles ...string) *memoryStore {
	s := &memoryStore{records: map[string]domain.ContentRecord{}}
	for _, title := range titles {
		slug := domain.Slugify(title)
		s.records[slug] = domain.ContentRecord{Frontmatter: domain.Frontmatter{Title: title, Slug: slug}}
	}
	return s
}

func (s *memoryStore) Exists(_ context.Context, slug string) (bool, error) {
	if slug == "" {
		return false, errors.New("invalid slug \"\"")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[slug]
	return ok, nil
}

func (s *memoryStore) ListTitles(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make([]string, 0, len(s.records))
	for _, r := range s.records {
		titles = append(titles, r.Title)
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *memoryStore) Get(_ context.Context, slug string) (domain.ContentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[slug]
	if !ok {
		return domain.ContentRecord{}, ports.ErrNotFound
	}
	return r, nil
}

func (s *memoryStore) Save(_ context.Context, record domain.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[record.Slug] = record
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]domain.ContentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ContentRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

type fakeProvider struct {
	name    string
	results map[string][]ports.Citation
	errs    map[string]error
	queries []string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Search(_ context.Context, query string, _ []string) ([]ports.Citation, error) {
	p.queries = append(p.queries, query)
	if err := p.errs[query]; err != nil {
		return nil, err
	}
	return p.results[query], nil
}

type recordingNotifier struct {
	reports []domain.RunReport
}

func (n *recordingNotifier) Notify(_ context.Context, report domain.RunReport) error {
	n.reports = append(n.reports, report)
	return nil
}

type fakeVCS struct {
	messages []string
	err      error
}

func (v *fakeVCS) CommitAndPush(_ context.Context, message string) error {
	v.messages = append(v.messages, message)
	return v.err
}

type countingSleeper struct {
	delays []time.Duration
}

func (c *countingSleeper) sleep(ctx context.Context, d time.Duration) error {
	c.delays = append(c.delays, d)
	return ctx.Err()
}

func fixedClock() time.Time {
	return time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)
}

func testTrust() domain.TrustTable {
	return domain.NewTrustTable([]domain.TrustTier{
		{Name: "tier1", Score: 10, Domains: []string{"mckinsey.com", "bcg.com"}},
		{Name: "tier3", Score: 8, Domains: []string{"hbr.org"}},
		{Name: "unscored", Domains: []string{"example.org"}},
	})
}

// goodOpportunity passes every threshold check of the default policy.
func goodOpportunity(title string, roi int) domain.AutomationOpportunity {
	return domain.AutomationOpportunity{
		Title:    title,
		Slug:     domain.Slugify(title),
		Industry: "Finance",
		Problem:  strings.Repeat("Accounts payable clerks retype invoice data by hand every day. ", 6),
		Solution: []string{
			"Scan incoming invoices into a shared inbox",
			"Extract fields with OCR and a language model",
			"Match against purchase orders automatically",
			"Route exceptions to a reviewer",
		},
		ROIMetrics: domain.ROIMetrics{
			TimeSaved:     "3 hours per day",
			CostSavings:   "£120,000 annually",
			PaybackPeriod: "6 months",
		},
		Difficulty:      4,
		DifficultyLabel: domain.DifficultyMedium,
		Tools:           []string{"UiPath", "GPT-4"},
		Proof:           domain.Proof{Company: "Acme Ltd", Results: "70% faster processing"},
		SourceURL:       "https://www.mckinsey.com/" + domain.Slugify(title),
		SourceDomain:    "mckinsey.com",
		PublishedDate:   "2025-02-01",
		ROIScore:        roi,
		TrustScore:      10,
	}
}

func opportunityJSON(title string, roi int) string {
	return fmt.Sprintf(`{
  "title": %q,
  "industry": "Finance",
  "problem": %q,
  "solution": ["Scan incoming invoices into a shared inbox", "Extract fields with OCR and a language model", "Match against purchase orders automatically", "Route exceptions to a reviewer"],
  "roiMetrics": {"timeSaved": "3 hours per day", "costSavings": "£120,000 annually", "paybackPeriod": "6 months"},
  "difficulty": 4,
  "tools": ["UiPath", "GPT-4"],
  "proof": {"company": "Acme Ltd", "results": "70%% faster processing"},
  "roiScore": %d
}`, title, strings.Repeat("Accounts payable clerks retype invoice data by hand every day. ", 6), roi)
}

func generatedDocument(title string) string {
	return "```mdx\n---\ntitle: \"" + title + "\"\nslug: \"wrong-slug\"\nroiScore: 1\n---\n\n# " + title +
		"\n\n## 📊 The Numbers\n\nNumbers.\n\n## 🎯 The Problem\n\nProblem.\n\n## 💡 The Automation\n\nSteps.\n\n" +
		"## 🔧 Tools Required\n\nTools.\n\n## ⚠️ Implementation Considerations\n\nCare.\n\n" +
		"## ✅ Proof & Signals\n\nProof.\n\n## 🚀 Getting Started\n\nStart.\n```"
}

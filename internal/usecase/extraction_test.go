package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

func TestParseOpportunities(t *testing.T) {
	t.Parallel()

	fenced := "Here you go:\n```json\n[" + opportunityJSON("Invoice OCR Automation", 9) + "]\n```\nThanks."
	bare := "Sure! [" + opportunityJSON("Invoice OCR Automation", 9) + "] hope it helps"

	tests := []struct {
		name    string
		text    string
		want    int
		wantErr error
	}{
		{name: "fenced block", text: fenced, want: 1},
		{name: "bare array", text: bare, want: 1},
		{name: "empty array", text: "[]", want: 0},
		{name: "prose only", text: "I could not find any opportunities.", wantErr: ErrNoJSON},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseOpportunities(tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOpportunities error: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d opportunities, got %d", tt.want, len(got))
			}
		})
	}
}

func TestParseOpportunitiesDropsItemsWithoutROI(t *testing.T) {
	t.Parallel()

	text := `[
  {"title": "No metrics at all", "roiScore": 8},
  {"title": "Empty metrics", "roiMetrics": {"timeSaved": "", "costSavings": ""}, "roiScore": 8},
  {"title": "", "roiMetrics": {"timeSaved": "2h"}},
  {"title": "自动化发票处理", "roiMetrics": {"timeSaved": "2h", "costSavings": "£10,000"}, "roiScore": 9},
  {"title": "!!!", "roiMetrics": {"timeSaved": "2h", "costSavings": "£10,000"}, "roiScore": 9},
  {"title": "Loose Types", "industry": "logistics", "solution": "single step",
   "roiMetrics": {"timeSaved": 40, "paybackPeriod": "3 months"},
   "difficulty": "8", "roiScore": 12.4, "tools": "Zapier"}
]`

	got, err := ParseOpportunities(text)
	if err != nil {
		t.Fatalf("ParseOpportunities error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the item with ROI data, got %+v", got)
	}

	opp := got[0]
	if opp.Slug != "loose-types" {
		t.Fatalf("unexpected slug: %s", opp.Slug)
	}
	if opp.Industry != string(domain.IndustryLogistics) {
		t.Fatalf("industry should be canonicalised, got %q", opp.Industry)
	}
	if opp.Difficulty != 8 || opp.DifficultyLabel != domain.DifficultyHard {
		t.Fatalf("unexpected difficulty: %d %s", opp.Difficulty, opp.DifficultyLabel)
	}
	if opp.ROIScore != 10 {
		t.Fatalf("roi score should be clamped to 10, got %d", opp.ROIScore)
	}
	if opp.ROIMetrics.TimeSaved != "40" {
		t.Fatalf("numeric metric should be kept as text, got %q", opp.ROIMetrics.TimeSaved)
	}
	if len(opp.Solution) != 1 || len(opp.Tools) != 1 || opp.Tools[0] != "Zapier" {
		t.Fatalf("single strings should become one-item lists: %+v %+v", opp.Solution, opp.Tools)
	}
}

func TestExtractorEnrichesAndIsolatesFailures(t *testing.T) {
	t.Parallel()

	sources := []domain.RawSource{
		{URL: "https://mckinsey.com/a", Domain: "mckinsey.com", TrustScore: 10, PublishedDate: "2025-01-10", Title: "A"},
		{URL: "https://bcg.com/b", Domain: "bcg.com", TrustScore: 10, PublishedDate: "2025-01-11", Title: "B"},
		{URL: "https://hbr.org/c", Domain: "hbr.org", TrustScore: 8, PublishedDate: "2025-01-12", Title: "C"},
	}

	llm := newFakeLLM(func(req ports.CompletionRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "https://mckinsey.com/a"):
			return "```json\n[" + opportunityJSON("Invoice OCR Automation", 9) + "]\n```", nil
		case strings.Contains(req.Prompt, "https://bcg.com/b"):
			return "", errors.New("upstream timeout")
		default:
			return "Nothing quantifiable here.", nil
		}
	})

	sleeper := &countingSleeper{}
	extractor := NewExtractor(llm, 3*time.Second, WithSleeper(sleeper.sleep))

	opps, err := extractor.Extract(context.Background(), sources)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}

	opp := opps[0]
	if opp.SourceURL != sources[0].URL || opp.SourceDomain != "mckinsey.com" || opp.TrustScore != 10 || opp.PublishedDate != "2025-01-10" {
		t.Fatalf("source metadata not copied: %+v", opp)
	}
	if opp.Slug != "invoice-ocr-automation" || opp.DifficultyLabel != domain.DifficultyMedium {
		t.Fatalf("derived fields wrong: %s %s", opp.Slug, opp.DifficultyLabel)
	}

	if llm.count(ports.TaskExtraction) != 3 {
		t.Fatalf("every source should be tried, got %d calls", llm.count(ports.TaskExtraction))
	}
	if len(sleeper.delays) != 2 {
		t.Fatalf("expected delays between sources only, got %v", sleeper.delays)
	}
	if llm.prompts[0].MaxTokens != extractionMaxTokens {
		t.Fatalf("unexpected max tokens: %d", llm.prompts[0].MaxTokens)
	}
}

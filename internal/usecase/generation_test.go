package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"IdeaScout/internal/document"
	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

func TestGenerateNormalisesAndRewritesFrontmatter(t *testing.T) {
	t.Parallel()

	opp := goodOpportunity("Invoice OCR Automation", 9)
	llm := newFakeLLM(func(req ports.CompletionRequest) (string, error) {
		return generatedDocument(opp.Title), nil
	})
	g := NewGenerator(llm, Brand{Name: "Acme Automation"}, WithClock(fixedClock))

	content, err := g.Generate(context.Background(), opp)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if !strings.HasPrefix(content.MDXContent, "---\n") {
		t.Fatalf("document must begin with the header delimiter")
	}
	if strings.Contains(content.MDXContent, "```") {
		t.Fatalf("code fence leaked into the document")
	}

	fm, body, err := document.Parse(content.MDXContent)
	if err != nil {
		t.Fatalf("generated document does not parse: %v", err)
	}
	if fm.Slug != opp.Slug || fm.Title != opp.Title || fm.Industry != opp.Industry || fm.ROIScore != opp.ROIScore {
		t.Fatalf("frontmatter must match the opportunity: %+v", fm)
	}
	if fm.PublishedDate != "2025-03-01T09:30:00Z" {
		t.Fatalf("unexpected published date: %s", fm.PublishedDate)
	}
	if !strings.HasPrefix(body, "# Invoice OCR Automation") {
		t.Fatalf("unexpected body start: %q", body[:30])
	}
	if content.Slug != opp.Slug || content.OGImagePrompt == "" {
		t.Fatalf("unexpected content: %+v", content)
	}

	prompt := llm.prompts[0]
	if prompt.MaxTokens != generationMaxTokens || prompt.Task != ports.TaskGeneration {
		t.Fatalf("unexpected request: %+v", prompt)
	}
	for _, want := range []string{"Acme Automation", "## 📊 The Numbers", "FCA compliance", "6-10 weeks", "4-8 weeks"} {
		if !strings.Contains(prompt.Prompt, want) {
			t.Fatalf("prompt misses %q", want)
		}
	}
}

func TestGenerateFailsOnMalformedOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  string
		err  error
	}{
		{name: "no closing delimiter", out: "title: x\nno body here"},
		{name: "empty body", out: "---\ntitle: x\n---\n\n", err: ErrEmptyDocument},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			llm := newFakeLLM(func(ports.CompletionRequest) (string, error) { return tt.out, nil })
			g := NewGenerator(llm, Brand{})

			_, err := g.Generate(context.Background(), goodOpportunity("Invoice OCR Automation", 9))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestImplementationGuidanceAndEstimates(t *testing.T) {
	t.Parallel()

	opp := goodOpportunity("Triage", 9)
	opp.Industry = string(domain.IndustryHealthcare)
	opp.Difficulty = 8
	got := ImplementationGuidance(opp)
	if strings.Count(got, "\n- ") != 3 || !strings.Contains(got, "NHS") || !strings.Contains(got, "Dedicated technical resources") {
		t.Fatalf("unexpected guidance: %q", got)
	}

	opp.Industry = string(domain.IndustryRetail)
	opp.Difficulty = 2
	if got := ImplementationGuidance(opp); !strings.HasPrefix(got, "Standard implementation practices apply") {
		t.Fatalf("unexpected default guidance: %q", got)
	}

	for difficulty, want := range map[int][2]string{2: {"2-4", "2-4"}, 5: {"6-10", "4-8"}, 9: {"12-16", "8-12"}} {
		if got := EstimateBuildTime(difficulty); got != want[0] {
			t.Fatalf("EstimateBuildTime(%d) = %s, want %s", difficulty, got, want[0])
		}
		if got := EstimateProfessionalDelivery(difficulty); got != want[1] {
			t.Fatalf("EstimateProfessionalDelivery(%d) = %s, want %s", difficulty, got, want[1])
		}
	}
}

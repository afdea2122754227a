package document

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"IdeaScout/internal/domain"
)

func TestRenderParseRoundTrip(t *testing.T) {
	t.Parallel()

	fm := domain.Frontmatter{
		Title:           "Invoice OCR: Automation",
		Slug:            "invoice-ocr-automation",
		Industry:        "Finance",
		Difficulty:      "Medium",
		DifficultyScore: 5,
		ROIScore:        9,
		TimeSaved:       "3 hours per batch",
		CostSavings:     "£450,000 annually",
		PaybackPeriod:   "6 months",
		Tools:           []string{"UiPath", "GPT-4"},
		PublishedDate:   "2025-03-01T12:00:00Z",
		SourceURL:       "https://www.mckinsey.com/case",
		SourceDomain:    "mckinsey.com",
	}
	body := "# Invoice OCR\n\n## 📊 The Numbers\n\n- **Time Saved**: 3 hours"

	raw, err := Render(fm, body)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.HasPrefix(raw, "---\n") {
		t.Fatalf("rendered document must start with a delimiter: %q", raw[:10])
	}
	if strings.Contains(raw, "productivityGain") {
		t.Fatalf("empty productivity gain should be omitted")
	}

	gotFM, gotBody, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !reflect.DeepEqual(gotFM, fm) {
		t.Fatalf("frontmatter mismatch:\n got %+v\nwant %+v", gotFM, fm)
	}
	if strings.TrimSpace(gotBody) != body {
		t.Fatalf("body mismatch: %q", gotBody)
	}
}

func TestParseRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	if _, _, err := Parse("# Just a body"); !errors.Is(err, ErrNoFrontmatter) {
		t.Fatalf("expected ErrNoFrontmatter, got %v", err)
	}
	if _, _, err := Parse("---\ntitle: x\n# never closed"); !errors.Is(err, ErrNoFrontmatter) {
		t.Fatalf("expected ErrNoFrontmatter for unclosed header, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "mdx fence",
			in:   "```mdx\n---\ntitle: \"A\"\n---\n\nBody\n```",
			want: "---\ntitle: \"A\"\n---\n\nBody",
		},
		{
			name: "bare fence",
			in:   "```\n---\ntitle: \"A\"\n---\nBody\n```\n",
			want: "---\ntitle: \"A\"\n---\nBody",
		},
		{
			name: "missing delimiter",
			in:   "title: \"A\"\n---\nBody",
			want: "---\ntitle: \"A\"\n---\nBody",
		},
		{
			name: "already clean",
			in:   "---\ntitle: \"A\"\n---\nBody",
			want: "---\ntitle: \"A\"\n---\nBody",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSectionsAndMissing(t *testing.T) {
	t.Parallel()

	body := "# Title\n\n## 📊 The Numbers\n\ntext\n\n## 🎯 The Problem\n\ntext\n\n### DIY Approach\n"
	sections := Sections(body)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %v", sections)
	}

	missing := MissingSections(body, []string{"The Numbers", "The Problem", "Getting Started"})
	if len(missing) != 1 || missing[0] != "Getting Started" {
		t.Fatalf("unexpected missing sections: %v", missing)
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	got := PlainText("<p>Saved <b>£2M</b> &amp; 40%   of time</p>")
	if got != "Saved £2M & 40% of time" {
		t.Fatalf("unexpected plain text: %q", got)
	}
	if got := PlainText("  no markup "); got != "no markup" {
		t.Fatalf("unexpected passthrough: %q", got)
	}
}

func TestMarkdownText(t *testing.T) {
	t.Parallel()

	got := MarkdownText("**Bank** cut costs by *40%*")
	if got != "Bank cut costs by 40%" {
		t.Fatalf("unexpected markdown text: %q", got)
	}
	if MarkdownText("  ") != "" {
		t.Fatalf("blank input should stay blank")
	}
}

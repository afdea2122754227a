package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"IdeaScout/internal/document"
	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

const generationMaxTokens = 4096

// ErrEmptyDocument is returned when the generated document has no body.
var ErrEmptyDocument = errors.New("generated document has no body")

// expectedSections are the headings every idea page carries, in order.
var expectedSections = []string{
	"The Numbers",
	"The Problem",
	"The Automation",
	"Tools Required",
	"Implementation Considerations",
	"Proof & Signals",
	"Getting Started",
}

// Brand carries the site identity used in prompts and the call to action.
type Brand struct {
	Name    string
	SiteURL string
}

// Generator renders a validated opportunity into an MDX document.
type Generator struct {
	llm    ports.LLM
	brand  Brand
	now    func() time.Time
	logger *slog.Logger
}

// NewGenerator builds the generation stage.
func NewGenerator(llm ports.LLM, brand Brand, opts ...Option) *Generator {
	o := buildOptions("generation", opts)
	if brand.Name == "" {
		brand.Name = "LumiGentic"
	}
	return &Generator{llm: llm, brand: brand, now: o.now, logger: o.logger}
}

// Generate returns exactly one document or an error; nothing partial is returned.
func (g *Generator) Generate(ctx context.Context, opp domain.AutomationOpportunity) (domain.GeneratedContent, error) {
	publishedAt := g.now().UTC()

	prompt, err := g.prompt(opp, publishedAt)
	if err != nil {
		return domain.GeneratedContent{}, err
	}

	text, err := g.llm.Complete(ctx, ports.CompletionRequest{
		Task:      ports.TaskGeneration,
		Prompt:    prompt,
		MaxTokens: generationMaxTokens,
	})
	if err != nil {
		return domain.GeneratedContent{}, fmt.Errorf("complete generation: %w", err)
	}

	_, body, err := document.Parse(document.Normalize(text))
	if err != nil {
		return domain.GeneratedContent{}, fmt.Errorf("parse generated document: %w", err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.GeneratedContent{}, ErrEmptyDocument
	}

	if missing := document.MissingSections(body, expectedSections); len(missing) > 0 {
		g.logger.Warn("generated document misses sections", "slug", opp.Slug, "missing", missing)
	}

	fm := domain.FrontmatterFor(opp, publishedAt)
	mdx, err := document.Render(fm, body)
	if err != nil {
		return domain.GeneratedContent{}, fmt.Errorf("render document: %w", err)
	}

	content := domain.GeneratedContent{
		Slug:          opp.Slug,
		MDXContent:    mdx,
		OGImagePrompt: g.ogImagePrompt(opp),
		Frontmatter:   fm,
		Body:          body,
	}
	g.logger.Info("content generated", "slug", opp.Slug, "chars", len(mdx))
	g.logger.Debug("og image prompt", "slug", opp.Slug, "prompt", content.OGImagePrompt)
	return content, nil
}

func (g *Generator) prompt(opp domain.AutomationOpportunity, publishedAt time.Time) (string, error) {
	data, err := json.MarshalIndent(opp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal opportunity: %w", err)
	}

	header, err := document.Render(domain.FrontmatterFor(opp, publishedAt), "")
	if err != nil {
		return "", fmt.Errorf("render frontmatter: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional content writer for %s, a UK-based AI automation consultancy.\n\n", g.brand.Name)
	b.WriteString("Transform this automation opportunity into an engaging, SEO-optimized idea card for our Automation Idea Browser.\n\n")
	b.WriteString("OPPORTUNITY DATA:\n")
	b.Write(data)
	b.WriteString("\n\nOUTPUT AN MDX FILE with this exact structure:\n\n")
	b.WriteString(strings.TrimSpace(header))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "# %s\n\n", opp.Title)

	b.WriteString("## 📊 The Numbers\n\n")
	fmt.Fprintf(&b, "- **Time Saved**: %s\n", opp.ROIMetrics.TimeSaved)
	fmt.Fprintf(&b, "- **Annual Impact**: %s\n", opp.ROIMetrics.CostSavings)
	fmt.Fprintf(&b, "- **Payback Period**: %s\n", opp.ROIMetrics.PaybackPeriod)
	if opp.ROIMetrics.ProductivityGain != "" {
		fmt.Fprintf(&b, "- **Productivity Gain**: %s\n", opp.ROIMetrics.ProductivityGain)
	}
	fmt.Fprintf(&b, "- **Difficulty**: %d/10 (%s)\n\n", opp.Difficulty, opp.DifficultyLabel)

	b.WriteString("## 🎯 The Problem\n\n")
	b.WriteString(opp.Problem)
	b.WriteString("\n\n## 💡 The Automation\n\nHow this automation works:\n\n")
	for i, step := range opp.Solution {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	b.WriteString("\n## 🔧 Tools Required\n\n")
	for _, tool := range opp.Tools {
		fmt.Fprintf(&b, "- **%s** - <what it does in this automation>\n", tool)
	}

	b.WriteString("\n## ⚠️ Implementation Considerations\n\n")
	b.WriteString(ImplementationGuidance(opp))

	b.WriteString("\n\n## ✅ Proof & Signals\n\n")
	fmt.Fprintf(&b, "- **Case Study**: %s\n", opp.Proof.Company)
	fmt.Fprintf(&b, "- **Results Achieved**: %s\n", opp.Proof.Results)
	if opp.Proof.MarketTrend != "" {
		fmt.Fprintf(&b, "- **Market Trend**: %s\n", opp.Proof.MarketTrend)
	}
	fmt.Fprintf(&b, "- **Source**: [%s](%s)\n\n", opp.SourceDomain, opp.SourceURL)

	b.WriteString("## 🚀 Getting Started\n\n### DIY Approach\n\n<3-5 practical first steps>\n\n")
	fmt.Fprintf(&b, "**Estimated build time**: %s weeks\n\n", EstimateBuildTime(opp.Difficulty))
	b.WriteString("### Professional Build\n\n")
	fmt.Fprintf(&b, "%s can deliver this automation with:\n", g.brand.Name)
	b.WriteString("- Full compliance and security review\n- Seamless system integration\n- Team training and change management\n- Ongoing support and optimization\n\n")
	fmt.Fprintf(&b, "**Typical delivery**: %s weeks\n\n---\n\n", EstimateProfessionalDelivery(opp.Difficulty))
	b.WriteString("**Ready to explore this for your organisation?**\n\n")
	b.WriteString("[Book a Discovery Call](/contact) • [Get a Bespoke Automation Report](/reports)\n\n---\n\n")
	fmt.Fprintf(&b, "*Part of the [%s Automation Idea Browser](/automation-ideas) • Published %s*\n\n",
		g.brand.Name, publishedAt.Format("2 January 2006"))

	b.WriteString(`WRITING GUIDELINES YOU MUST FOLLOW:
- UK spellings (organisation, realise, optimise, etc.)
- Professional but conversational tone (like talking to a business leader)
- Focus on business outcomes first, technology second
- Use concrete numbers, never vague phrases like "significant savings"
- Balance aspiration with realism - don't overhype
- Include both DIY and professional-build paths (not pushy)
- SEO-friendly (use keywords naturally in headings/content)
- Avoid buzzwords and jargon where possible
- Keep paragraphs short (2-3 sentences max)
- Use active voice

Now output the complete MDX file following this structure exactly.`)

	return b.String(), nil
}

func (g *Generator) ogImagePrompt(opp domain.AutomationOpportunity) string {
	return fmt.Sprintf(`Professional automation infographic for "%s".
Modern, clean design with %s branding (black, white, subtle gradients).
Include: %s industry icon, ROI metric "%s",
difficulty indicator (%s), and payback period "%s".
Style: Enterprise-grade, trustworthy, data-driven visualization.`,
		opp.Title, g.brand.Name, opp.Industry, opp.ROIMetrics.CostSavings, opp.DifficultyLabel, opp.ROIMetrics.PaybackPeriod)
}

// ImplementationGuidance lists the compliance and effort caveats for an idea.
func ImplementationGuidance(opp domain.AutomationOpportunity) string {
	var guidance []string

	switch domain.Industry(opp.Industry) {
	case domain.IndustryHealthcare:
		guidance = append(guidance,
			"GDPR and NHS data standards compliance required",
			"Clinical validation and approval processes")
	case domain.IndustryFinance:
		guidance = append(guidance,
			"FCA compliance and audit trail requirements",
			"Data security and encryption standards")
	}

	if opp.Difficulty >= 7 {
		guidance = append(guidance,
			"Complex system integration (8-12 weeks)",
			"Dedicated technical resources needed")
	}

	if len(guidance) == 0 {
		return "Standard implementation practices apply. Consider pilot testing with a small team before full rollout."
	}

	lines := make([]string, len(guidance))
	for i, g := range guidance {
		lines[i] = "- " + g
	}
	return strings.Join(lines, "\n")
}

// EstimateBuildTime returns the DIY build window in weeks.
func EstimateBuildTime(difficulty int) string {
	switch {
	case difficulty <= 3:
		return "2-4"
	case difficulty <= 6:
		return "6-10"
	default:
		return "12-16"
	}
}

// EstimateProfessionalDelivery returns the consultancy delivery window in weeks.
func EstimateProfessionalDelivery(difficulty int) string {
	switch {
	case difficulty <= 3:
		return "2-4"
	case difficulty <= 6:
		return "4-8"
	default:
		return "8-12"
	}
}

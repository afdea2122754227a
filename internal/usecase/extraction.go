package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

const extractionMaxTokens = 4096

type rawROIMetrics struct {
	TimeSaved        flexString `json:"timeSaved"`
	CostSavings      flexString `json:"costSavings"`
	PaybackPeriod    flexString `json:"paybackPeriod"`
	ProductivityGain flexString `json:"productivityGain"`
}

type rawProof struct {
	Company     flexString `json:"company"`
	Results     flexString `json:"results"`
	MarketTrend flexString `json:"marketTrend"`
}

type rawOpportunity struct {
	Title      flexString     `json:"title"`
	Industry   flexString     `json:"industry"`
	Problem    flexString     `json:"problem"`
	Solution   flexStrings    `json:"solution"`
	ROIMetrics *rawROIMetrics `json:"roiMetrics"`
	Difficulty flexInt        `json:"difficulty"`
	Tools      flexStrings    `json:"tools"`
	Proof      rawProof       `json:"proof"`
	ROIScore   flexInt        `json:"roiScore"`
}

func (r rawOpportunity) hasROI() bool {
	if r.ROIMetrics == nil {
		return false
	}
	return r.ROIMetrics.TimeSaved != "" || r.ROIMetrics.CostSavings != "" || r.ROIMetrics.PaybackPeriod != ""
}

// ParseOpportunities decodes the opportunity array embedded in model output.
// Items without a title or without any ROI metric are dropped. Source fields are left empty.
func ParseOpportunities(text string) ([]domain.AutomationOpportunity, error) {
	payload, err := locateArray(text)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("decode opportunity array: %w", err)
	}

	out := make([]domain.AutomationOpportunity, 0, len(items))
	for _, item := range items {
		var raw rawOpportunity
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		if raw.Title == "" || !raw.hasROI() {
			continue
		}
		opp := raw.toDomain()
		if opp.Slug == "" {
			continue
		}
		out = append(out, opp)
	}
	return out, nil
}

func (r rawOpportunity) toDomain() domain.AutomationOpportunity {
	industry := strings.TrimSpace(string(r.Industry))
	if known, ok := domain.ParseIndustry(industry); ok || industry == "" {
		industry = string(known)
	}

	difficulty := domain.ClampScore(int(r.Difficulty))
	title := strings.TrimSpace(string(r.Title))
	return domain.AutomationOpportunity{
		Title:    title,
		Slug:     domain.Slugify(title),
		Industry: industry,
		Problem:  string(r.Problem),
		Solution: []string(r.Solution),
		ROIMetrics: domain.ROIMetrics{
			TimeSaved:        string(r.ROIMetrics.TimeSaved),
			CostSavings:      string(r.ROIMetrics.CostSavings),
			PaybackPeriod:    string(r.ROIMetrics.PaybackPeriod),
			ProductivityGain: string(r.ROIMetrics.ProductivityGain),
		},
		Difficulty:      difficulty,
		DifficultyLabel: domain.DifficultyLabelFor(difficulty),
		Tools:           []string(r.Tools),
		Proof: domain.Proof{
			Company:     string(r.Proof.Company),
			Results:     string(r.Proof.Results),
			MarketTrend: string(r.Proof.MarketTrend),
		},
		ROIScore: domain.ClampScore(int(r.ROIScore)),
	}
}

// Extractor asks the LLM for structured opportunities in each source.
type Extractor struct {
	llm    ports.LLM
	delay  time.Duration
	sleep  Sleeper
	logger *slog.Logger
}

// NewExtractor builds the extraction stage.
func NewExtractor(llm ports.LLM, delay time.Duration, opts ...Option) *Extractor {
	o := buildOptions("extraction", opts)
	return &Extractor{llm: llm, delay: delay, sleep: o.sleep, logger: o.logger}
}

// Extract processes sources one by one. A failing source yields zero opportunities.
func (e *Extractor) Extract(ctx context.Context, sources []domain.RawSource) ([]domain.AutomationOpportunity, error) {
	var all []domain.AutomationOpportunity
	for i, source := range sources {
		e.logger.Info("analysing source", "index", i+1, "total", len(sources), "domain", source.Domain, "url", source.URL)

		opps, err := e.ExtractFromSource(ctx, source)
		switch {
		case err == nil:
			e.logger.Info("source analysed", "url", source.URL, "opportunities", len(opps))
			all = append(all, opps...)
		case ctx.Err() != nil:
			return nil, fmt.Errorf("extract: %w", ctx.Err())
		case errors.Is(err, ErrNoJSON):
			e.logger.Warn("no JSON found in extraction response", "url", source.URL)
		default:
			e.logger.Warn("extraction failed", "url", source.URL, "error", err)
		}

		if i < len(sources)-1 {
			if err := e.sleep(ctx, e.delay); err != nil {
				return nil, fmt.Errorf("extract: %w", err)
			}
		}
	}

	e.logger.Info("extraction finished", "opportunities", len(all))
	return all, nil
}

// ExtractFromSource returns the enriched opportunities found in one source.
func (e *Extractor) ExtractFromSource(ctx context.Context, source domain.RawSource) ([]domain.AutomationOpportunity, error) {
	text, err := e.llm.Complete(ctx, ports.CompletionRequest{
		Task:      ports.TaskExtraction,
		Prompt:    extractionPrompt(source),
		MaxTokens: extractionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("complete extraction: %w", err)
	}

	opps, err := ParseOpportunities(text)
	if err != nil {
		return nil, err
	}

	for i := range opps {
		opps[i].SourceURL = source.URL
		opps[i].SourceDomain = source.Domain
		opps[i].PublishedDate = source.PublishedDate
		opps[i].TrustScore = source.TrustScore
		if _, ok := domain.ParseIndustry(opps[i].Industry); !ok && opps[i].Industry != string(domain.IndustryGeneral) {
			e.logger.Warn("unrecognised industry", "title", opps[i].Title, "industry", opps[i].Industry)
		}
	}
	return opps, nil
}

func extractionPrompt(source domain.RawSource) string {
	industries := make([]string, len(domain.Industries))
	for i, ind := range domain.Industries {
		industries[i] = string(ind)
	}

	return fmt.Sprintf(`Analyze this article and extract automation opportunities with quantifiable ROI.

SOURCE INFORMATION:
Title: %s
URL: %s
Domain: %s (Trust Score: %d/10)
Content:
%s

TASK:
Extract ALL automation opportunities mentioned in this content. For each opportunity, provide:

1. **Title**: Clear, specific automation opportunity (e.g., "Auto-Generate Clinical Notes from Audio Recording")

2. **Industry**: Primary industry/sector (choose one: %s)

3. **Problem**: 2-3 sentences describing:
   - What manual process is being automated
   - Quantify the waste (hours/week, £/$ cost, error rate)
   - Who is affected (role, team size, department)

4. **Solution**: Step-by-step breakdown (4-6 steps) of how the automation works

5. **ROI Metrics** (MUST have real numbers - do not guess):
   - timeSaved: e.g., "3.5 hours per assessment" or "40%% reduction"
   - costSavings: e.g., "£450,000 annually" or "$2.1M over 3 years"
   - paybackPeriod: e.g., "6 months" or "18 months"
   - productivityGain: (optional) e.g., "2.5x throughput increase"

6. **Difficulty**: Score 1-10 where:
   - 1-3 = Easy (simple integration, low-code, <4 weeks)
   - 4-7 = Medium (custom build, some integration, 4-12 weeks)
   - 8-10 = Hard (complex systems, compliance, >12 weeks)

7. **Tools**: Specific technologies mentioned (e.g., "GPT-4", "UiPath", "Zapier", "Power Automate")

8. **Proof**:
   - company: Name of company that implemented this
   - results: Specific metrics achieved
   - marketTrend: (optional) Why this is trending now

9. **ROI Score**: Rate 1-10 based on:
   - Quantifiable impact (10 = £500k+ savings, 1 = marginal)
   - Speed to value (10 = <6mo payback, 1 = >3yr)
   - Credibility of data (10 = specific numbers + company name, 1 = vague)

CRITICAL REQUIREMENTS:
- Only extract opportunities with REAL NUMBERS (don't make up ROI data)
- If no company name is mentioned, mark company as "Not specified"
- If ROI data is vague or missing, DO NOT include that opportunity
- Prefer opportunities relevant to UK businesses
- Each opportunity must be distinct (don't duplicate similar ideas)

OUTPUT FORMAT:
Respond with a JSON array of opportunities using the keys title, industry, problem, solution,
roiMetrics, difficulty, tools, proof and roiScore. If no clear opportunities with ROI data exist,
return an empty array [].`,
		source.Title,
		source.URL,
		source.Domain,
		source.TrustScore,
		source.Content,
		strings.Join(industries, ", "),
	)
}

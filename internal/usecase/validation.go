package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

const (
	similarityMaxTokens  = 50
	credibilityMaxTokens = 512

	companyPlaceholder = "Not specified"

	ReasonMissingMetrics   = "Missing required ROI metrics (cost savings or time saved)"
	ReasonDuplicate        = "Duplicate of existing published idea"
	ReasonEmptySlug        = "Title has no characters usable in a slug"
	ReasonCredibilityParse = "Failed to parse validation response"
	ReasonCredibilityCheck = "Failed AI credibility check"
	WarningNoCompany       = "No specific company name mentioned"
)

// ValidationPolicy holds the quality thresholds.
type ValidationPolicy struct {
	MinROIScore              int
	MinTrustScore            int
	MinContentLength         int
	SimilarityThreshold      float64
	CredibilityROIScore      int
	MinCredibilityConfidence int
	RequireNumbers           bool
	RequireCompanyName       bool
}

// DefaultValidationPolicy mirrors the production thresholds.
func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		MinROIScore:              7,
		MinTrustScore:            7,
		MinContentLength:         500,
		SimilarityThreshold:      0.85,
		CredibilityROIScore:      8,
		MinCredibilityConfidence: 7,
		RequireNumbers:           true,
		RequireCompanyName:       true,
	}
}

// Validator is the ordered quality gate in front of generation.
type Validator struct {
	llm    ports.LLM
	store  ports.ContentStore
	policy ValidationPolicy
	logger *slog.Logger
}

// NewValidator builds the validation stage.
func NewValidator(llm ports.LLM, store ports.ContentStore, policy ValidationPolicy, opts ...Option) *Validator {
	o := buildOptions("validation", opts)
	return &Validator{llm: llm, store: store, policy: policy, logger: o.logger}
}

// Validate runs the checks in order and stops at the first failure.
// Store and LLM transport errors are returned; malformed model output is not.
func (v *Validator) Validate(ctx context.Context, opp domain.AutomationOpportunity) (domain.ValidationResult, error) {
	var warnings []string

	if opp.ROIScore < v.policy.MinROIScore {
		return reject(fmt.Sprintf("ROI score too low: %d/10 (minimum: %d)", opp.ROIScore, v.policy.MinROIScore)), nil
	}

	if opp.TrustScore < v.policy.MinTrustScore {
		return reject(fmt.Sprintf("Source trust score too low: %d/10 (minimum: %d)", opp.TrustScore, v.policy.MinTrustScore)), nil
	}

	if v.policy.RequireNumbers && (opp.ROIMetrics.CostSavings == "" || opp.ROIMetrics.TimeSaved == "") {
		return reject(ReasonMissingMetrics), nil
	}

	if v.policy.RequireCompanyName {
		company := strings.TrimSpace(opp.Proof.Company)
		if company == "" || strings.EqualFold(company, companyPlaceholder) {
			warnings = append(warnings, WarningNoCompany)
		}
	}

	if length := contentLength(opp); length < v.policy.MinContentLength {
		return reject(fmt.Sprintf("Content too short: %d chars (minimum: %d)", length, v.policy.MinContentLength)), nil
	}

	if opp.Slug == "" {
		return reject(ReasonEmptySlug), nil
	}

	duplicate, err := v.isDuplicate(ctx, opp)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if duplicate {
		return reject(ReasonDuplicate), nil
	}

	if opp.ROIScore >= v.policy.CredibilityROIScore {
		credible, reason, err := v.checkCredibility(ctx, opp)
		if err != nil {
			return domain.ValidationResult{}, err
		}
		if !credible {
			return reject(reason), nil
		}
	}

	return domain.ValidationResult{Valid: true, Warnings: warnings}, nil
}

func reject(reason string) domain.ValidationResult {
	return domain.ValidationResult{Valid: false, Reason: reason}
}

// contentLength counts characters, not bytes, so £ and emoji weigh one.
func contentLength(opp domain.AutomationOpportunity) int {
	return len([]rune(opp.Problem)) + len([]rune(strings.Join(opp.Solution, " ")))
}

func (v *Validator) isDuplicate(ctx context.Context, opp domain.AutomationOpportunity) (bool, error) {
	if v.store == nil {
		return false, nil
	}

	exists, err := v.store.Exists(ctx, opp.Slug)
	if err != nil {
		return false, fmt.Errorf("check slug %s: %w", opp.Slug, err)
	}
	if exists {
		v.logger.Info("slug already published", "slug", opp.Slug)
		return true, nil
	}

	titles, err := v.store.ListTitles(ctx)
	if err != nil {
		return false, fmt.Errorf("list published titles: %w", err)
	}

	for _, existing := range titles {
		score, err := v.titleSimilarity(ctx, opp.Title, existing)
		if err != nil {
			return false, err
		}
		if score >= v.policy.SimilarityThreshold {
			v.logger.Info("similar idea already published", "title", opp.Title, "existing", existing, "similarity", score)
			return true, nil
		}
	}
	return false, nil
}

func (v *Validator) titleSimilarity(ctx context.Context, candidate, existing string) (float64, error) {
	text, err := v.llm.Complete(ctx, ports.CompletionRequest{
		Task:      ports.TaskSimilarity,
		Prompt:    similarityPrompt(candidate, existing),
		MaxTokens: similarityMaxTokens,
	})
	if err != nil {
		return 0, fmt.Errorf("similarity check: %w", err)
	}
	return parseScore(text), nil
}

type credibilityVerdict struct {
	IsCredible      bool    `json:"isCredible"`
	Reason          string  `json:"reason"`
	ConfidenceScore flexInt `json:"confidenceScore"`
}

func (v *Validator) checkCredibility(ctx context.Context, opp domain.AutomationOpportunity) (bool, string, error) {
	prompt, err := credibilityPrompt(opp)
	if err != nil {
		return false, "", err
	}

	text, err := v.llm.Complete(ctx, ports.CompletionRequest{
		Task:      ports.TaskCredibility,
		Prompt:    prompt,
		MaxTokens: credibilityMaxTokens,
	})
	if err != nil {
		return false, "", fmt.Errorf("credibility check: %w", err)
	}

	payload, err := locateObject(text)
	if err != nil {
		return false, ReasonCredibilityParse, nil
	}
	var verdict credibilityVerdict
	if err := json.Unmarshal([]byte(payload), &verdict); err != nil {
		v.logger.Warn("credibility response not decodable", "title", opp.Title, "error", err)
		return false, ReasonCredibilityParse, nil
	}

	if verdict.IsCredible && int(verdict.ConfidenceScore) >= v.policy.MinCredibilityConfidence {
		return true, "", nil
	}

	reason := strings.TrimSpace(verdict.Reason)
	if reason == "" {
		reason = ReasonCredibilityCheck
	}
	return false, reason, nil
}

func similarityPrompt(candidate, existing string) string {
	return fmt.Sprintf(`Are these two automation ideas essentially the same thing?

Idea 1: %s
Idea 2: %s

Rate similarity from 0.0 (completely different concepts) to 1.0 (same idea, just different wording).

Examples:
- "Invoice OCR Automation" vs "Auto-Extract Data from Invoices" = 0.95 (same idea)
- "Clinical Notes Automation" vs "Invoice Processing" = 0.0 (different)
- "Email Auto-Response" vs "Email Categorization" = 0.5 (related but different)

Respond with ONLY a decimal number between 0.0 and 1.0, nothing else.`, candidate, existing)
}

func credibilityPrompt(opp domain.AutomationOpportunity) (string, error) {
	data, err := json.MarshalIndent(opp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal opportunity: %w", err)
	}

	return fmt.Sprintf(`Evaluate this automation opportunity for credibility and realism:

%s

Check for:
1. **ROI Realism**: Are the cost savings and time savings realistic? (Not too good to be true)
2. **Source Credibility**: Is %s a reputable source? (Trust score: %d/10)
3. **Technical Feasibility**: Can this actually be implemented with current technology?
4. **Market Relevance**: Would this be valuable to UK businesses today?
5. **Data Specificity**: Are the metrics specific enough? (avoid vague claims)

Red flags to watch for:
- ROI claims >1000%% without solid proof
- "Revolutionary" or "game-changing" language without substance
- Vague metrics like "significant improvement" without numbers
- Technologies that don't exist yet
- Unrealistic timelines (e.g., "implement in 1 week")

Respond with JSON only:
{
  "isCredible": true or false,
  "reason": "brief explanation if false",
  "confidenceScore": 0-10
}`, data, opp.SourceDomain, opp.TrustScore), nil
}

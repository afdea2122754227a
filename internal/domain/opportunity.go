package domain

import (
	"regexp"
	"strings"
)

// RawSource is a trusted search citation produced by discovery.
type RawSource struct {
	URL           string
	Title         string
	Content       string
	Domain        string
	TrustScore    int
	PublishedDate string
}

// ROIMetrics are kept as free text exactly as the source phrased them.
type ROIMetrics struct {
	TimeSaved        string `json:"timeSaved"`
	CostSavings      string `json:"costSavings"`
	PaybackPeriod    string `json:"paybackPeriod"`
	ProductivityGain string `json:"productivityGain,omitempty"`
}

// Proof names who implemented the automation and what they achieved.
type Proof struct {
	Company     string `json:"company"`
	Results     string `json:"results"`
	MarketTrend string `json:"marketTrend,omitempty"`
}

// AutomationOpportunity is a candidate idea extracted from a RawSource.
type AutomationOpportunity struct {
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Industry        string          `json:"industry"`
	Problem         string          `json:"problem"`
	Solution        []string        `json:"solution"`
	ROIMetrics      ROIMetrics      `json:"roiMetrics"`
	Difficulty      int             `json:"difficulty"`
	DifficultyLabel DifficultyLabel `json:"difficultyLabel"`
	Tools           []string        `json:"tools"`
	Proof           Proof           `json:"proof"`
	SourceURL       string          `json:"sourceUrl"`
	SourceDomain    string          `json:"sourceDomain"`
	PublishedDate   string          `json:"publishedDate"`
	ROIScore        int             `json:"roiScore"`
	TrustScore      int             `json:"trustScore"`
}

// GeneratedContent is the rendered MDX document for one opportunity.
type GeneratedContent struct {
	Slug          string
	MDXContent    string
	OGImagePrompt string
	Frontmatter   Frontmatter
	Body          string
}

// DifficultyLabel buckets the 1-10 difficulty score.
type DifficultyLabel string

const (
	DifficultyEasy   DifficultyLabel = "Easy"
	DifficultyMedium DifficultyLabel = "Medium"
	DifficultyHard   DifficultyLabel = "Hard"
)

// DifficultyLabelFor maps 1-3 to Easy, 4-7 to Medium and 8+ to Hard.
func DifficultyLabelFor(score int) DifficultyLabel {
	switch {
	case score <= 3:
		return DifficultyEasy
	case score <= 7:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases the title and collapses every non-alphanumeric run into a single hyphen.
func Slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// ClampScore keeps model-assigned scores inside 1..10.
func ClampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// Industry is one of the sectors the site groups ideas by.
type Industry string

const (
	IndustryHealthcare           Industry = "Healthcare"
	IndustryFinance              Industry = "Finance"
	IndustryManufacturing        Industry = "Manufacturing"
	IndustryRetail               Industry = "Retail"
	IndustryProfessionalServices Industry = "Professional Services"
	IndustrySME                  Industry = "SME"
	IndustryGovernment           Industry = "Government"
	IndustryContactCenter        Industry = "Contact Center"
	IndustryLogistics            Industry = "Logistics"
	IndustryGeneral              Industry = "General"
)

// Industries lists the sectors offered to the extraction prompt.
var Industries = []Industry{
	IndustryHealthcare,
	IndustryFinance,
	IndustryManufacturing,
	IndustryRetail,
	IndustryProfessionalServices,
	IndustrySME,
	IndustryGovernment,
	IndustryContactCenter,
	IndustryLogistics,
}

// ParseIndustry matches case-insensitively; unknown values map to General with ok=false.
func ParseIndustry(value string) (Industry, bool) {
	value = strings.TrimSpace(value)
	for _, ind := range Industries {
		if strings.EqualFold(string(ind), value) {
			return ind, true
		}
	}
	return IndustryGeneral, false
}

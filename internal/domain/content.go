package domain

import "time"

// Frontmatter is the YAML header block of a published idea document.
type Frontmatter struct {
	Title            string   `yaml:"title"`
	Slug             string   `yaml:"slug"`
	Industry         string   `yaml:"industry"`
	Difficulty       string   `yaml:"difficulty"`
	DifficultyScore  int      `yaml:"difficultyScore"`
	ROIScore         int      `yaml:"roiScore"`
	TimeSaved        string   `yaml:"timeSaved"`
	CostSavings      string   `yaml:"costSavings"`
	PaybackPeriod    string   `yaml:"paybackPeriod"`
	ProductivityGain string   `yaml:"productivityGain,omitempty"`
	Tools            []string `yaml:"tools"`
	PublishedDate    string   `yaml:"publishedDate"`
	SourceURL        string   `yaml:"sourceUrl"`
	SourceDomain     string   `yaml:"sourceDomain"`
}

// RecordMetadata is the nested blob persisted next to the columns.
type RecordMetadata struct {
	ContentMDX  string `json:"content_mdx,omitempty" dynamodbav:"content_mdx,omitempty"`
	RunID       string `json:"run_id,omitempty" dynamodbav:"run_id,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty" dynamodbav:"generated_at,omitempty"`
	MigratedAt  string `json:"migrated_at,omitempty" dynamodbav:"migrated_at,omitempty"`
}

// ContentRecord is a published idea as held by any content store.
type ContentRecord struct {
	Frontmatter
	Body        string
	PublishedAt time.Time
	UpdatedAt   time.Time
	Metadata    RecordMetadata
}

// FrontmatterFor builds the authoritative header for an opportunity.
func FrontmatterFor(opp AutomationOpportunity, publishedAt time.Time) Frontmatter {
	tools := make([]string, len(opp.Tools))
	copy(tools, opp.Tools)
	return Frontmatter{
		Title:            opp.Title,
		Slug:             opp.Slug,
		Industry:         opp.Industry,
		Difficulty:       string(opp.DifficultyLabel),
		DifficultyScore:  opp.Difficulty,
		ROIScore:         opp.ROIScore,
		TimeSaved:        opp.ROIMetrics.TimeSaved,
		CostSavings:      opp.ROIMetrics.CostSavings,
		PaybackPeriod:    opp.ROIMetrics.PaybackPeriod,
		ProductivityGain: opp.ROIMetrics.ProductivityGain,
		Tools:            tools,
		PublishedDate:    publishedAt.UTC().Format(time.RFC3339),
		SourceURL:        opp.SourceURL,
		SourceDomain:     opp.SourceDomain,
	}
}

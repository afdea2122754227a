package config

import "time"

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Scheduler: SchedulerConfig{
			CronExpression: "0 2 * * *",
			Timezone:       defaultTimezone,
		},
		Search: SearchConfig{
			Providers:         []string{"perplexity"},
			Queries:           defaultQueries(),
			MaxSearchesPerRun: 10,
			SearchDelay:       2 * time.Second,
			Perplexity: PerplexityConfig{
				Endpoint:      "https://api.perplexity.ai/chat/completions",
				Model:         "sonar-pro",
				RecencyFilter: "year",
			},
			Feeds: FeedsConfig{
				URLs: []string{
					"https://techcrunch.com/feed/",
					"https://www.technologyreview.com/feed/",
					"https://www.healthcareitnews.com/home/feed",
					"https://www.finextra.com/rss/headlines.aspx",
				},
				MaxItems: 10,
				MaxAge:   365 * 24 * time.Hour,
			},
			Arxiv: ArxivConfig{BaseURL: "https://arxiv.org", MaxResults: 5},
		},
		TrustTiers: defaultTrustTiers(),
		LLM: LLMConfig{
			Provider:        LLMOpenAI,
			Model:           "gpt-4o",
			SimilarityModel: "gpt-4o-mini",
			Timeout:         2 * time.Minute,
			ExtractionDelay: 3 * time.Second,
		},
		Validation: ValidationConfig{
			MinROIScore:              7,
			MinTrustScore:            7,
			MinContentLength:         500,
			SimilarityThreshold:      0.85,
			CredibilityROIScore:      8,
			MinCredibilityConfidence: 7,
			RequireNumbers:           true,
			RequireCompanyName:       true,
		},
		Publishing: PublishingConfig{
			MaxPublishesPerRun:   3,
			AutoPublishThreshold: 9,
			PublishDelay:         3 * time.Second,
		},
		Content: ContentConfig{
			Store:        StoreMDX,
			Dir:          "content/automation-ideas",
			DynamoRegion: "eu-west-2",
		},
		Git: GitConfig{
			RepoDir:     ".",
			Remote:      "origin",
			Branch:      "main",
			Push:        true,
			AuthorName:  "Automation Bot",
			AuthorEmail: "bot@lumigentic.com",
		},
		Notifications: NotificationConfig{
			Slack: SlackConfig{IdeasURL: "https://lumigentic.com/automation-ideas"},
		},
		Lock: LockConfig{
			Path: ".ideascout.lock",
			TTL:  2 * time.Hour,
			Key:  "ideascout:pipeline:lock",
		},
		Brand: BrandConfig{Name: "LumiGentic", SiteURL: "https://lumigentic.com"},
	}
}

func defaultTrustTiers() []TrustTierConfig {
	return []TrustTierConfig{
		{Name: "consulting", Score: 10, Domains: []string{
			"mckinsey.com", "bcg.com", "deloitte.com", "accenture.com",
			"pwc.com", "bain.com", "gartner.com", "forrester.com",
		}},
		{Name: "vendors", Score: 9, Domains: []string{
			"microsoft.com", "salesforce.com", "uipath.com", "automationanywhere.com",
			"servicenow.com", "workday.com", "oracle.com", "sap.com", "ibm.com",
		}},
		{Name: "media", Score: 8, Domains: []string{
			"hbr.org", "forbes.com", "techcrunch.com", "technologyreview.com",
			"wsj.com", "ft.com", "economist.com",
		}},
		{Name: "industry", Score: 7, Domains: []string{
			"healthcareitnews.com", "manufacturingglobal.com", "finextra.com", "retailtechnology.co.uk",
		}},
		{Name: "research", Score: 8, Domains: []string{"arxiv.org", "ieee.org"}},
		{Name: "government", Score: 10, Domains: []string{"nhs.uk", "gov.uk", "digital.nhs.uk"}},
	}
}

func defaultQueries() []string {
	return []string{
		"automation case study 2025 ROI results",
		"AI automation success story cost savings",
		"process automation implementation £ million saved",
		"RPA deployment results healthcare finance",
		"healthcare automation AI clinical workflow 2025",
		"manufacturing automation efficiency gains",
		"financial services automation case study",
		"retail automation inventory management",
		"SME automation productivity improvement",
		"generative AI business automation use case",
		"GPT-4 enterprise automation deployment",
		"computer vision automation invoice processing",
		"speech-to-text clinical documentation automation",
		"manual process costing businesses time money",
		"administrative burden UK businesses 2025",
		"workflow inefficiency enterprise solutions",
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg := Load()
	if cfg.Validation.MinROIScore != 7 || cfg.Validation.SimilarityThreshold != 0.85 {
		t.Fatalf("unexpected validation defaults: %+v", cfg.Validation)
	}
	if cfg.Publishing.MaxPublishesPerRun != 3 || cfg.Publishing.AutoPublishThreshold != 9 {
		t.Fatalf("unexpected publishing defaults: %+v", cfg.Publishing)
	}
	if len(cfg.Search.Queries) != 16 || cfg.Search.MaxSearchesPerRun != 10 {
		t.Fatalf("unexpected search defaults")
	}
	if cfg.Scheduler.Location() != time.UTC && cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Scheduler.Location())
	}

	trust := cfg.TrustTable()
	if trust.Score("mckinsey.com") != 10 || trust.Score("finextra.com") != 7 || !trust.Allowed("arxiv.org") {
		t.Fatalf("unexpected trust table")
	}
	if trust.Allowed("medium.com") {
		t.Fatalf("unlisted domain must not be allowed")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv("MIN_ROI_SCORE", "8")
	t.Setenv("SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("SEARCH_DELAY", "500")
	t.Setenv("PUBLISH_DELAY", "1m")
	t.Setenv("SEARCH_PROVIDERS", "perplexity, feeds")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GIT_ENABLED", "true")
	t.Setenv("MAX_PUBLISHES_PER_RUN", "not-a-number")

	cfg := Load()
	if cfg.Validation.MinROIScore != 8 || cfg.Validation.SimilarityThreshold != 0.9 {
		t.Fatalf("threshold overrides not applied: %+v", cfg.Validation)
	}
	if cfg.Search.SearchDelay != 500*time.Millisecond || cfg.Publishing.PublishDelay != time.Minute {
		t.Fatalf("duration overrides not applied")
	}
	if len(cfg.Search.Providers) != 2 || cfg.Search.Providers[1] != "feeds" {
		t.Fatalf("unexpected providers: %v", cfg.Search.Providers)
	}
	if cfg.LLM.APIKey != "g-key" || !cfg.Git.Enabled {
		t.Fatalf("credential fallback or bool override missing")
	}
	if cfg.Publishing.MaxPublishesPerRun != 3 {
		t.Fatalf("invalid integer should be ignored, got %d", cfg.Publishing.MaxPublishesPerRun)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideascout.yaml")
	raw := `
scheduler:
  enabled: true
  timezone: Europe/London
search:
  queries: ["invoice automation"]
trustTiers:
  - name: only
    score: 9
    domains: [example.com]
content:
  store: sqlite
  dsn: ideas.db
publishing:
  publishDelay: 5s
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if !cfg.Scheduler.Enabled || cfg.Scheduler.Location().String() != "Europe/London" {
		t.Fatalf("scheduler not loaded: %+v", cfg.Scheduler)
	}
	if len(cfg.Search.Queries) != 1 || cfg.TrustTable().Len() != 1 {
		t.Fatalf("tables not replaced from file")
	}
	if cfg.Content.Store != StoreSQLite || cfg.Publishing.PublishDelay != 5*time.Second {
		t.Fatalf("unexpected content/publishing: %+v %+v", cfg.Content, cfg.Publishing)
	}
	if cfg.Validation.MinROIScore != 7 {
		t.Fatalf("unset fields must keep defaults")
	}
}

func TestValidateNamesMissingCredentials(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Content.Store = StorePostgres
	cfg.Notifications.Telegram.BotToken = "token"

	err := cfg.Validate()
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	for _, name := range []string{"PERPLEXITY_API_KEY", "LLM_API_KEY", "DATABASE_DSN", "TELEGRAM_CHAT_ID"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error does not name %s: %v", name, err)
		}
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Search.Perplexity.APIKey = "p"
	cfg.LLM.APIKey = "l"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Git.Enabled = true
	cfg.Content.Store = StoreDynamoDB
	cfg.Content.DynamoTable = "ideas"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("git with a non-file store must be rejected")
	}

	cfg = defaultConfig()
	cfg.Search.Perplexity.APIKey = "p"
	cfg.LLM.APIKey = "l"
	cfg.Search.Providers = []string{"perplexity", "bing"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "bing") {
		t.Fatalf("unknown provider must be rejected: %v", err)
	}
}

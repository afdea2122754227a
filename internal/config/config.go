package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"IdeaScout/internal/domain"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "IDEASCOUT_CONFIG"
)

// ErrMissingCredential is wrapped with the name of the variable that is absent.
var ErrMissingCredential = errors.New("missing credential")

// Content store backends.
const (
	StoreMDX      = "mdx"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreDynamoDB = "dynamodb"
)

// LLM backends.
const (
	LLMOpenAI = "openai"
	LLMGemini = "gemini"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Search        SearchConfig       `yaml:"search"`
	TrustTiers    []TrustTierConfig  `yaml:"trustTiers"`
	LLM           LLMConfig          `yaml:"llm"`
	Validation    ValidationConfig   `yaml:"validation"`
	Publishing    PublishingConfig   `yaml:"publishing"`
	Content       ContentConfig      `yaml:"content"`
	Git           GitConfig          `yaml:"git"`
	Notifications NotificationConfig `yaml:"notifications"`
	Lock          LockConfig         `yaml:"lock"`
	Brand         BrandConfig        `yaml:"brand"`
}

// LoggingConfig selects level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SchedulerConfig defines when the pipeline should run in daemon mode.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	RunOnStart     bool           `yaml:"runOnStart"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// SearchConfig groups discovery settings.
type SearchConfig struct {
	Providers         []string         `yaml:"providers"`
	Queries           []string         `yaml:"queries"`
	MaxSearchesPerRun int              `yaml:"maxSearchesPerRun"`
	SearchDelay       time.Duration    `yaml:"searchDelay"`
	Perplexity        PerplexityConfig `yaml:"perplexity"`
	Feeds             FeedsConfig      `yaml:"feeds"`
	Arxiv             ArxivConfig      `yaml:"arxiv"`
}

// PerplexityConfig defines how to contact the answer-engine API.
type PerplexityConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Model         string `yaml:"model"`
	APIKey        string `yaml:"apiKey"`
	RecencyFilter string `yaml:"recencyFilter"`
}

// FeedsConfig lists publisher RSS/Atom feeds.
type FeedsConfig struct {
	URLs     []string      `yaml:"urls"`
	MaxItems int           `yaml:"maxItems"`
	MaxAge   time.Duration `yaml:"maxAge"`
}

// ArxivConfig tunes the arXiv search provider.
type ArxivConfig struct {
	BaseURL    string `yaml:"baseUrl"`
	MaxResults int    `yaml:"maxResults"`
}

// TrustTierConfig is one tier of the domain allow-list.
type TrustTierConfig struct {
	Name    string   `yaml:"name"`
	Score   int      `yaml:"score"`
	Domains []string `yaml:"domains"`
}

// LLMConfig selects the model backend.
type LLMConfig struct {
	Provider        string        `yaml:"provider"`
	APIKey          string        `yaml:"apiKey"`
	BaseURL         string        `yaml:"baseUrl"`
	Model           string        `yaml:"model"`
	SimilarityModel string        `yaml:"similarityModel"`
	Timeout         time.Duration `yaml:"timeout"`
	ExtractionDelay time.Duration `yaml:"extractionDelay"`
}

// ValidationConfig holds the quality gates.
type ValidationConfig struct {
	MinROIScore              int     `yaml:"minRoiScore"`
	MinTrustScore            int     `yaml:"minTrustScore"`
	MinContentLength         int     `yaml:"minContentLength"`
	SimilarityThreshold      float64 `yaml:"similarityThreshold"`
	CredibilityROIScore      int     `yaml:"credibilityRoiScore"`
	MinCredibilityConfidence int     `yaml:"minCredibilityConfidence"`
	RequireNumbers           bool    `yaml:"requireNumbers"`
	RequireCompanyName       bool    `yaml:"requireCompanyName"`
}

// PublishingConfig caps and gates publishing.
type PublishingConfig struct {
	MaxPublishesPerRun   int           `yaml:"maxPublishesPerRun"`
	AutoPublishThreshold int           `yaml:"autoPublishThreshold"`
	PublishDelay         time.Duration `yaml:"publishDelay"`
}

// ContentConfig selects where published ideas live.
type ContentConfig struct {
	Store        string `yaml:"store"`
	Dir          string `yaml:"dir"`
	DSN          string `yaml:"dsn"`
	DynamoTable  string `yaml:"dynamoTable"`
	DynamoRegion string `yaml:"dynamoRegion"`
	AWSEndpoint  string `yaml:"awsEndpoint"`
}

// GitConfig controls committing the MDX directory.
type GitConfig struct {
	Enabled     bool   `yaml:"enabled"`
	RepoDir     string `yaml:"repoDir"`
	Remote      string `yaml:"remote"`
	Branch      string `yaml:"branch"`
	Push        bool   `yaml:"push"`
	AuthorName  string `yaml:"authorName"`
	AuthorEmail string `yaml:"authorEmail"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Slack    SlackConfig    `yaml:"slack"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// SlackConfig wires the incoming webhook.
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
	IdeasURL   string `yaml:"ideasUrl"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LockConfig chooses the run lock; a Valkey address wins over the lock file.
type LockConfig struct {
	Path           string        `yaml:"path"`
	TTL            time.Duration `yaml:"ttl"`
	ValkeyAddress  string        `yaml:"valkeyAddress"`
	ValkeyPassword string        `yaml:"valkeyPassword"`
	Key            string        `yaml:"key"`
}

// BrandConfig names the site the ideas are written for.
type BrandConfig struct {
	Name    string `yaml:"name"`
	SiteURL string `yaml:"siteUrl"`
}

// Load reads .env and the YAML file (if present) and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			slog.Warn("config: cannot read file, falling back to defaults", "path", path, "error", err)
		} else {
			fileCfg := defaultConfig()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				slog.Warn("config: cannot parse file, falling back to defaults", "path", path, "error", err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.TrustTiers) == 0 {
		cfg.TrustTiers = defaultConfig().TrustTiers
	}
	if len(cfg.Search.Queries) == 0 {
		cfg.Search.Queries = defaultConfig().Search.Queries
	}

	return cfg
}

// TrustTable flattens the configured tiers.
func (c Config) TrustTable() domain.TrustTable {
	tiers := make([]domain.TrustTier, 0, len(c.TrustTiers))
	for _, t := range c.TrustTiers {
		tiers = append(tiers, domain.TrustTier{Name: t.Name, Score: t.Score, Domains: t.Domains})
	}
	return domain.NewTrustTable(tiers)
}

// Validate fails fast, naming every missing credential or unknown setting.
func (c Config) Validate() error {
	var errs []error
	missing := func(name string) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingCredential, name))
	}

	if len(c.Search.Providers) == 0 {
		errs = append(errs, errors.New("no search providers configured"))
	}
	for _, p := range c.Search.Providers {
		switch p {
		case "perplexity":
			if c.Search.Perplexity.APIKey == "" {
				missing("PERPLEXITY_API_KEY")
			}
		case "feeds":
			if len(c.Search.Feeds.URLs) == 0 {
				errs = append(errs, errors.New("feeds provider enabled without feed urls"))
			}
		case "arxiv":
		default:
			errs = append(errs, fmt.Errorf("unknown search provider %q", p))
		}
	}

	switch c.LLM.Provider {
	case LLMOpenAI, LLMGemini:
		if c.LLM.APIKey == "" {
			missing("LLM_API_KEY")
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	if err := c.ValidateContentStore(); err != nil {
		errs = append(errs, err)
	}

	if c.Git.Enabled && c.Content.Store != StoreMDX {
		errs = append(errs, errors.New("git publishing requires the mdx content store"))
	}

	tg := c.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID == "" {
		missing("TELEGRAM_CHAT_ID")
	}
	if tg.ChatID != "" && tg.BotToken == "" {
		missing("TELEGRAM_BOT_TOKEN")
	}

	if c.Publishing.MaxPublishesPerRun < 0 {
		errs = append(errs, errors.New("MAX_PUBLISHES_PER_RUN must not be negative"))
	}
	if v := c.Validation.SimilarityThreshold; v < 0 || v > 1 {
		errs = append(errs, fmt.Errorf("SIMILARITY_THRESHOLD %.2f outside 0..1", v))
	}

	return errors.Join(errs...)
}

// ValidateContentStore checks only the settings the selected content store needs.
func (c Config) ValidateContentStore() error {
	switch c.Content.Store {
	case StoreMDX:
		if c.Content.Dir == "" {
			return errors.New("mdx store requires CONTENT_DIR")
		}
	case StorePostgres, StoreSQLite:
		if c.Content.DSN == "" {
			return fmt.Errorf("%w: %s", ErrMissingCredential, "DATABASE_DSN")
		}
	case StoreDynamoDB:
		if c.Content.DynamoTable == "" {
			return fmt.Errorf("%w: %s", ErrMissingCredential, "DYNAMODB_TABLE")
		}
	default:
		return fmt.Errorf("unknown content store %q", c.Content.Store)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	setBool(&c.Scheduler.Enabled, "SCHEDULER_ENABLED")
	setString(&c.Scheduler.CronExpression, "CRON_EXPRESSION")
	setString(&c.Scheduler.Timezone, "TIMEZONE")

	setList(&c.Search.Providers, "SEARCH_PROVIDERS")
	setList(&c.Search.Feeds.URLs, "FEED_URLS")
	setInt(&c.Search.MaxSearchesPerRun, "MAX_SEARCHES_PER_RUN")
	setDuration(&c.Search.SearchDelay, "SEARCH_DELAY")
	setString(&c.Search.Perplexity.APIKey, "PERPLEXITY_API_KEY")
	setString(&c.Search.Perplexity.Model, "PERPLEXITY_MODEL")

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	switch c.LLM.Provider {
	case LLMOpenAI:
		setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	case LLMGemini:
		setString(&c.LLM.APIKey, "GEMINI_API_KEY")
	}
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.SimilarityModel, "LLM_SIMILARITY_MODEL")
	setDuration(&c.LLM.ExtractionDelay, "EXTRACTION_DELAY")

	setInt(&c.Validation.MinROIScore, "MIN_ROI_SCORE")
	setInt(&c.Validation.MinTrustScore, "MIN_TRUST_SCORE")
	setInt(&c.Validation.MinContentLength, "MIN_CONTENT_LENGTH")
	setFloat(&c.Validation.SimilarityThreshold, "SIMILARITY_THRESHOLD")
	setInt(&c.Validation.CredibilityROIScore, "CREDIBILITY_ROI_SCORE")
	setInt(&c.Validation.MinCredibilityConfidence, "MIN_CREDIBILITY_CONFIDENCE")

	setInt(&c.Publishing.AutoPublishThreshold, "AUTO_PUBLISH_THRESHOLD")
	setInt(&c.Publishing.MaxPublishesPerRun, "MAX_PUBLISHES_PER_RUN")
	setDuration(&c.Publishing.PublishDelay, "PUBLISH_DELAY")

	setString(&c.Content.Store, "CONTENT_STORE")
	setString(&c.Content.Dir, "CONTENT_DIR")
	setString(&c.Content.DSN, "DATABASE_DSN")
	setString(&c.Content.DynamoTable, "DYNAMODB_TABLE")
	setString(&c.Content.DynamoRegion, "AWS_REGION")
	setString(&c.Content.AWSEndpoint, "AWS_ENDPOINT")

	setBool(&c.Git.Enabled, "GIT_ENABLED")
	setBool(&c.Git.Push, "GIT_PUSH")
	setString(&c.Git.Remote, "GIT_REMOTE")
	setString(&c.Git.Branch, "GIT_BRANCH")

	setString(&c.Notifications.Slack.WebhookURL, "SLACK_WEBHOOK_URL")
	setString(&c.Notifications.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Notifications.Telegram.ChatID, "TELEGRAM_CHAT_ID")

	setString(&c.Lock.Path, "LOCK_FILE")
	setString(&c.Lock.ValkeyAddress, "VALKEY_ADDRESS")
	setString(&c.Lock.ValkeyPassword, "VALKEY_PASSWORD")

	setString(&c.Brand.Name, "BRAND_NAME")
	setString(&c.Brand.SiteURL, "SITE_URL")
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("config: unknown timezone, reverting to default", "timezone", tz, "default", defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config: ignoring non-integer value", "key", key, "value", v)
		return
	}
	*dst = n
}

func setFloat(dst *float64, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config: ignoring non-numeric value", "key", key, "value", v)
		return
	}
	*dst = f
}

func setBool(dst *bool, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config: ignoring non-boolean value", "key", key, "value", v)
		return
	}
	*dst = b
}

// setDuration accepts Go durations ("2s") or bare milliseconds ("2000").
func setDuration(dst *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if ms, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config: ignoring invalid duration", "key", key, "value", v)
		return
	}
	*dst = d
}

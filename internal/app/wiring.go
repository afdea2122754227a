package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"IdeaScout/internal/config"
	"IdeaScout/internal/infrastructure/gitvcs"
	"IdeaScout/internal/infrastructure/llm"
	"IdeaScout/internal/infrastructure/lock"
	"IdeaScout/internal/infrastructure/notify"
	"IdeaScout/internal/infrastructure/search"
	"IdeaScout/internal/infrastructure/storage"
	"IdeaScout/internal/ports"
	"IdeaScout/internal/usecase"
)

// contentStore is what every storage backend offers.
type contentStore interface {
	ports.ContentStore
	ports.ContentLister
}

func buildProviders(cfg config.Config, logger *slog.Logger) ([]ports.SearchProvider, error) {
	registry := search.NewRegistry()
	registry.Register(search.NewPerplexityProvider(search.PerplexityConfig{
		Endpoint:      cfg.Search.Perplexity.Endpoint,
		Model:         cfg.Search.Perplexity.Model,
		APIKey:        cfg.Search.Perplexity.APIKey,
		RecencyFilter: cfg.Search.Perplexity.RecencyFilter,
	}, nil))
	registry.Register(search.NewFeedProvider(search.FeedConfig{
		URLs:     cfg.Search.Feeds.URLs,
		MaxItems: cfg.Search.Feeds.MaxItems,
		MaxAge:   cfg.Search.Feeds.MaxAge,
	}, nil, logger))
	registry.Register(search.NewArxivProvider(nil, cfg.Search.Arxiv.BaseURL, cfg.Search.Arxiv.MaxResults))

	return registry.Select(cfg.Search.Providers)
}

func buildLLM(ctx context.Context, cfg config.Config) (ports.LLM, error) {
	models := llm.Models{
		Default: cfg.LLM.Model,
		PerTask: map[ports.LLMTask]string{ports.TaskSimilarity: cfg.LLM.SimilarityModel},
	}
	switch cfg.LLM.Provider {
	case config.LLMGemini:
		return llm.NewGeminiClient(ctx, llm.GeminiConfig{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Models: models})
	case config.LLMOpenAI:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Models:      models,
			Temperature: 0.3,
			Timeout:     cfg.LLM.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// buildStore returns the configured store and a closer for database handles.
func buildStore(ctx context.Context, cfg config.Config) (contentStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Content.Store {
	case config.StoreMDX:
		store, err := storage.NewMDXStore(cfg.Content.Dir)
		return store, noop, err
	case config.StorePostgres, config.StoreSQLite:
		dialect := storage.DialectPostgres
		if cfg.Content.Store == config.StoreSQLite {
			dialect = storage.DialectSQLite
		}
		store, err := storage.OpenSQLStore(ctx, dialect, cfg.Content.DSN)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case config.StoreDynamoDB:
		client, err := storage.NewDynamoClient(ctx, storage.DynamoConfig{
			Table:    cfg.Content.DynamoTable,
			Region:   cfg.Content.DynamoRegion,
			Endpoint: cfg.Content.AWSEndpoint,
		})
		if err != nil {
			return nil, noop, err
		}
		store, err := storage.NewDynamoStore(client, cfg.Content.DynamoTable)
		return store, noop, err
	default:
		return nil, noop, fmt.Errorf("unknown content store %q", cfg.Content.Store)
	}
}

func buildVCS(cfg config.Config) (ports.VersionControl, error) {
	if !cfg.Git.Enabled || cfg.Content.Store != config.StoreMDX {
		return nil, nil
	}
	contentPath, err := filepath.Abs(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve content dir: %w", err)
	}
	repo, err := gitvcs.New(gitvcs.Config{
		RepoDir:     cfg.Git.RepoDir,
		ContentPath: contentPath,
		Remote:      cfg.Git.Remote,
		Branch:      cfg.Git.Branch,
		AuthorName:  cfg.Git.AuthorName,
		AuthorEmail: cfg.Git.AuthorEmail,
		Push:        cfg.Git.Push,
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func buildNotifier(cfg config.Config, logger *slog.Logger) ports.Notifier {
	var channels notify.Multi
	if url := cfg.Notifications.Slack.WebhookURL; url != "" {
		channels = append(channels, notify.NewSlackNotifier(url, cfg.Notifications.Slack.IdeasURL, &http.Client{}))
	}
	tg := cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		channels = append(channels, notify.NewTelegramNotifier(tg.BaseURL, tg.BotToken, tg.ChatID))
	}
	if len(channels) == 0 {
		logger.Info("no notification channels configured, reports go to the log")
		return notify.NewLogNotifier(logger)
	}
	return channels
}

// buildLock prefers the shared Valkey lock when an address is configured.
func buildLock(cfg config.Config) (ports.RunLock, func() error, error) {
	if cfg.Lock.ValkeyAddress == "" {
		return lock.NewFileLock(cfg.Lock.Path, cfg.Lock.TTL), func() error { return nil }, nil
	}
	client, err := lock.NewValkeyClient(lock.ValkeyConfig{
		Address:  cfg.Lock.ValkeyAddress,
		Password: cfg.Lock.ValkeyPassword,
	})
	if err != nil {
		return nil, nil, err
	}
	return lock.NewValkeyLock(client, cfg.Lock.Key, cfg.Lock.TTL), func() error {
		client.Close()
		return nil
	}, nil
}

func discoveryPolicy(cfg config.Config) usecase.DiscoveryPolicy {
	return usecase.DiscoveryPolicy{
		Queries:           cfg.Search.Queries,
		MaxSearchesPerRun: cfg.Search.MaxSearchesPerRun,
		SearchDelay:       cfg.Search.SearchDelay,
	}
}

func validationPolicy(cfg config.Config) usecase.ValidationPolicy {
	v := cfg.Validation
	return usecase.ValidationPolicy{
		MinROIScore:              v.MinROIScore,
		MinTrustScore:            v.MinTrustScore,
		MinContentLength:         v.MinContentLength,
		SimilarityThreshold:      v.SimilarityThreshold,
		CredibilityROIScore:      v.CredibilityROIScore,
		MinCredibilityConfidence: v.MinCredibilityConfidence,
		RequireNumbers:           v.RequireNumbers,
		RequireCompanyName:       v.RequireCompanyName,
	}
}

func publishingPolicy(cfg config.Config) usecase.PublishingPolicy {
	return usecase.PublishingPolicy{
		MaxPublishesPerRun:   cfg.Publishing.MaxPublishesPerRun,
		AutoPublishThreshold: cfg.Publishing.AutoPublishThreshold,
		PublishDelay:         cfg.Publishing.PublishDelay,
	}
}

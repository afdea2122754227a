package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"IdeaScout/internal/document"
	"IdeaScout/internal/ports"
)

const (
	defaultFeedItems = 10
	defaultFeedTTL   = 30 * time.Minute
	defaultFeedAge   = 365 * 24 * time.Hour
)

// FeedConfig configures the RSS backend.
type FeedConfig struct {
	URLs     []string
	MaxItems int
	MaxAge   time.Duration
	CacheTTL time.Duration
}

type cachedFeed struct {
	feed      *gofeed.Feed
	fetchedAt time.Time
}

// FeedProvider matches query keywords against publisher RSS feeds.
type FeedProvider struct {
	cfg    FeedConfig
	client *http.Client
	parser *gofeed.Parser
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cachedFeed
}

var _ ports.SearchProvider = (*FeedProvider)(nil)

// NewFeedProvider builds a provider over the configured feed URLs.
func NewFeedProvider(cfg FeedConfig, client *http.Client, logger *slog.Logger) *FeedProvider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = defaultFeedItems
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultFeedAge
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultFeedTTL
	}
	return &FeedProvider{
		cfg:    cfg,
		client: client,
		parser: gofeed.NewParser(),
		logger: logger.With("component", "feeds"),
		now:    time.Now,
		cache:  map[string]cachedFeed{},
	}
}

// Name identifies the provider inside the registry.
func (f *FeedProvider) Name() string {
	return "feeds"
}

// Search returns recent feed items whose titles mention any query keyword.
func (f *FeedProvider) Search(ctx context.Context, query string, _ []string) ([]ports.Citation, error) {
	keywords := strings.Fields(strings.ToLower(query))
	cutoff := f.now().Add(-f.cfg.MaxAge)

	var out []ports.Citation
	for _, feedURL := range f.cfg.URLs {
		feed, err := f.fetch(ctx, feedURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Warn("feed fetch failed", "url", feedURL, "err", err)
			continue
		}

		for _, item := range feed.Items {
			if len(out) >= f.cfg.MaxItems {
				return out, nil
			}
			if item == nil || item.Link == "" || !matchesAnyKeyword(strings.ToLower(item.Title), keywords) {
				continue
			}

			published := item.PublishedParsed
			if published == nil {
				published = item.UpdatedParsed
			}
			if published != nil && published.Before(cutoff) {
				continue
			}

			body := item.Content
			if body == "" {
				body = item.Description
			}

			citation := ports.Citation{
				URL:     item.Link,
				Title:   strings.TrimSpace(item.Title),
				Content: document.PlainText(body),
			}
			if published != nil {
				citation.PublishedDate = published.UTC().Format("2006-01-02")
			}
			out = append(out, citation)
		}
	}
	return out, nil
}

func (f *FeedProvider) fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	f.mu.Lock()
	cached, ok := f.cache[feedURL]
	f.mu.Unlock()
	if ok && f.now().Sub(cached.fetchedAt) < f.cfg.CacheTTL {
		return cached.feed, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "IdeaScout/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	f.mu.Lock()
	f.cache[feedURL] = cachedFeed{feed: feed, fetchedAt: f.now()}
	f.mu.Unlock()
	return feed, nil
}

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "from": {}, "case": {}, "study": {}, "studies": {},
}

// matchesAnyKeyword ignores stopwords and keywords shorter than three characters.
func matchesAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if _, skip := stopwords[kw]; skip || len(kw) < 3 {
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

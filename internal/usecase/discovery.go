package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

const fallbackSourceTitle = "Automation Case Study"

// DiscoveryPolicy bounds how much searching a run may do.
type DiscoveryPolicy struct {
	Queries           []string
	MaxSearchesPerRun int
	SearchDelay       time.Duration
}

// Discoverer turns search queries into trusted, deduplicated sources.
type Discoverer struct {
	providers []ports.SearchProvider
	trust     domain.TrustTable
	policy    DiscoveryPolicy
	sleep     Sleeper
	now       func() time.Time
	logger    *slog.Logger
}

// NewDiscoverer wires search providers with the trusted-domain table.
func NewDiscoverer(providers []ports.SearchProvider, trust domain.TrustTable, policy DiscoveryPolicy, opts ...Option) *Discoverer {
	o := buildOptions("discovery", opts)
	return &Discoverer{
		providers: providers,
		trust:     trust,
		policy:    policy,
		sleep:     o.sleep,
		now:       o.now,
		logger:    o.logger,
	}
}

// Discover runs the capped query list against every provider.
// Provider failures are logged and skipped; only cancellation is returned.
func (d *Discoverer) Discover(ctx context.Context) ([]domain.RawSource, error) {
	queries := d.policy.Queries
	if limit := d.policy.MaxSearchesPerRun; limit > 0 && len(queries) > limit {
		queries = queries[:limit]
	}

	d.logger.Info("discovery started", "queries", len(queries), "providers", len(d.providers), "trusted_domains", d.trust.Len())

	seen := make(map[string]struct{})
	var sources []domain.RawSource
	for i, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discover: %w", err)
		}

		found := 0
		for _, provider := range d.providers {
			citations, err := provider.Search(ctx, query, d.trust.Domains())
			if err != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("discover: %w", ctx.Err())
				}
				d.logger.Warn("search failed", "provider", provider.Name(), "query", query, "error", err)
				continue
			}

			for _, citation := range citations {
				source, ok := d.toSource(citation)
				if !ok {
					continue
				}
				if _, dup := seen[source.URL]; dup {
					continue
				}
				seen[source.URL] = struct{}{}
				sources = append(sources, source)
				found++
			}
		}
		d.logger.Info("query done", "index", i+1, "query", query, "new_sources", found)

		if i < len(queries)-1 {
			if err := d.sleep(ctx, d.policy.SearchDelay); err != nil {
				return nil, fmt.Errorf("discover: %w", err)
			}
		}
	}

	d.logger.Info("discovery finished", "unique_sources", len(sources))
	return sources, nil
}

func (d *Discoverer) toSource(c ports.Citation) (domain.RawSource, bool) {
	host, err := domain.DomainFromURL(c.URL)
	if err != nil {
		d.logger.Warn("invalid citation url", "url", c.URL, "error", err)
		return domain.RawSource{}, false
	}
	if !d.trust.Allowed(host) {
		d.logger.Debug("skipping untrusted domain", "domain", host)
		return domain.RawSource{}, false
	}

	title := c.Title
	if title == "" {
		title = fallbackSourceTitle
	}
	published := c.PublishedDate
	if published == "" {
		published = d.now().UTC().Format("2006-01-02")
	}

	return domain.RawSource{
		URL:           c.URL,
		Title:         title,
		Content:       c.Content,
		Domain:        host,
		TrustScore:    d.trust.Score(host),
		PublishedDate: published,
	}, true
}

package domain

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// DefaultTrustScore is used for allowed domains missing from the score table.
const DefaultTrustScore = 5

// TrustTier groups domains that share a trust score.
type TrustTier struct {
	Name    string
	Score   int
	Domains []string
}

// TrustTable is the immutable allow-list with per-domain trust scores.
type TrustTable struct {
	scores map[string]int
}

// NewTrustTable flattens tiers; a domain listed twice keeps the first score.
func NewTrustTable(tiers []TrustTier) TrustTable {
	scores := make(map[string]int)
	for _, tier := range tiers {
		for _, d := range tier.Domains {
			d = normalizeHost(d)
			if d == "" {
				continue
			}
			if _, ok := scores[d]; ok {
				continue
			}
			scores[d] = tier.Score
		}
	}
	return TrustTable{scores: scores}
}

// Allowed reports whether the domain is on the allow-list.
func (t TrustTable) Allowed(domain string) bool {
	_, ok := t.scores[normalizeHost(domain)]
	return ok
}

// Score returns the trust score for an exact domain match or DefaultTrustScore.
func (t TrustTable) Score(domain string) int {
	if score, ok := t.scores[normalizeHost(domain)]; ok && score > 0 {
		return score
	}
	return DefaultTrustScore
}

// Domains returns the allow-list sorted alphabetically.
func (t TrustTable) Domains() []string {
	out := make([]string, 0, len(t.scores))
	for d := range t.scores {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Len is the number of allowed domains.
func (t TrustTable) Len() int {
	return len(t.scores)
}

// DomainFromURL returns the lower-cased host without a leading "www.".
func DomainFromURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	host := normalizeHost(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}
	return host, nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"IdeaScout/internal/ports"
)

const (
	arxivBaseURL       = "https://arxiv.org"
	arxivPageSize      = 25
	defaultArxivResult = 5
)

var submittedExpr = regexp.MustCompile(`Submitted\s+(\d{1,2} [A-Za-z]+,? \d{4})`)

// ArxivProvider runs a full-text arXiv search and returns the newest matches.
type ArxivProvider struct {
	client     *http.Client
	baseURL    string
	maxResults int
}

var _ ports.SearchProvider = (*ArxivProvider)(nil)

// NewArxivProvider wires an HTTP client; maxResults defaults to 5.
func NewArxivProvider(client *http.Client, baseURL string, maxResults int) *ArxivProvider {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = arxivBaseURL
	}
	if maxResults <= 0 {
		maxResults = defaultArxivResult
	}
	return &ArxivProvider{client: client, baseURL: strings.TrimSuffix(baseURL, "/"), maxResults: maxResults}
}

// Name identifies the provider inside the registry.
func (a *ArxivProvider) Name() string {
	return "arxiv"
}

// Search ignores the allow-list; arXiv results carry arxiv.org as their domain.
func (a *ArxivProvider) Search(ctx context.Context, query string, _ []string) ([]ports.Citation, error) {
	pageURL, err := buildSearchURL(a.baseURL, query)
	if err != nil {
		return nil, err
	}

	doc, err := a.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("arxiv search %q: %w", query, err)
	}

	var results []ports.Citation
	doc.Find("li.arxiv-result").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		citation, ok := parseResult(li, a.baseURL)
		if ok {
			results = append(results, citation)
		}
		return len(results) < a.maxResults
	})
	return results, nil
}

func (a *ArxivProvider) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "IdeaScout/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func parseResult(li *goquery.Selection, baseURL string) (ports.Citation, bool) {
	href, _ := li.Find("p.list-title a").First().Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return ports.Citation{}, false
	}
	if !strings.HasPrefix(href, "http") {
		href = baseURL + "/" + strings.TrimPrefix(href, "/")
	}

	title := collapse(li.Find("p.title").First().Text())
	if title == "" {
		return ports.Citation{}, false
	}

	abstract := li.Find("span.abstract-full").First().Clone()
	abstract.Find("a").Remove()
	summary := collapse(abstract.Text())
	if summary == "" {
		summary = collapse(li.Find("span.abstract-short").First().Text())
	}

	published := ""
	if match := submittedExpr.FindStringSubmatch(li.Find("p.is-size-7").Text()); len(match) == 2 {
		value := strings.ReplaceAll(match[1], ",", "")
		if parsed, err := time.Parse("2 January 2006", value); err == nil {
			published = parsed.Format("2006-01-02")
		}
	}

	return ports.Citation{
		URL:           href,
		Title:         title,
		Content:       summary,
		PublishedDate: published,
	}, true
}

func buildSearchURL(base, query string) (string, error) {
	parsed, err := url.Parse(base + "/search/")
	if err != nil {
		return "", fmt.Errorf("invalid arxiv url %s: %w", base, err)
	}

	q := parsed.Query()
	q.Set("query", query)
	q.Set("searchtype", "all")
	q.Set("order", "-announced_date_first")
	q.Set("size", strconv.Itoa(arxivPageSize))
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

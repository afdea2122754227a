package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"IdeaScout/internal/document"
	"IdeaScout/internal/ports"
)

const (
	defaultPerplexityEndpoint = "https://api.perplexity.ai/chat/completions"
	defaultPerplexityModel    = "sonar-pro"
	defaultRecencyFilter      = "year"
	fallbackTitle             = "Automation Case Study"
)

var (
	listMarker = regexp.MustCompile(`^\d+\.\s*`)
	headMarker = regexp.MustCompile(`^#+\s*`)
	fileSuffix = regexp.MustCompile(`\.\w+$`)
)

// PerplexityConfig configures the answer-engine search backend.
type PerplexityConfig struct {
	Endpoint      string
	Model         string
	APIKey        string
	RecencyFilter string
	Timeout       time.Duration
}

// PerplexityProvider queries an answer engine and returns its citations.
type PerplexityProvider struct {
	endpoint   string
	model      string
	apiKey     string
	recency    string
	httpClient *http.Client
}

var _ ports.SearchProvider = (*PerplexityProvider)(nil)

// NewPerplexityProvider builds a client from configuration.
func NewPerplexityProvider(cfg PerplexityConfig, client *http.Client) *PerplexityProvider {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	p := &PerplexityProvider{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		recency:    cfg.RecencyFilter,
		httpClient: client,
	}
	if p.endpoint == "" {
		p.endpoint = defaultPerplexityEndpoint
	}
	if p.model == "" {
		p.model = defaultPerplexityModel
	}
	if p.recency == "" {
		p.recency = defaultRecencyFilter
	}
	return p
}

// Name identifies the provider inside the registry.
func (p *PerplexityProvider) Name() string {
	return "perplexity"
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model               string              `json:"model"`
	Messages            []perplexityMessage `json:"messages"`
	Temperature         float64             `json:"temperature"`
	ReturnCitations     bool                `json:"return_citations"`
	SearchRecencyFilter string              `json:"search_recency_filter"`
}

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations     []string `json:"citations"`
	SearchResults []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Date  string `json:"date"`
	} `json:"search_results"`
}

// Search asks for recent case studies and maps every citation to a Citation.
func (p *PerplexityProvider) Search(ctx context.Context, query string, allowed []string) ([]ports.Citation, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("perplexity provider misconfigured: missing api key")
	}

	body, err := json.Marshal(perplexityRequest{
		Model: p.model,
		Messages: []perplexityMessage{
			{Role: "system", Content: systemPrompt(allowed)},
			{Role: "user", Content: userPrompt(query)},
		},
		Temperature:         0.2,
		ReturnCitations:     true,
		SearchRecencyFilter: p.recency,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal perplexity payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("perplexity error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode perplexity response: %w", err)
	}

	answer := ""
	if len(decoded.Choices) > 0 {
		answer = decoded.Choices[0].Message.Content
	}
	return parseCitations(answer, decoded), nil
}

func parseCitations(answer string, resp perplexityResponse) []ports.Citation {
	content := document.MarkdownText(answer)

	type meta struct{ title, date string }
	known := make(map[string]meta, len(resp.SearchResults))
	urls := append([]string(nil), resp.Citations...)
	for _, r := range resp.SearchResults {
		known[r.URL] = meta{title: strings.TrimSpace(r.Title), date: r.Date}
		if len(resp.Citations) == 0 {
			urls = append(urls, r.URL)
		}
	}

	out := make([]ports.Citation, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		m := known[u]
		title := m.title
		if title == "" {
			title = titleFromAnswer(answer, u)
		}
		out = append(out, ports.Citation{
			URL:           u,
			Title:         title,
			Content:       content,
			PublishedDate: normalizeDate(m.date),
		})
	}
	return out
}

// titleFromAnswer uses the line above the one mentioning the citation, then the URL path.
func titleFromAnswer(answer, rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fallbackTitle
	}

	lines := strings.Split(answer, "\n")
	for i, line := range lines {
		if !strings.Contains(line, rawURL) && (parsed.Hostname() == "" || !strings.Contains(line, parsed.Hostname())) {
			continue
		}
		if i > 0 && len(lines[i-1]) > 10 {
			title := listMarker.ReplaceAllString(strings.TrimSpace(lines[i-1]), "")
			title = headMarker.ReplaceAllString(title, "")
			title = strings.Trim(strings.TrimSpace(title), "*")
			if title != "" {
				return strings.TrimSpace(title)
			}
		}
	}

	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return fallbackTitle
	}
	last := strings.ReplaceAll(segments[len(segments)-1], "-", " ")
	last = strings.TrimSpace(fileSuffix.ReplaceAllString(last, ""))
	if last == "" {
		return fallbackTitle
	}
	return last
}

func normalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "January 2, 2006", "2 January 2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func systemPrompt(allowed []string) string {
	return fmt.Sprintf(`You are a research assistant finding automation case studies from credible sources only.
Only cite sources from these domains: %s.
Focus on recent case studies with quantifiable ROI data.`, strings.Join(allowed, ", "))
}

func userPrompt(query string) string {
	return query + `

Find 3-5 recent case studies or articles about automation implementations with clear ROI metrics.
For each, provide:
1. Article title
2. Source URL
3. Brief summary (2-3 sentences) highlighting the ROI/impact
4. Publication date (if available)

Only include sources from trusted business/tech publications, consulting firms, or major tech vendors.`
}

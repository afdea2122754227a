package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

// SlackNotifier posts Block Kit messages to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	ideasURL   string
	client     *http.Client
}

var _ ports.Notifier = (*SlackNotifier)(nil)

// NewSlackNotifier registers the webhook; ideasURL backs the "View Automation Ideas" button.
func NewSlackNotifier(webhookURL, ideasURL string, client *http.Client) *SlackNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SlackNotifier{webhookURL: webhookURL, ideasURL: ideasURL, client: client}
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type string    `json:"type"`
	Text slackText `json:"text"`
	URL  string    `json:"url,omitempty"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func plainText(text string) *slackText { return &slackText{Type: "plain_text", Text: text} }
func mrkdwn(text string) slackText { return slackText{Type: "mrkdwn", Text: text} }

func (n *SlackNotifier) message(r domain.RunReport) slackMessage {
	if r.Failed() {
		errText := mrkdwn("*Error:* " + r.Error)
		return slackMessage{
			Text: failedHeader,
			Blocks: []slackBlock{
				{Type: "header", Text: plainText(failedHeader)},
				{Type: "section", Text: &errText},
			},
		}
	}

	blocks := []slackBlock{
		{Type: "header", Text: plainText(summaryHeader)},
		{Type: "section", Fields: []slackText{
			mrkdwn(fmt.Sprintf("*Published:*\n%d new ideas", r.Stats.IdeasPublished)),
			mrkdwn(fmt.Sprintf("*Rejected:*\n%d ideas", r.Stats.IdeasRejected)),
			mrkdwn(fmt.Sprintf("*Duration:*\n%s min", durationMinutes(r))),
			mrkdwn(fmt.Sprintf("*Date:*\n%s", reportDate(r))),
		}},
	}
	if len(r.PublishedTitles) > 0 {
		text := mrkdwn("*✅ Published Ideas:*\n" + publishedList(r.PublishedTitles, plain))
		blocks = append(blocks, slackBlock{Type: "section", Text: &text})
	}
	if len(r.Stats.RejectionReasons) > 0 {
		text := mrkdwn("*❌ Top Rejection Reasons:*\n" + reasonList(r, plain))
		blocks = append(blocks, slackBlock{Type: "section", Text: &text})
	}
	if n.ideasURL != "" {
		blocks = append(blocks, slackBlock{Type: "actions", Elements: []slackElement{{
			Type: "button",
			Text: slackText{Type: "plain_text", Text: "View Automation Ideas"},
			URL:  n.ideasURL,
		}}})
	}
	return slackMessage{Text: summaryHeader, Blocks: blocks}
}

// Notify posts the report to the webhook.
func (n *SlackNotifier) Notify(ctx context.Context, r domain.RunReport) error {
	if n.webhookURL == "" {
		return fmt.Errorf("slack notifier misconfigured")
	}

	body, err := json.Marshal(n.message(r))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	return nil
}

package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier sends run summaries to a Telegram chat via bot API.
type TelegramNotifier struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier registers bot token and chat identifier; baseURL defaults to the public API.
func NewTelegramNotifier(baseURL, botToken, chatID string) *TelegramNotifier {
	if baseURL == "" {
		baseURL = telegramAPI
	}
	return &TelegramNotifier{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify posts a Markdown summary to Telegram.
func (n *TelegramNotifier) Notify(ctx context.Context, r domain.RunReport) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", EscapedSummary(r))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}
	return nil
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"IdeaScout/internal/ports"
)

// OpenAIConfig configures any OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Models      Models
	Temperature float32
	Timeout     time.Duration
}

// OpenAIClient implements ports.LLM with the chat completions API.
type OpenAIClient struct {
	client      *openai.Client
	models      Models
	temperature float32
}

var _ ports.LLM = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai client misconfigured: missing api key")
	}
	if cfg.Models.Default == "" {
		return nil, errors.New("openai client misconfigured: missing model")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		models:      cfg.Models,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends the system and user messages and returns the first choice, or "" when there is none.
func (c *OpenAIClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.models.For(req.Task),
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai %s completion: %w", req.Task, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"IdeaScout/internal/ports"
)

// GeminiConfig configures the Gemini API backend. BaseURL overrides the public endpoint.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Models  Models
}

// GeminiClient implements ports.LLM with the Gemini generate-content API.
type GeminiClient struct {
	client *genai.Client
	models Models
}

var _ ports.LLM = (*GeminiClient)(nil)

// NewGeminiClient connects to the Gemini API.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini client misconfigured: missing api key")
	}
	if cfg.Models.Default == "" {
		return nil, errors.New("gemini client misconfigured: missing model")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, models: cfg.Models}, nil
}

// Complete generates a single text response for the request. A reply without
// text, such as one whose token budget went to thinking, is returned as "".
func (c *GeminiClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(req.Prompt)}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.models.For(req.Task), contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini %s completion: %w", req.Task, err)
	}
	return result.Text(), nil
}

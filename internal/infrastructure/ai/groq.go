package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sitepulse/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// GroqClient talks to the Groq OpenAI-compatible chat completions API
type GroqClient struct {
	http   *resty.Client
	model  string
	logger *zap.Logger
}

// NewGroqClient creates a Groq completion client
func NewGroqClient(cfg config.AIConfig, logger *zap.Logger) *GroqClient {
	httpClient := resty.New().
		SetBaseURL(cfg.GroqBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &GroqClient{
		http:   httpClient,
		model:  cfg.GroqModel,
		logger: logger.Named("groq"),
	}
}

// Name returns the provider tag
func (c *GroqClient) Name() string {
	return "groq"
}

type groqRequest struct {
	Model    string        `json:"model"`
	Messages []groqMessage `json:"messages"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a prompt and returns the first choice's content
func (c *GroqClient) Complete(ctx context.Context, prompt, apiKey string) (string, error) {
	body := groqRequest{
		Model:    c.model,
		Messages: []groqMessage{{Role: "user", Content: prompt}},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("groq returned status %d", resp.StatusCode())
	}

	var payload groqResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", fmt.Errorf("decoding groq response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return payload.Choices[0].Message.Content, nil
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sitepulse/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// GeminiClient talks to the Gemini generateContent API
type GeminiClient struct {
	http   *resty.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClient creates a Gemini completion client
func NewGeminiClient(cfg config.AIConfig, logger *zap.Logger) *GeminiClient {
	httpClient := resty.New().
		SetBaseURL(cfg.GeminiBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &GeminiClient{
		http:   httpClient,
		model:  cfg.GeminiModel,
		logger: logger.Named("gemini"),
	}
}

// Name returns the provider tag
func (c *GeminiClient) Name() string {
	return "gemini"
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Complete sends a prompt and returns the first candidate's text
func (c *GeminiClient) Complete(ctx context.Context, prompt, apiKey string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetBody(body).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode())
	}

	var payload geminiResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}
	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return payload.Candidates[0].Content.Parts[0].Text, nil
}

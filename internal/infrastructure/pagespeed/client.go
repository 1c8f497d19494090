package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Client calls the PageSpeed Insights API
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a PageSpeed API client
func NewClient(cfg config.PageSpeedConfig, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		logger: logger.Named("pagespeed"),
	}
}

// apiResponse mirrors the subset of the PageSpeed Insights payload we read
type apiResponse struct {
	LighthouseResult struct {
		Categories map[string]struct {
			Score float64 `json:"score"`
		} `json:"categories"`
		Audits map[string]struct {
			ID           string   `json:"id"`
			Title        string   `json:"title"`
			Description  string   `json:"description"`
			Score        *float64 `json:"score"`
			NumericValue *float64 `json:"numericValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

// Analyze runs the scoring API against a target URL and maps the payload
// into a domain report along with the raw response blob.
func (c *Client) Analyze(ctx context.Context, targetURL, apiKey string, categories []string) (*audit.Report, json.RawMessage, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("url", targetURL).
		SetQueryParam("key", apiKey).
		SetQueryParamsFromValues(url.Values{"category": categories})

	resp, err := req.Get("/runPagespeed")
	if err != nil {
		return nil, nil, fmt.Errorf("pagespeed request failed: %w", err)
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("pagespeed returned status %d", resp.StatusCode())
	}

	var payload apiResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, nil, fmt.Errorf("decoding pagespeed response: %w", err)
	}

	report := &audit.Report{
		Performance:   payload.LighthouseResult.Categories["performance"].Score,
		Accessibility: payload.LighthouseResult.Categories["accessibility"].Score,
		BestPractices: payload.LighthouseResult.Categories["best-practices"].Score,
		SEO:           payload.LighthouseResult.Categories["seo"].Score,
	}
	for _, check := range payload.LighthouseResult.Audits {
		report.Checks = append(report.Checks, audit.Check{
			ID:           check.ID,
			Title:        check.Title,
			Description:  check.Description,
			Score:        check.Score,
			NumericValue: check.NumericValue,
		})
	}

	return report, resp.Body(), nil
}

// Probe verifies an API key with a minimal seo-only run against a stable
// public URL. Used by credential testing, not by audits.
func (c *Client) Probe(ctx context.Context, apiKey string) error {
	_, _, err := c.Analyze(ctx, "https://example.com", apiKey, []string{"seo"})
	return err
}

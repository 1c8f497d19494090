package pagespeed

import (
	"context"
	"encoding/json"

	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Outcome is the result of one scoring run
type Outcome struct {
	Report  *audit.Report
	Raw     json.RawMessage
	Runner  audit.Runner
	Issues  []audit.IssueDraft
	SeoOnly bool
}

// Score returns the audit's overall score: the SEO category score for
// SEO-only runs, otherwise the mean of the four category scores.
func (o *Outcome) Score() int {
	if o.SeoOnly {
		return audit.CategoryScore(o.Report.SEO)
	}
	return o.Report.OverallScore()
}

// Scorer dispatches an audit to the matching scoring strategy: the full
// multi-category strategy for pagespeed/lighthouse audits, the
// SEO-category-only strategy for seo audits. When no API key is available
// (caller-supplied or global) or the live call fails, scoring falls back
// to deterministic synthetic results so an audit never hangs or fails
// purely for lack of a credential.
type Scorer struct {
	client    *Client
	globalKey string
	logger    *zap.Logger
}

// NewScorer creates a scorer with an optional global fallback API key
func NewScorer(client *Client, cfg config.PageSpeedConfig, logger *zap.Logger) *Scorer {
	return &Scorer{
		client:    client,
		globalKey: cfg.APIKey,
		logger:    logger.Named("scorer"),
	}
}

// Score runs the strategy for the given audit type against a target URL.
// apiKey overrides the globally configured key when non-empty.
func (s *Scorer) Score(ctx context.Context, targetURL, apiKey string, auditType audit.Type) (*Outcome, error) {
	seoOnly := auditType == audit.TypeSEO

	key := apiKey
	if key == "" {
		key = s.globalKey
	}
	if key == "" {
		return s.mock(auditType, targetURL), nil
	}

	categories := []string{"performance", "accessibility", "best-practices", "seo"}
	if seoOnly {
		categories = []string{"seo"}
	}

	report, raw, err := s.client.Analyze(ctx, targetURL, key, categories)
	if err != nil {
		s.logger.Warn("Live scoring call failed, using mock results",
			zap.String("url", targetURL),
			zap.Error(err))
		return s.mock(auditType, targetURL), nil
	}

	return &Outcome{
		Report:  report,
		Raw:     raw,
		Runner:  audit.RunnerLive,
		Issues:  audit.DeriveIssues(report.Checks, seoOnly),
		SeoOnly: seoOnly,
	}, nil
}

package pagespeed

import (
	"context"
	"testing"
	"time"

	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScorer(globalKey string) *Scorer {
	cfg := config.PageSpeedConfig{
		BaseURL: "http://127.0.0.1:1", // unroutable; live calls must fail fast
		APIKey:  globalKey,
		Timeout: 200 * time.Millisecond,
	}
	return NewScorer(NewClient(cfg, zap.NewNop()), cfg, zap.NewNop())
}

func TestScorer_MockFallbackWithoutKey(t *testing.T) {
	scorer := newTestScorer("")

	outcome, err := scorer.Score(context.Background(), "https://example.com", "", audit.TypePageSpeed)

	require.NoError(t, err)
	assert.Equal(t, audit.RunnerMock, outcome.Runner)
	assert.NotEmpty(t, outcome.Issues)
	assert.NotEmpty(t, outcome.Raw)
	assert.False(t, outcome.SeoOnly)

	score := outcome.Score()
	assert.GreaterOrEqual(t, score, 70)
	assert.LessOrEqual(t, score, 100)
}

func TestScorer_MockFallbackOnLiveFailure(t *testing.T) {
	scorer := newTestScorer("global-key")

	outcome, err := scorer.Score(context.Background(), "https://example.com", "", audit.TypeLighthouse)

	require.NoError(t, err)
	assert.Equal(t, audit.RunnerMock, outcome.Runner)
}

func TestScorer_SeoOnlyStrategy(t *testing.T) {
	scorer := newTestScorer("")

	outcome, err := scorer.Score(context.Background(), "https://example.com", "", audit.TypeSEO)

	require.NoError(t, err)
	assert.True(t, outcome.SeoOnly)
	require.NotEmpty(t, outcome.Issues)
	for _, issue := range outcome.Issues {
		assert.Equal(t, audit.CategorySEO, issue.Category)
	}
	assert.Equal(t, audit.CategoryScore(outcome.Report.SEO), outcome.Score())
}

func TestScorer_MockSeveritiesSpanThresholds(t *testing.T) {
	scorer := newTestScorer("")

	outcome, err := scorer.Score(context.Background(), "https://example.com", "", audit.TypePageSpeed)
	require.NoError(t, err)

	severities := map[audit.Severity]bool{}
	for _, issue := range outcome.Issues {
		severities[issue.Severity] = true
	}
	assert.True(t, severities[audit.SeverityCritical])
	assert.True(t, severities[audit.SeverityHigh])
	assert.True(t, severities[audit.SeverityMedium])
}

package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// Well-known metric keys for monthly metered events
const (
	// MetricSeoRuns counts audit executions per month
	MetricSeoRuns = "seo_runs_month"

	// MetricAiFixes counts AI fix generations per month
	MetricAiFixes = "ai_fixes_month"
)

// MetricKeyForFeature derives the conventional monthly metric key
// for a feature (e.g. "seo" -> "seo_runs_month").
func MetricKeyForFeature(featureKey string) string {
	return featureKey + "_runs_month"
}

// Period is a metering window. Boundaries are calendar months:
// the first day of the month at 00:00 through the last day.
type Period struct {
	Start time.Time
	End   time.Time
}

// CurrentMonth returns the calendar-month period containing the given time
func CurrentMonth(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Period{Start: start, End: end}
}

// UsageLog is one accumulated metered-event row.
// Exactly one row exists per (tenant, metric, period); repeated increments
// within the period accumulate into the same row.
type UsageLog struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	MetricKey   string
	Value       int64
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// NewUsageLog creates a usage log row for a metering window
func NewUsageLog(tenantID uuid.UUID, metricKey string, period Period, value int64) (*UsageLog, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Tenant ID cannot be empty")
	}
	if metricKey == "" {
		return nil, shared.NewInvalidInputError("Metric key cannot be empty")
	}
	if value < 0 {
		return nil, shared.NewInvalidInputError("Usage value cannot be negative")
	}

	return &UsageLog{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		MetricKey:   metricKey,
		Value:       value,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
	}, nil
}

// Add accumulates an amount into the row
func (l *UsageLog) Add(amount int64) {
	l.Value += amount
	l.Touch()
}

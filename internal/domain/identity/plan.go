package identity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// Plan represents a priced subscription tier.
// AllowedFeatures defines default feature access; Quotas defines monthly
// metric ceilings keyed by the literal metric key (e.g. "seo_runs_month").
type Plan struct {
	shared.BaseAggregateRoot
	Code            string          // Unique billing code
	Key             string          // Unique machine-readable key (e.g. "free", "pro")
	Name            string          // Display name
	MonthlyPrice    decimal.Decimal // Price per month
	AnnualPrice     decimal.Decimal // Price per year
	Currency        string          // ISO currency code
	IsActive        bool            // Whether the plan can be assigned to tenants
	AllowedFeatures map[string]bool // Feature key -> enabled by default
	Quotas          map[string]int  // Metric key -> monthly limit; absence means unlimited
}

// NewPlan creates a new plan
func NewPlan(code, key, name string, monthlyPrice, annualPrice decimal.Decimal, currency string) (*Plan, error) {
	if code == "" {
		return nil, shared.NewInvalidInputError("Plan code cannot be empty")
	}
	if key == "" {
		return nil, shared.NewInvalidInputError("Plan key cannot be empty")
	}
	if name == "" {
		return nil, shared.NewInvalidInputError("Plan name cannot be empty")
	}
	if monthlyPrice.IsNegative() || annualPrice.IsNegative() {
		return nil, shared.NewInvalidInputError("Plan prices cannot be negative")
	}
	if currency == "" {
		currency = "USD"
	}

	return &Plan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Key:               key,
		Name:              name,
		MonthlyPrice:      monthlyPrice,
		AnnualPrice:       annualPrice,
		Currency:          currency,
		IsActive:          true,
		AllowedFeatures:   make(map[string]bool),
		Quotas:            make(map[string]int),
	}, nil
}

// AllowsFeature returns true if the plan enables the feature by default
func (p *Plan) AllowsFeature(featureKey string) bool {
	if p.AllowedFeatures == nil {
		return false
	}
	return p.AllowedFeatures[featureKey]
}

// QuotaLimit returns the monthly limit for a metric key and whether one is defined.
// An undefined limit means the metric is unlimited for this plan.
func (p *Plan) QuotaLimit(metricKey string) (int, bool) {
	if p.Quotas == nil {
		return 0, false
	}
	limit, ok := p.Quotas[metricKey]
	return limit, ok
}

// SetFeature sets the default enablement of a feature
func (p *Plan) SetFeature(featureKey string, enabled bool) {
	if p.AllowedFeatures == nil {
		p.AllowedFeatures = make(map[string]bool)
	}
	p.AllowedFeatures[featureKey] = enabled
	p.UpdatedAt = time.Now()
}

// SetQuota sets the monthly limit for a metric key
func (p *Plan) SetQuota(metricKey string, limit int) error {
	if limit < 0 {
		return shared.NewInvalidInputError("Quota limit cannot be negative")
	}
	if p.Quotas == nil {
		p.Quotas = make(map[string]int)
	}
	p.Quotas[metricKey] = limit
	p.UpdatedAt = time.Now()
	return nil
}

// Activate makes the plan assignable
func (p *Plan) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}

// Deactivate retires the plan from new assignments
func (p *Plan) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

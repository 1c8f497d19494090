package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// QuotaCheckResult describes how much of a metered allowance remains.
type QuotaCheckResult struct {
	Allowed      bool   `json:"allowed"`
	MetricKey    string `json:"metric_key"`
	CurrentUsage int64  `json:"current_usage"`
	QuotaLimit   int64  `json:"quota_limit"` // -1 for unlimited
	QuotaLeft    int64  `json:"quota_left"`  // -1 for unlimited
}

// UsageMeter records consumption of metered, per-month allowances such as
// audit runs. The limit check and the increment are a single storage-level
// operation, so racing requests cannot jointly overshoot a quota.
type UsageMeter struct {
	usageLogs  billing.UsageLogRepository
	tenantRepo identity.TenantRepository
	planRepo   identity.PlanRepository
	logger     *zap.Logger

	now func() time.Time
}

// NewUsageMeter creates a new UsageMeter
func NewUsageMeter(
	usageLogs billing.UsageLogRepository,
	tenantRepo identity.TenantRepository,
	planRepo identity.PlanRepository,
	logger *zap.Logger,
) *UsageMeter {
	return &UsageMeter{
		usageLogs:  usageLogs,
		tenantRepo: tenantRepo,
		planRepo:   planRepo,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Increment consumes amount units of a metric for the current calendar
// month. It returns a QUOTA_EXCEEDED error when the increment would push
// the counter past the plan's limit.
func (m *UsageMeter) Increment(ctx context.Context, tenantID uuid.UUID, metricKey string, amount int64) error {
	if amount <= 0 {
		return shared.NewInvalidInputError("amount must be positive")
	}

	limit, err := m.limitFor(ctx, tenantID, metricKey)
	if err != nil {
		return err
	}

	period := billing.CurrentMonth(m.now())
	applied, err := m.usageLogs.Accumulate(ctx, tenantID, metricKey, period, amount, limit)
	if err != nil {
		return err
	}
	if !applied {
		m.logger.Info("Metered quota refused",
			zap.String("tenant_id", tenantID.String()),
			zap.String("metric_key", metricKey),
			zap.Int64("amount", amount),
			zap.Int64("limit", limit))
		return shared.NewQuotaExceededError("monthly quota exhausted for " + metricKey)
	}
	return nil
}

// CheckQuota reports the state of a metered allowance without consuming it.
// The answer is advisory: only Increment's storage-level check is
// authoritative under concurrency.
func (m *UsageMeter) CheckQuota(ctx context.Context, tenantID uuid.UUID, metricKey string) (*QuotaCheckResult, error) {
	limit, err := m.limitFor(ctx, tenantID, metricKey)
	if err != nil {
		return nil, err
	}

	period := billing.CurrentMonth(m.now())
	current, err := m.usageLogs.SumForRange(ctx, tenantID, metricKey, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	result := &QuotaCheckResult{
		MetricKey:    metricKey,
		CurrentUsage: current,
		QuotaLimit:   limit,
		QuotaLeft:    -1,
		Allowed:      true,
	}
	if limit >= 0 {
		left := limit - current
		if left < 0 {
			left = 0
		}
		result.QuotaLeft = left
		result.Allowed = current < limit
	}
	return result, nil
}

// GetUsageForPeriod sums a tenant's consumption of a metric over an
// arbitrary window.
func (m *UsageMeter) GetUsageForPeriod(ctx context.Context, tenantID uuid.UUID, metricKey string, from, to time.Time) (int64, error) {
	return m.usageLogs.SumForRange(ctx, tenantID, metricKey, from, to)
}

// ListUsage returns a tenant's recent usage log rows, newest first.
func (m *UsageMeter) ListUsage(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.UsageLog, error) {
	return m.usageLogs.FindByTenant(ctx, tenantID, limit)
}

// limitFor resolves the monthly limit for a metric from the tenant's plan.
// No plan, an inactive plan, or an absent quota entry all mean unlimited.
func (m *UsageMeter) limitFor(ctx context.Context, tenantID uuid.UUID, metricKey string) (int64, error) {
	tenant, err := m.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	if tenant == nil {
		return 0, shared.NewNotFoundError("tenant")
	}
	if tenant.PlanKey == nil {
		return -1, nil
	}

	plan, err := m.planRepo.FindByKey(ctx, *tenant.PlanKey)
	if err != nil {
		return 0, err
	}
	if plan == nil || !plan.IsActive {
		return -1, nil
	}
	if limit, ok := plan.QuotaLimit(metricKey); ok {
		return int64(limit), nil
	}
	return -1, nil
}

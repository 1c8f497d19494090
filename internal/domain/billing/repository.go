package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QuotaRepository defines the interface for tenant quota persistence
type QuotaRepository interface {
	// FindByID finds a quota row by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*TenantQuota, error)

	// FindByTenant finds the quota row owned by a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*TenantQuota, error)

	// Save creates or updates a quota row
	Save(ctx context.Context, quota *TenantQuota) error

	// Delete deletes a quota row
	Delete(ctx context.Context, id uuid.UUID) error
}

// UsageRepository defines the interface for tenant usage persistence
type UsageRepository interface {
	// FindByID finds a usage row by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*TenantUsage, error)

	// FindByTenant finds the usage row owned by a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*TenantUsage, error)

	// Save creates or updates a usage row
	Save(ctx context.Context, usage *TenantUsage) error

	// Delete deletes a usage row
	Delete(ctx context.Context, id uuid.UUID) error
}

// UsageLogRepository defines the interface for metered-event persistence.
// Increments are pushed down to the storage layer as a single conditional
// update so concurrent increments cannot jointly exceed a limit.
type UsageLogRepository interface {
	// FindForPeriod finds the accumulated row for (tenant, metric, period), nil if none
	FindForPeriod(ctx context.Context, tenantID uuid.UUID, metricKey string, periodStart time.Time) (*UsageLog, error)

	// SumForRange sums metered usage for a tenant and metric across any window
	SumForRange(ctx context.Context, tenantID uuid.UUID, metricKey string, from, to time.Time) (int64, error)

	// Accumulate atomically adds amount to the (tenant, metric, period) row,
	// creating it if absent, but only while the resulting value stays at or
	// below limit. A negative limit means unlimited. Returns false when the
	// increment was refused.
	Accumulate(ctx context.Context, tenantID uuid.UUID, metricKey string, period Period, amount, limit int64) (bool, error)

	// FindByTenant lists usage log rows for a tenant, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]UsageLog, error)
}

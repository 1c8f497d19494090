package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

// GormUsageLogRepository implements billing.UsageLogRepository using GORM.
//
// Accumulate is the hot path for metering: the increment and the limit check
// run as one conditional UPDATE so two concurrent increments can never
// jointly push a counter past its limit.
type GormUsageLogRepository struct {
	db *gorm.DB
}

// NewGormUsageLogRepository creates a new GormUsageLogRepository
func NewGormUsageLogRepository(db *gorm.DB) *GormUsageLogRepository {
	return &GormUsageLogRepository{db: db}
}

// FindForPeriod finds the accumulated row for (tenant, metric, period), nil if none
func (r *GormUsageLogRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, metricKey string, periodStart time.Time) (*billing.UsageLog, error) {
	var model models.UsageLogModel
	if err := r.db.WithContext(ctx).
		First(&model, "tenant_id = ? AND metric_key = ? AND period_start = ?", tenantID, metricKey, periodStart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SumForRange sums metered usage for a tenant and metric across any window
func (r *GormUsageLogRepository) SumForRange(ctx context.Context, tenantID uuid.UUID, metricKey string, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.UsageLogModel{}).
		Where("tenant_id = ? AND metric_key = ? AND period_start >= ? AND period_start <= ?", tenantID, metricKey, from, to).
		Select("COALESCE(SUM(value), 0)").
		Scan(&total).Error
	return total, err
}

// Accumulate atomically adds amount to the (tenant, metric, period) row,
// creating it if absent, but only while the resulting value stays at or
// below limit. A negative limit means unlimited. Returns false when the
// increment was refused.
func (r *GormUsageLogRepository) Accumulate(ctx context.Context, tenantID uuid.UUID, metricKey string, period billing.Period, amount, limit int64) (bool, error) {
	if amount <= 0 {
		return false, errors.New("amount must be positive")
	}

	applied, err := r.tryUpdate(ctx, tenantID, metricKey, period, amount, limit)
	if err != nil || applied {
		return applied, err
	}

	// No row was updated. Either the row does not exist yet, or the
	// increment would exceed the limit.
	existing, err := r.FindForPeriod(ctx, tenantID, metricKey, period.Start)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if limit >= 0 && amount > limit {
		return false, nil
	}

	log, err := billing.NewUsageLog(tenantID, metricKey, period, amount)
	if err != nil {
		return false, err
	}
	model := &models.UsageLogModel{}
	model.FromDomain(log)

	// A concurrent Accumulate may have created the row between the update
	// and this insert; on conflict fall back to one more conditional update.
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	return r.tryUpdate(ctx, tenantID, metricKey, period, amount, limit)
}

func (r *GormUsageLogRepository) tryUpdate(ctx context.Context, tenantID uuid.UUID, metricKey string, period billing.Period, amount, limit int64) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.UsageLogModel{}).
		Where("tenant_id = ? AND metric_key = ? AND period_start = ?", tenantID, metricKey, period.Start)
	if limit >= 0 {
		query = query.Where("value + ? <= ?", amount, limit)
	}
	result := query.Updates(map[string]any{
		"value":      gorm.Expr("value + ?", amount),
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindByTenant lists usage log rows for a tenant, newest first
func (r *GormUsageLogRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.UsageLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logModels []models.UsageLogModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("period_start DESC, metric_key ASC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	logs := make([]billing.UsageLog, len(logModels))
	for i, model := range logModels {
		logs[i] = *model.ToDomain()
	}
	return logs, nil
}

var _ billing.UsageLogRepository = (*GormUsageLogRepository)(nil)

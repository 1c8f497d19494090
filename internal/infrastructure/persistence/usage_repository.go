package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

// GormUsageRepository implements billing.UsageRepository using GORM
type GormUsageRepository struct {
	db *gorm.DB
}

// NewGormUsageRepository creates a new GormUsageRepository
func NewGormUsageRepository(db *gorm.DB) *GormUsageRepository {
	return &GormUsageRepository{db: db}
}

// FindByID finds a usage row by its ID
func (r *GormUsageRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TenantUsage, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByTenant finds the usage row owned by a tenant
func (r *GormUsageRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*billing.TenantUsage, error) {
	return r.findOne(ctx, "tenant_id = ?", tenantID)
}

func (r *GormUsageRepository) findOne(ctx context.Context, cond string, arg any) (*billing.TenantUsage, error) {
	var model models.TenantUsageModel
	if err := r.db.WithContext(ctx).First(&model, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a usage row
func (r *GormUsageRepository) Save(ctx context.Context, usage *billing.TenantUsage) error {
	model := models.TenantUsageModelFromDomain(usage)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a usage row
func (r *GormUsageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TenantUsageModel{}, "id = ?", id).Error
}

var _ billing.UsageRepository = (*GormUsageRepository)(nil)

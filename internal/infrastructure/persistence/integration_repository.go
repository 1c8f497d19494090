package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/integration"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

// GormIntegrationRepository implements integration.Repository using GORM
type GormIntegrationRepository struct {
	db *gorm.DB
}

// NewGormIntegrationRepository creates a new GormIntegrationRepository
func NewGormIntegrationRepository(db *gorm.DB) *GormIntegrationRepository {
	return &GormIntegrationRepository{db: db}
}

// FindByID finds an integration by its ID
func (r *GormIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	return r.findOne(ctx, "id = ?", []any{id})
}

// FindByTenant lists a tenant's credentials
func (r *GormIntegrationRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]integration.Integration, error) {
	return r.findMany(ctx, "tenant_id = ?", tenantID)
}

// FindByUser lists a user's credentials
func (r *GormIntegrationRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]integration.Integration, error) {
	return r.findMany(ctx, "user_id = ?", userID)
}

// FindByTenantAndProvider finds a tenant's credential for one provider, nil if none
func (r *GormIntegrationRepository) FindByTenantAndProvider(ctx context.Context, tenantID uuid.UUID, provider string) (*integration.Integration, error) {
	return r.findOne(ctx, "tenant_id = ? AND provider = ?", []any{tenantID, provider})
}

// FindByUserAndProvider finds a user's credential for one provider, nil if none
func (r *GormIntegrationRepository) FindByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*integration.Integration, error) {
	return r.findOne(ctx, "user_id = ? AND provider = ?", []any{userID, provider})
}

func (r *GormIntegrationRepository) findOne(ctx context.Context, cond string, args []any) (*integration.Integration, error) {
	var model models.IntegrationModel
	if err := r.db.WithContext(ctx).
		Where(cond, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormIntegrationRepository) findMany(ctx context.Context, cond string, arg any) ([]integration.Integration, error) {
	var integrationModels []models.IntegrationModel
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("provider ASC").
		Find(&integrationModels).Error; err != nil {
		return nil, err
	}

	integrations := make([]integration.Integration, len(integrationModels))
	for i, model := range integrationModels {
		integrations[i] = *model.ToDomain()
	}
	return integrations, nil
}

// Save creates or updates an integration
func (r *GormIntegrationRepository) Save(ctx context.Context, i *integration.Integration) error {
	model := models.IntegrationModelFromDomain(i)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes an integration
func (r *GormIntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.IntegrationModel{}, "id = ?", id).Error
}

var _ integration.Repository = (*GormIntegrationRepository)(nil)

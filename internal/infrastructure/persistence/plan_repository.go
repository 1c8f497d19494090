package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

// GormPlanRepository implements identity.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan by its ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Plan, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByKey finds a plan by its unique key
func (r *GormPlanRepository) FindByKey(ctx context.Context, key string) (*identity.Plan, error) {
	return r.findOne(ctx, "key = ?", key)
}

// FindByCode finds a plan by its unique billing code
func (r *GormPlanRepository) FindByCode(ctx context.Context, code string) (*identity.Plan, error) {
	return r.findOne(ctx, "code = ?", code)
}

func (r *GormPlanRepository) findOne(ctx context.Context, cond string, arg any) (*identity.Plan, error) {
	var model models.PlanModel
	if err := r.db.WithContext(ctx).First(&model, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all plans matching the filter
func (r *GormPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Plan, error) {
	var planModels []models.PlanModel
	query := r.db.WithContext(ctx).Model(&models.PlanModel{})

	if filter.Search != "" {
		keyword := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ? OR key LIKE ?", keyword, keyword, keyword)
	}

	sortField := ValidateSortField(filter.OrderBy, PlanSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = applyPagination(query.Order(sortField+" "+sortOrder), filter)

	if err := query.Find(&planModels).Error; err != nil {
		return nil, err
	}
	return toPlans(planModels), nil
}

// FindActive finds all active plans
func (r *GormPlanRepository) FindActive(ctx context.Context) ([]identity.Plan, error) {
	var planModels []models.PlanModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("monthly_price ASC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}
	return toPlans(planModels), nil
}

func toPlans(planModels []models.PlanModel) []identity.Plan {
	plans := make([]identity.Plan, len(planModels))
	for i, model := range planModels {
		plans[i] = *model.ToDomain()
	}
	return plans
}

// Save creates or updates a plan
func (r *GormPlanRepository) Save(ctx context.Context, plan *identity.Plan) error {
	model := models.PlanModelFromDomain(plan)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a plan
func (r *GormPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PlanModel{}, "id = ?", id).Error
}

// ExistsByCodeOrKey checks if a plan with the given code or key exists
func (r *GormPlanRepository) ExistsByCodeOrKey(ctx context.Context, code, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PlanModel{}).
		Where("code = ? OR key = ?", code, key).Count(&count).Error
	return count > 0, err
}

var _ identity.PlanRepository = (*GormPlanRepository)(nil)

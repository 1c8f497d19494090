package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

// GormFixRepository implements audit.FixRepository using GORM
type GormFixRepository struct {
	db *gorm.DB
}

// NewGormFixRepository creates a new GormFixRepository
func NewGormFixRepository(db *gorm.DB) *GormFixRepository {
	return &GormFixRepository{db: db}
}

// FindByID finds a fix by its ID
func (r *GormFixRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Fix, error) {
	var model models.FixModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIssue lists an issue's fixes, newest first
func (r *GormFixRepository) FindByIssue(ctx context.Context, issueID uuid.UUID) ([]audit.Fix, error) {
	var fixModels []models.FixModel
	if err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("created_at DESC").
		Find(&fixModels).Error; err != nil {
		return nil, err
	}

	fixes := make([]audit.Fix, len(fixModels))
	for i, model := range fixModels {
		fixes[i] = *model.ToDomain()
	}
	return fixes, nil
}

// Save creates or updates a fix
func (r *GormFixRepository) Save(ctx context.Context, fix *audit.Fix) error {
	model := &models.FixModel{}
	model.FromDomain(fix)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a fix
func (r *GormFixRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.FixModel{}, "id = ?", id).Error
}

var _ audit.FixRepository = (*GormFixRepository)(nil)

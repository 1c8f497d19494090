package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/project"
	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

// GormPageRepository implements project.PageRepository using GORM
type GormPageRepository struct {
	db *gorm.DB
}

// NewGormPageRepository creates a new GormPageRepository
func NewGormPageRepository(db *gorm.DB) *GormPageRepository {
	return &GormPageRepository{db: db}
}

// FindByID finds a page by its ID
func (r *GormPageRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Page, error) {
	var model models.PageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProject lists a project's pages
func (r *GormPageRepository) FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]project.Page, error) {
	var pageModels []models.PageModel
	query := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("path ASC")
	if err := applyPagination(query, filter).Find(&pageModels).Error; err != nil {
		return nil, err
	}

	pages := make([]project.Page, len(pageModels))
	for i, model := range pageModels {
		pages[i] = *model.ToDomain()
	}
	return pages, nil
}

// Save creates or updates a page
func (r *GormPageRepository) Save(ctx context.Context, page *project.Page) error {
	model := &models.PageModel{}
	model.FromDomain(page)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a page
func (r *GormPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PageModel{}, "id = ?", id).Error
}

var _ project.PageRepository = (*GormPageRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

// GormAuditRepository implements audit.AuditRepository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// FindByID finds an audit by its ID
func (r *GormAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Audit, error) {
	var model models.AuditModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProject lists a project's audits matching the filter
func (r *GormAuditRepository) FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]audit.Audit, error) {
	var auditModels []models.AuditModel
	query := r.auditQuery(ctx, projectID, filter)

	sortField := ValidateSortField(filter.OrderBy, AuditSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = applyPagination(query.Order(sortField+" "+sortOrder), filter)

	if err := query.Find(&auditModels).Error; err != nil {
		return nil, err
	}

	audits := make([]audit.Audit, len(auditModels))
	for i, model := range auditModels {
		audits[i] = *model.ToDomain()
	}
	return audits, nil
}

// CountByProject counts a project's audits matching the filter
func (r *GormAuditRepository) CountByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.auditQuery(ctx, projectID, filter).Count(&count).Error
	return count, err
}

func (r *GormAuditRepository) auditQuery(ctx context.Context, projectID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.AuditModel{}).
		Where("project_id = ?", projectID)
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if auditType, ok := filter.Filters["type"].(string); ok && auditType != "" {
		query = query.Where("type = ?", auditType)
	}
	return query
}

// FindLatestCompleted finds the most recent completed audit of a project, nil if none
func (r *GormAuditRepository) FindLatestCompleted(ctx context.Context, projectID uuid.UUID) (*audit.Audit, error) {
	var model models.AuditModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, audit.StatusCompleted).
		Order("completed_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an audit
func (r *GormAuditRepository) Save(ctx context.Context, a *audit.Audit) error {
	model := models.AuditModelFromDomain(a)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes an audit
func (r *GormAuditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AuditModel{}, "id = ?", id).Error
}

var _ audit.AuditRepository = (*GormAuditRepository)(nil)

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

// GormIssueRepository implements audit.IssueRepository using GORM
type GormIssueRepository struct {
	db *gorm.DB
}

// NewGormIssueRepository creates a new GormIssueRepository
func NewGormIssueRepository(db *gorm.DB) *GormIssueRepository {
	return &GormIssueRepository{db: db}
}

// FindByID finds an issue by its ID
func (r *GormIssueRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Issue, error) {
	var model models.IssueModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAudit lists an audit's issues matching the filter
func (r *GormIssueRepository) FindByAudit(ctx context.Context, auditID uuid.UUID, filter shared.Filter) ([]audit.Issue, error) {
	var issueModels []models.IssueModel
	query := r.db.WithContext(ctx).Where("audit_id = ?", auditID)

	if severity, ok := filter.Filters["severity"].(string); ok && severity != "" {
		query = query.Where("severity = ?", severity)
	}
	if category, ok := filter.Filters["category"].(string); ok && category != "" {
		query = query.Where("category = ?", category)
	}
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	sortField := ValidateSortField(filter.OrderBy, IssueSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = applyPagination(query.Order(sortField+" "+sortOrder), filter)

	if err := query.Find(&issueModels).Error; err != nil {
		return nil, err
	}

	issues := make([]audit.Issue, len(issueModels))
	for i, model := range issueModels {
		issues[i] = *model.ToDomain()
	}
	return issues, nil
}

// CountByAudit counts an audit's issues
func (r *GormIssueRepository) CountByAudit(ctx context.Context, auditID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.IssueModel{}).
		Where("audit_id = ?", auditID).Count(&count).Error
	return count, err
}

// Save creates or updates an issue
func (r *GormIssueRepository) Save(ctx context.Context, issue *audit.Issue) error {
	model := models.IssueModelFromDomain(issue)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveBatch persists a collection of issues in one write
func (r *GormIssueRepository) SaveBatch(ctx context.Context, issues []*audit.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	issueModels := make([]*models.IssueModel, len(issues))
	for i, issue := range issues {
		issueModels[i] = models.IssueModelFromDomain(issue)
	}
	return r.db.WithContext(ctx).CreateInBatches(issueModels, 50).Error
}

// Delete deletes an issue
func (r *GormIssueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.IssueModel{}, "id = ?", id).Error
}

var _ audit.IssueRepository = (*GormIssueRepository)(nil)

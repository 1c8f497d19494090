package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/project"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

// GormDomainRepository implements project.DomainRepository using GORM
type GormDomainRepository struct {
	db *gorm.DB
}

// NewGormDomainRepository creates a new GormDomainRepository
func NewGormDomainRepository(db *gorm.DB) *GormDomainRepository {
	return &GormDomainRepository{db: db}
}

// FindByID finds a domain by its ID
func (r *GormDomainRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Domain, error) {
	var model models.DomainModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProject lists all domains of a project
func (r *GormDomainRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]project.Domain, error) {
	var domainModels []models.DomainModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&domainModels).Error; err != nil {
		return nil, err
	}

	domains := make([]project.Domain, len(domainModels))
	for i, model := range domainModels {
		domains[i] = *model.ToDomain()
	}
	return domains, nil
}

// FindPrimaryApproved finds the project's primary approved domain, nil if none
func (r *GormDomainRepository) FindPrimaryApproved(ctx context.Context, projectID uuid.UUID) (*project.Domain, error) {
	var model models.DomainModel
	if err := r.db.WithContext(ctx).
		First(&model, "project_id = ? AND status = ? AND is_primary = ?",
			projectID, project.DomainStatusApproved, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByTenant counts domains across all of a tenant's projects
func (r *GormDomainRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DomainModel{}).
		Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}

// Save creates or updates a domain
func (r *GormDomainRepository) Save(ctx context.Context, domain *project.Domain) error {
	model := models.DomainModelFromDomain(domain)
	return r.db.WithContext(ctx).Save(model).Error
}

// SavePrimary persists the domain and promotes it to the project's primary.
// The demotion of every sibling and the promotion itself run in the same
// transaction, so the project never has two primaries, not even briefly.
func (r *GormDomainRepository) SavePrimary(ctx context.Context, domain *project.Domain) error {
	domain.IsPrimary = true
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DomainModel{}).
			Where("project_id = ? AND id <> ? AND is_primary = ?", domain.ProjectID, domain.ID, true).
			Updates(map[string]any{
				"is_primary": false,
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		model := models.DomainModelFromDomain(domain)
		return tx.Save(model).Error
	})
}

// Delete deletes a domain
func (r *GormDomainRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DomainModel{}, "id = ?", id).Error
}

// ExistsByProjectAndHost checks if a host is already attached to a project
func (r *GormDomainRepository) ExistsByProjectAndHost(ctx context.Context, projectID uuid.UUID, host string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DomainModel{}).
		Where("project_id = ? AND host = ?", projectID, host).Count(&count).Error
	return count > 0, err
}

// ExistsByTenantAndHost checks if a host is already attached to any of a tenant's projects
func (r *GormDomainRepository) ExistsByTenantAndHost(ctx context.Context, tenantID uuid.UUID, host string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DomainModel{}).
		Where("tenant_id = ? AND host = ?", tenantID, host).Count(&count).Error
	return count > 0, err
}

var _ project.DomainRepository = (*GormDomainRepository)(nil)

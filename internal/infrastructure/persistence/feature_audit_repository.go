package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

// GormFeatureAuditRepository implements the append-only feature override
// audit trail. Rows are only ever inserted, never updated or deleted.
type GormFeatureAuditRepository struct {
	db *gorm.DB
}

// NewGormFeatureAuditRepository creates a new GormFeatureAuditRepository
func NewGormFeatureAuditRepository(db *gorm.DB) *GormFeatureAuditRepository {
	return &GormFeatureAuditRepository{db: db}
}

// Append persists a new audit entry
func (r *GormFeatureAuditRepository) Append(ctx context.Context, entry *identity.FeatureAuditEntry) error {
	model := &models.FeatureAuditModel{}
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByTenant lists audit entries for a tenant, newest first
func (r *GormFeatureAuditRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.FeatureAuditEntry, error) {
	var entryModels []models.FeatureAuditModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if err := applyPagination(query, filter).Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toFeatureAuditEntries(entryModels), nil
}

// FindByTenantAndFeature lists audit entries for one flag of a tenant
func (r *GormFeatureAuditRepository) FindByTenantAndFeature(ctx context.Context, tenantID uuid.UUID, featureKey string) ([]identity.FeatureAuditEntry, error) {
	var entryModels []models.FeatureAuditModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND feature_key = ?", tenantID, featureKey).
		Order("created_at DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toFeatureAuditEntries(entryModels), nil
}

func toFeatureAuditEntries(entryModels []models.FeatureAuditModel) []identity.FeatureAuditEntry {
	entries := make([]identity.FeatureAuditEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries
}

var _ identity.FeatureAuditRepository = (*GormFeatureAuditRepository)(nil)

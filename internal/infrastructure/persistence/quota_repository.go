package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
	"github.com/sitepulse/backend/internal/infrastructure/secrets"
)

// GormQuotaRepository implements billing.QuotaRepository using GORM. The
// tenant's provider API keys never reach the database in cleartext: the
// whole key map is sealed through the vault on write and opened on read.
type GormQuotaRepository struct {
	db    *gorm.DB
	vault *secrets.Vault
}

// NewGormQuotaRepository creates a new GormQuotaRepository
func NewGormQuotaRepository(db *gorm.DB, vault *secrets.Vault) *GormQuotaRepository {
	return &GormQuotaRepository{db: db, vault: vault}
}

// FindByID finds a quota row by its ID
func (r *GormQuotaRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TenantQuota, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByTenant finds the quota row owned by a tenant
func (r *GormQuotaRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*billing.TenantQuota, error) {
	return r.findOne(ctx, "tenant_id = ?", tenantID)
}

func (r *GormQuotaRepository) findOne(ctx context.Context, cond string, arg any) (*billing.TenantQuota, error) {
	var model models.TenantQuotaModel
	if err := r.db.WithContext(ctx).First(&model, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	quota := model.ToDomain()
	if model.APIKeysCiphertext != "" {
		plaintext, err := r.vault.Decrypt(model.APIKeysCiphertext)
		if err != nil {
			return nil, fmt.Errorf("failed to open tenant API keys: %w", err)
		}
		if err := json.Unmarshal([]byte(plaintext), &quota.APIKeys); err != nil {
			return nil, fmt.Errorf("failed to parse tenant API keys: %w", err)
		}
	}
	return quota, nil
}

// Save creates or updates a quota row
func (r *GormQuotaRepository) Save(ctx context.Context, quota *billing.TenantQuota) error {
	model := &models.TenantQuotaModel{}
	model.FromDomain(quota)

	if len(quota.APIKeys) > 0 {
		plaintext, err := json.Marshal(quota.APIKeys)
		if err != nil {
			return fmt.Errorf("failed to marshal tenant API keys: %w", err)
		}
		ciphertext, err := r.vault.Encrypt(string(plaintext))
		if err != nil {
			return fmt.Errorf("failed to seal tenant API keys: %w", err)
		}
		model.APIKeysCiphertext = ciphertext
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a quota row
func (r *GormQuotaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TenantQuotaModel{}, "id = ?", id).Error
}

var _ billing.QuotaRepository = (*GormQuotaRepository)(nil)

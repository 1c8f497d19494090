package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/integration"
	"github.com/sitepulse/backend/internal/infrastructure/secrets"
)

// Provider tags under which tenants store external API credentials
const (
	ProviderPageSpeed = "pagespeed"
	ProviderGemini    = "gemini"
	ProviderGroq      = "groq"
)

// CredentialResolver looks up a tenant's stored API key for an external
// provider. The integrations table is checked first, the key store on the
// tenant's billing quota row second. A miss resolves to an empty string,
// not an error; the caller decides whether a key is mandatory.
type CredentialResolver struct {
	integrations integration.Repository
	quotaRepo    billing.QuotaRepository
	vault        *secrets.Vault
	logger       *zap.Logger
}

// NewCredentialResolver creates a resolver backed by the given stores
func NewCredentialResolver(
	integrations integration.Repository,
	quotaRepo billing.QuotaRepository,
	vault *secrets.Vault,
	logger *zap.Logger,
) *CredentialResolver {
	return &CredentialResolver{
		integrations: integrations,
		quotaRepo:    quotaRepo,
		vault:        vault,
		logger:       logger.Named("credentials"),
	}
}

// Resolve returns the tenant's key for the provider, or "" when none is stored
func (r *CredentialResolver) Resolve(ctx context.Context, tenantID uuid.UUID, provider string) (string, error) {
	integ, err := r.integrations.FindByTenantAndProvider(ctx, tenantID, provider)
	if err != nil {
		return "", err
	}
	if integ != nil && integ.EncryptedKey != "" {
		key, err := r.vault.Decrypt(integ.EncryptedKey)
		if err != nil {
			r.logger.Warn("Stored integration key could not be decrypted",
				zap.String("tenant_id", tenantID.String()),
				zap.String("provider", provider),
				zap.Error(err))
		} else if key != "" {
			return key, nil
		}
	}

	quota, err := r.quotaRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if quota != nil {
		if key := quota.APIKeys[provider]; key != "" {
			return key, nil
		}
	}
	return "", nil
}

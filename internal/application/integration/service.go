package integration

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/integration"
	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/infrastructure/secrets"
)

// Providers accepted for stored credentials
const (
	ProviderPageSpeed = "pagespeed"
	ProviderGemini    = "gemini"
	ProviderGroq      = "groq"
)

// Prober verifies a PageSpeed API key against the live API
type Prober interface {
	Probe(ctx context.Context, apiKey string) error
}

// CreateCredentialRequest carries the input for storing a credential.
// Exactly one of TenantID and UserID must be set.
type CreateCredentialRequest struct {
	TenantID *uuid.UUID      `json:"tenant_id,omitempty"`
	UserID   *uuid.UUID      `json:"user_id,omitempty"`
	Provider string          `json:"provider" binding:"required"`
	APIKey   string          `json:"api_key" binding:"required"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// CredentialView is the outward shape of a stored credential. The secret
// never leaves the service; only its mask does.
type CredentialView struct {
	ID           uuid.UUID          `json:"id"`
	Provider     string             `json:"provider"`
	MaskedKey    string             `json:"masked_key"`
	Scope        integration.Scope  `json:"scope"`
	Status       integration.Status `json:"status"`
	LastTestedAt *string            `json:"last_tested_at,omitempty"`
}

// Service manages stored third-party credentials. Secrets are sealed by
// the vault before they reach the repository and never returned raw.
type Service struct {
	repo   integration.Repository
	vault  *secrets.Vault
	prober Prober
	logger *zap.Logger
}

// NewService creates an integration service
func NewService(repo integration.Repository, vault *secrets.Vault, prober Prober, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		vault:  vault,
		prober: prober,
		logger: logger.Named("integration"),
	}
}

// Create stores a new credential for a tenant or a user. An owner may hold
// at most one credential per provider; rotation replaces it instead.
func (s *Service) Create(ctx context.Context, req CreateCredentialRequest) (*integration.Integration, error) {
	if (req.TenantID == nil) == (req.UserID == nil) {
		return nil, shared.NewInvalidInputError("Exactly one of tenant_id and user_id must be set")
	}
	if !knownProvider(req.Provider) {
		return nil, shared.NewInvalidInputError("Unknown provider: " + req.Provider)
	}

	existing, err := s.findByOwnerAndProvider(ctx, req.TenantID, req.UserID, req.Provider)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewConflictError("A credential for this provider already exists")
	}

	encrypted, err := s.vault.Encrypt(req.APIKey)
	if err != nil {
		return nil, shared.NewInternalError("Failed to seal credential")
	}
	masked := secrets.Mask(req.APIKey)

	var cred *integration.Integration
	if req.TenantID != nil {
		cred, err = integration.NewTenantIntegration(*req.TenantID, req.Provider, masked, encrypted)
	} else {
		cred, err = integration.NewUserIntegration(*req.UserID, req.Provider, masked, encrypted)
	}
	if err != nil {
		return nil, err
	}
	cred.Config = req.Config

	if err := s.repo.Save(ctx, cred); err != nil {
		return nil, err
	}
	s.logger.Info("Credential stored",
		zap.String("integration_id", cred.ID.String()),
		zap.String("provider", cred.Provider),
		zap.String("scope", cred.Scope.String()))
	return cred, nil
}

// Get finds a credential by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	cred, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, shared.NewNotFoundError("Credential")
	}
	return cred, nil
}

// ListByTenant lists a tenant's credentials
func (s *Service) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]integration.Integration, error) {
	return s.repo.FindByTenant(ctx, tenantID)
}

// ListByUser lists a user's credentials
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]integration.Integration, error) {
	return s.repo.FindByUser(ctx, userID)
}

// Rotate replaces the secret of a stored credential and resets its health
// back to untested.
func (s *Service) Rotate(ctx context.Context, id uuid.UUID, apiKey string) (*integration.Integration, error) {
	if apiKey == "" {
		return nil, shared.NewInvalidInputError("API key cannot be empty")
	}
	cred, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.vault.Encrypt(apiKey)
	if err != nil {
		return nil, shared.NewInternalError("Failed to seal credential")
	}
	if err := cred.RotateKey(secrets.Mask(apiKey), encrypted); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cred); err != nil {
		return nil, err
	}
	s.logger.Info("Credential rotated",
		zap.String("integration_id", cred.ID.String()),
		zap.String("provider", cred.Provider))
	return cred, nil
}

// Test verifies a stored credential on demand and records the outcome.
// PageSpeed keys get a live probe; AI provider keys cannot be verified
// without spending tokens, so a present decryptable key is accepted.
func (s *Service) Test(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	cred, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	apiKey, err := s.vault.Decrypt(cred.EncryptedKey)
	if err != nil {
		s.logger.Warn("Stored credential is not decryptable",
			zap.String("integration_id", cred.ID.String()),
			zap.Error(err))
		cred.RecordTest(false)
		if saveErr := s.repo.Save(ctx, cred); saveErr != nil {
			return nil, saveErr
		}
		return cred, nil
	}

	ok := false
	switch cred.Provider {
	case ProviderPageSpeed:
		if probeErr := s.prober.Probe(ctx, apiKey); probeErr != nil {
			s.logger.Warn("Credential probe failed",
				zap.String("integration_id", cred.ID.String()),
				zap.Error(probeErr))
		} else {
			ok = true
		}
	case ProviderGemini, ProviderGroq:
		ok = apiKey != ""
	}

	cred.RecordTest(ok)
	if err := s.repo.Save(ctx, cred); err != nil {
		return nil, err
	}
	s.logger.Info("Credential tested",
		zap.String("integration_id", cred.ID.String()),
		zap.String("provider", cred.Provider),
		zap.String("status", cred.Status.String()))
	return cred, nil
}

// Delete removes a stored credential
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// View maps a credential to its outward shape
func View(cred *integration.Integration) CredentialView {
	view := CredentialView{
		ID:        cred.ID,
		Provider:  cred.Provider,
		MaskedKey: cred.MaskedKey,
		Scope:     cred.Scope,
		Status:    cred.Status,
	}
	if cred.LastTestedAt != nil {
		formatted := cred.LastTestedAt.Format("2006-01-02T15:04:05Z07:00")
		view.LastTestedAt = &formatted
	}
	return view
}

func (s *Service) findByOwnerAndProvider(ctx context.Context, tenantID, userID *uuid.UUID, provider string) (*integration.Integration, error) {
	if tenantID != nil {
		return s.repo.FindByTenantAndProvider(ctx, *tenantID, provider)
	}
	return s.repo.FindByUserAndProvider(ctx, *userID, provider)
}

func knownProvider(provider string) bool {
	switch provider {
	case ProviderPageSpeed, ProviderGemini, ProviderGroq:
		return true
	}
	return false
}

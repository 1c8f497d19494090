package integration

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for integration persistence
type Repository interface {
	// FindByID finds an integration by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Integration, error)

	// FindByTenant lists a tenant's credentials
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Integration, error)

	// FindByUser lists a user's credentials
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Integration, error)

	// FindByTenantAndProvider finds a tenant's credential for one provider, nil if none
	FindByTenantAndProvider(ctx context.Context, tenantID uuid.UUID, provider string) (*Integration, error)

	// FindByUserAndProvider finds a user's credential for one provider, nil if none
	FindByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*Integration, error)

	// Save creates or updates an integration
	Save(ctx context.Context, integration *Integration) error

	// Delete deletes an integration
	Delete(ctx context.Context, id uuid.UUID) error
}

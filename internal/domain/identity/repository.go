package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByID finds a tenant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindBySlug finds a tenant by its unique slug
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)

	// FindAll finds all tenants matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Tenant, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error

	// Delete deletes a tenant
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts tenants matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsBySlug checks if a tenant with the given slug exists
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// PlanRepository defines the interface for plan persistence
type PlanRepository interface {
	// FindByID finds a plan by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)

	// FindByKey finds a plan by its unique key
	FindByKey(ctx context.Context, key string) (*Plan, error)

	// FindByCode finds a plan by its unique billing code
	FindByCode(ctx context.Context, code string) (*Plan, error)

	// FindAll finds all plans matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Plan, error)

	// FindActive finds all active plans
	FindActive(ctx context.Context) ([]Plan, error)

	// Save creates or updates a plan
	Save(ctx context.Context, plan *Plan) error

	// Delete deletes a plan
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByCodeOrKey checks if a plan with the given code or key exists
	ExistsByCodeOrKey(ctx context.Context, code, key string) (bool, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// Delete deletes a user
	Delete(ctx context.Context, id uuid.UUID) error
}

// MembershipRepository defines the interface for membership persistence
type MembershipRepository interface {
	// FindByID finds a membership by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Membership, error)

	// FindByTenantAndUser finds the membership linking a user to a tenant
	FindByTenantAndUser(ctx context.Context, tenantID, userID uuid.UUID) (*Membership, error)

	// FindByTenant finds all memberships of a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Membership, error)

	// CountByTenant counts memberships of a tenant
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountByTenantAndRole counts memberships of a tenant holding a role
	CountByTenantAndRole(ctx context.Context, tenantID uuid.UUID, role MemberRole) (int64, error)

	// Save creates or updates a membership
	Save(ctx context.Context, membership *Membership) error

	// Delete deletes a membership
	Delete(ctx context.Context, id uuid.UUID) error
}

// FeatureAuditRepository defines the interface for the append-only
// feature override audit trail. There is deliberately no update or
// delete operation.
type FeatureAuditRepository interface {
	// Append persists a new audit entry
	Append(ctx context.Context, entry *FeatureAuditEntry) error

	// FindByTenant lists audit entries for a tenant, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]FeatureAuditEntry, error)

	// FindByTenantAndFeature lists audit entries for one flag of a tenant
	FindByTenantAndFeature(ctx context.Context, tenantID uuid.UUID, featureKey string) ([]FeatureAuditEntry, error)
}

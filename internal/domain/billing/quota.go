package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// BillingStatus represents the billing lifecycle state of a tenant
type BillingStatus string

const (
	// BillingStatusTrial indicates the tenant is in a trial period
	BillingStatusTrial BillingStatus = "trial"

	// BillingStatusActive indicates the tenant is paying and in good standing
	BillingStatusActive BillingStatus = "active"

	// BillingStatusPastDue indicates a missed payment, service continues
	BillingStatusPastDue BillingStatus = "past_due"

	// BillingStatusSuspended blocks all capacity-gated actions outright
	BillingStatusSuspended BillingStatus = "suspended"

	// BillingStatusCancelled indicates the tenant has cancelled
	BillingStatusCancelled BillingStatus = "cancelled"
)

// IsValid returns true if the billing status is valid
func (s BillingStatus) IsValid() bool {
	switch s {
	case BillingStatusTrial, BillingStatusActive, BillingStatusPastDue, BillingStatusSuspended, BillingStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the billing status
func (s BillingStatus) String() string {
	return string(s)
}

// ResourceType identifies a standing-resource counter guarded by quota ceilings
type ResourceType string

const (
	// ResourceProject counts projects owned by the tenant
	ResourceProject ResourceType = "project"

	// ResourceDomain counts domains across the tenant's projects
	ResourceDomain ResourceType = "domain"

	// ResourceMember counts tenant memberships
	ResourceMember ResourceType = "member"

	// ResourceOrgAdmin counts memberships with the org-admin role
	ResourceOrgAdmin ResourceType = "org_admin"
)

// IsValid returns true if the resource type is valid
func (r ResourceType) IsValid() bool {
	switch r {
	case ResourceProject, ResourceDomain, ResourceMember, ResourceOrgAdmin:
		return true
	}
	return false
}

// String returns the string representation of the resource type
func (r ResourceType) String() string {
	return string(r)
}

// TenantQuota holds a tenant's ceiling configuration and billing state.
// Every tenant owns exactly one quota row, created atomically with it.
// Nil ceilings mean unlimited.
type TenantQuota struct {
	shared.BaseAggregateRoot
	TenantID               uuid.UUID
	PlanKey                *string // Optional plan reference by key
	MaxProjects            *int
	MaxDomains             *int
	MaxMembers             *int
	MaxOrgAdmins           *int
	MaxAutomationsPerMonth *int
	BillingStatus          BillingStatus
	TrialEndsAt            *time.Time
	PeriodEndsAt           *time.Time
	Notes                  string
	APIKeys                map[string]string // Raw provider API keys, stored encrypted at the persistence layer
}

// NewTenantQuota creates a quota row for a tenant, starting in trial
func NewTenantQuota(tenantID uuid.UUID) (*TenantQuota, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Tenant ID cannot be empty")
	}

	return &TenantQuota{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		BillingStatus:     BillingStatusTrial,
		APIKeys:           make(map[string]string),
	}, nil
}

// IsSuspended returns true if the tenant's billing status blocks actions
func (q *TenantQuota) IsSuspended() bool {
	return q.BillingStatus == BillingStatusSuspended
}

// CeilingFor returns the ceiling matching a resource type.
// A nil return means the resource is unlimited.
func (q *TenantQuota) CeilingFor(resource ResourceType) *int {
	switch resource {
	case ResourceProject:
		return q.MaxProjects
	case ResourceDomain:
		return q.MaxDomains
	case ResourceMember:
		return q.MaxMembers
	case ResourceOrgAdmin:
		return q.MaxOrgAdmins
	}
	return nil
}

// SetBillingStatus transitions the billing lifecycle state
func (q *TenantQuota) SetBillingStatus(status BillingStatus) error {
	if !status.IsValid() {
		return shared.NewInvalidInputError("Invalid billing status")
	}
	q.BillingStatus = status
	q.UpdatedAt = time.Now()
	return nil
}

// SetCeiling updates one ceiling. A nil value makes the resource unlimited.
// Callers are responsible for the lowering check against current usage.
func (q *TenantQuota) SetCeiling(resource ResourceType, value *int) error {
	if value != nil && *value < 0 {
		return shared.NewInvalidInputError("Quota ceiling cannot be negative")
	}
	switch resource {
	case ResourceProject:
		q.MaxProjects = value
	case ResourceDomain:
		q.MaxDomains = value
	case ResourceMember:
		q.MaxMembers = value
	case ResourceOrgAdmin:
		q.MaxOrgAdmins = value
	default:
		return shared.NewInvalidInputError("Invalid resource type")
	}
	q.UpdatedAt = time.Now()
	return nil
}

// SetAPIKey stores a raw provider API key on the quota row
func (q *TenantQuota) SetAPIKey(provider, key string) {
	if q.APIKeys == nil {
		q.APIKeys = make(map[string]string)
	}
	q.APIKeys[provider] = key
	q.UpdatedAt = time.Now()
}

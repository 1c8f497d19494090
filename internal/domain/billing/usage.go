package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// TenantUsage tracks a tenant's current standing-resource counts.
// Counts are mutated incrementally on create/delete and periodically
// recomputed from the authoritative collections by reconciliation.
// Counters never go below zero.
type TenantUsage struct {
	shared.BaseAggregateRoot
	TenantID                uuid.UUID
	ProjectCount            int
	DomainCount             int
	MemberCount             int
	OrgAdminCount           int
	AutomationRunsThisMonth int
	LastCalculatedAt        time.Time
}

// NewTenantUsage creates a usage row for a tenant with zeroed counters
func NewTenantUsage(tenantID uuid.UUID) (*TenantUsage, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Tenant ID cannot be empty")
	}

	return &TenantUsage{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		LastCalculatedAt:  time.Now(),
	}, nil
}

// CountFor returns the current counter matching a resource type
func (u *TenantUsage) CountFor(resource ResourceType) int {
	switch resource {
	case ResourceProject:
		return u.ProjectCount
	case ResourceDomain:
		return u.DomainCount
	case ResourceMember:
		return u.MemberCount
	case ResourceOrgAdmin:
		return u.OrgAdminCount
	}
	return 0
}

// UsageDelta is a caller-supplied adjustment to the resource counters.
// Negative values decrement; decrements clamp at zero.
type UsageDelta struct {
	Projects  int
	Domains   int
	Members   int
	OrgAdmins int
}

// Apply adjusts the counters by the delta, clamping each at zero,
// and stamps LastCalculatedAt.
func (u *TenantUsage) Apply(delta UsageDelta) {
	u.ProjectCount = clampZero(u.ProjectCount + delta.Projects)
	u.DomainCount = clampZero(u.DomainCount + delta.Domains)
	u.MemberCount = clampZero(u.MemberCount + delta.Members)
	u.OrgAdminCount = clampZero(u.OrgAdminCount + delta.OrgAdmins)
	u.LastCalculatedAt = time.Now()
	u.UpdatedAt = u.LastCalculatedAt
}

// Recalculate replaces all counters with authoritative counts
// and stamps LastCalculatedAt.
func (u *TenantUsage) Recalculate(projects, domains, members, orgAdmins int) {
	u.ProjectCount = clampZero(projects)
	u.DomainCount = clampZero(domains)
	u.MemberCount = clampZero(members)
	u.OrgAdminCount = clampZero(orgAdmins)
	u.LastCalculatedAt = time.Now()
	u.UpdatedAt = u.LastCalculatedAt
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

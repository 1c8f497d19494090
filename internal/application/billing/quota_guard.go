package billing

import (
	"context"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/project"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// QuotaGuard gates standing-resource creation against a tenant's ceilings.
// Callers check capacity before creating a resource and report the count
// change afterwards, keeping the cached usage row in step.
type QuotaGuard struct {
	quotaRepo      billing.QuotaRepository
	usageRepo      billing.UsageRepository
	projectRepo    project.ProjectRepository
	domainRepo     project.DomainRepository
	membershipRepo identity.MembershipRepository
	logger         *zap.Logger
}

// NewQuotaGuard creates a new QuotaGuard
func NewQuotaGuard(
	quotaRepo billing.QuotaRepository,
	usageRepo billing.UsageRepository,
	projectRepo project.ProjectRepository,
	domainRepo project.DomainRepository,
	membershipRepo identity.MembershipRepository,
	logger *zap.Logger,
) *QuotaGuard {
	return &QuotaGuard{
		quotaRepo:      quotaRepo,
		usageRepo:      usageRepo,
		projectRepo:    projectRepo,
		domainRepo:     domainRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

// EnsureCapacity verifies a tenant may create one more resource of the given
// type. A suspended tenant is always refused. A nil ceiling means unlimited.
// The check is strict: creation is allowed only while the current count is
// below the ceiling.
func (g *QuotaGuard) EnsureCapacity(ctx context.Context, tenantID uuid.UUID, resource billing.ResourceType) error {
	if !resource.IsValid() {
		return shared.NewInvalidInputError("unknown resource type: " + resource.String())
	}

	quota, err := g.quotaRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	usage, err := g.usageRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	// Both rows are created with the tenant; a missing one means the tenant
	// record is broken, not that the tenant has no limits.
	if quota == nil || usage == nil {
		g.logger.Error("Tenant quota rows missing",
			zap.String("tenant_id", tenantID.String()),
			zap.Bool("quota_missing", quota == nil),
			zap.Bool("usage_missing", usage == nil))
		return shared.NewMisconfigurationError("tenant billing records are missing")
	}

	if quota.IsSuspended() {
		return shared.NewTenantSuspendedError()
	}

	ceiling := quota.CeilingFor(resource)
	if ceiling == nil {
		return nil
	}

	current := usage.CountFor(resource)
	if current >= *ceiling {
		g.logger.Info("Capacity refused",
			zap.String("tenant_id", tenantID.String()),
			zap.String("resource", resource.String()),
			zap.Int("current", current),
			zap.Int("ceiling", *ceiling))
		return shared.NewCapacityExceededError("tenant has reached its "+resource.String()+" limit")
	}
	return nil
}

// ApplyDelta records a resource count change on the tenant's usage row.
// Counters are clamped at zero so a duplicated decrement cannot go negative.
func (g *QuotaGuard) ApplyDelta(ctx context.Context, tenantID uuid.UUID, delta billing.UsageDelta) error {
	usage, err := g.usageRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if usage == nil {
		return shared.NewMisconfigurationError("tenant billing records are missing")
	}
	usage.Apply(delta)
	return g.usageRepo.Save(ctx, usage)
}

// Reconcile recomputes a tenant's usage counters from the authoritative
// tables, repairing any drift from missed deltas.
func (g *QuotaGuard) Reconcile(ctx context.Context, tenantID uuid.UUID) (*billing.TenantUsage, error) {
	usage, err := g.usageRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if usage == nil {
		return nil, shared.NewMisconfigurationError("tenant billing records are missing")
	}

	projects, err := g.projectRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	domains, err := g.domainRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	members, err := g.membershipRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	orgAdmins, err := g.membershipRepo.CountByTenantAndRole(ctx, tenantID, identity.RoleOrgAdmin)
	if err != nil {
		return nil, err
	}

	usage.Recalculate(int(projects), int(domains), int(members), int(orgAdmins))
	if err := g.usageRepo.Save(ctx, usage); err != nil {
		return nil, err
	}

	g.logger.Info("Tenant usage reconciled",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("projects", projects),
		zap.Int64("domains", domains),
		zap.Int64("members", members),
		zap.Int64("org_admins", orgAdmins))
	return usage, nil
}

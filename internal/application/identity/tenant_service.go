package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// CreateTenantRequest carries the input for provisioning a tenant
type CreateTenantRequest struct {
	Slug    string  `json:"slug" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	PlanKey *string `json:"plan_key,omitempty"`
}

// UpdateTenantRequest carries partial tenant updates
type UpdateTenantRequest struct {
	Name *string `json:"name,omitempty"`
}

// SetCeilingRequest updates one resource ceiling; a nil value means unlimited
type SetCeilingRequest struct {
	Resource billing.ResourceType `json:"resource" binding:"required"`
	Value    *int                 `json:"value"`
}

// TenantService provisions and administers tenants. Every tenant owns
// exactly one quota row and one usage row, created with it; a tenant
// without its billing rows is a misconfiguration the quota guard refuses.
type TenantService struct {
	tenantRepo identity.TenantRepository
	planRepo   identity.PlanRepository
	quotaRepo  billing.QuotaRepository
	usageRepo  billing.UsageRepository
	logger     *zap.Logger
}

// NewTenantService creates a tenant service
func NewTenantService(
	tenantRepo identity.TenantRepository,
	planRepo identity.PlanRepository,
	quotaRepo billing.QuotaRepository,
	usageRepo billing.UsageRepository,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		planRepo:   planRepo,
		quotaRepo:  quotaRepo,
		usageRepo:  usageRepo,
		logger:     logger.Named("tenant"),
	}
}

// Create provisions a tenant together with its quota and usage rows. When
// a billing row cannot be written the tenant is rolled back so no tenant
// is ever left without them.
func (s *TenantService) Create(ctx context.Context, req CreateTenantRequest) (*identity.Tenant, error) {
	taken, err := s.tenantRepo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewAlreadyExistsError("Tenant")
	}

	tenant, err := identity.NewTenant(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}
	if req.PlanKey != nil && *req.PlanKey != "" {
		if err := s.assignablePlan(ctx, *req.PlanKey); err != nil {
			return nil, err
		}
		tenant.AssignPlan(*req.PlanKey)
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	quota, err := billing.NewTenantQuota(tenant.ID)
	if err != nil {
		return nil, err
	}
	usage, err := billing.NewTenantUsage(tenant.ID)
	if err != nil {
		return nil, err
	}
	if err := s.quotaRepo.Save(ctx, quota); err != nil {
		s.rollbackTenant(ctx, tenant.ID)
		return nil, err
	}
	if err := s.usageRepo.Save(ctx, usage); err != nil {
		s.rollbackTenant(ctx, tenant.ID)
		return nil, err
	}

	s.logger.Info("Tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug))
	return tenant, nil
}

func (s *TenantService) rollbackTenant(ctx context.Context, tenantID uuid.UUID) {
	if err := s.tenantRepo.Delete(ctx, tenantID); err != nil {
		s.logger.Error("Tenant left without billing rows, rollback failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
}

// Get finds a tenant by ID
func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewNotFoundError("Tenant")
	}
	return tenant, nil
}

// GetBySlug finds a tenant by its slug
func (s *TenantService) GetBySlug(ctx context.Context, slug string) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewNotFoundError("Tenant")
	}
	return tenant, nil
}

// List returns a page of tenants matching the filter
func (s *TenantService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[identity.Tenant], error) {
	tenants, err := s.tenantRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.tenantRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(tenants, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update applies partial changes to a tenant
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, req UpdateTenantRequest) (*identity.Tenant, error) {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := tenant.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// SetPlan assigns a plan by key, or clears the assignment for an empty key
func (s *TenantService) SetPlan(ctx context.Context, id uuid.UUID, planKey string) (*identity.Tenant, error) {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if planKey == "" {
		tenant.ClearPlan()
	} else {
		if err := s.assignablePlan(ctx, planKey); err != nil {
			return nil, err
		}
		tenant.AssignPlan(planKey)
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	s.logger.Info("Tenant plan changed",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("plan_key", planKey))
	return tenant, nil
}

// SetBillingStatus transitions a tenant's billing lifecycle state
func (s *TenantService) SetBillingStatus(ctx context.Context, id uuid.UUID, status billing.BillingStatus) (*billing.TenantQuota, error) {
	quota, err := s.quotaFor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := quota.SetBillingStatus(status); err != nil {
		return nil, err
	}
	if err := s.quotaRepo.Save(ctx, quota); err != nil {
		return nil, err
	}
	s.logger.Info("Billing status changed",
		zap.String("tenant_id", id.String()),
		zap.String("status", status.String()))
	return quota, nil
}

// SetCeiling updates one resource ceiling. Lowering a ceiling below the
// tenant's current count is refused so existing resources never become
// retroactively illegal.
func (s *TenantService) SetCeiling(ctx context.Context, id uuid.UUID, req SetCeilingRequest) (*billing.TenantQuota, error) {
	if !req.Resource.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid resource type")
	}
	quota, err := s.quotaFor(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Value != nil {
		usage, err := s.usageRepo.FindByTenant(ctx, id)
		if err != nil {
			return nil, err
		}
		if usage != nil && usage.CountFor(req.Resource) > *req.Value {
			return nil, shared.NewInvalidInputError("Quota ceiling cannot be lowered below current usage")
		}
	}

	if err := quota.SetCeiling(req.Resource, req.Value); err != nil {
		return nil, err
	}
	if err := s.quotaRepo.Save(ctx, quota); err != nil {
		return nil, err
	}
	return quota, nil
}

// GetQuota returns a tenant's quota row
func (s *TenantService) GetQuota(ctx context.Context, id uuid.UUID) (*billing.TenantQuota, error) {
	return s.quotaFor(ctx, id)
}

// SetAPIKey stores a provider API key on the tenant's quota row. The key
// is encrypted by the persistence layer before it touches the database.
func (s *TenantService) SetAPIKey(ctx context.Context, id uuid.UUID, provider, key string) error {
	if provider == "" || key == "" {
		return shared.NewInvalidInputError("Provider and key are required")
	}
	quota, err := s.quotaFor(ctx, id)
	if err != nil {
		return err
	}
	quota.SetAPIKey(provider, key)
	return s.quotaRepo.Save(ctx, quota)
}

func (s *TenantService) quotaFor(ctx context.Context, tenantID uuid.UUID) (*billing.TenantQuota, error) {
	if _, err := s.Get(ctx, tenantID); err != nil {
		return nil, err
	}
	quota, err := s.quotaRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if quota == nil {
		return nil, shared.NewMisconfigurationError("tenant billing records are missing")
	}
	return quota, nil
}

func (s *TenantService) assignablePlan(ctx context.Context, planKey string) error {
	plan, err := s.planRepo.FindByKey(ctx, planKey)
	if err != nil {
		return err
	}
	if plan == nil {
		return shared.NewNotFoundError("Plan")
	}
	if !plan.IsActive {
		return shared.NewInvalidInputError("Plan is not assignable")
	}
	return nil
}

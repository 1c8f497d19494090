package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// CreatePlanRequest carries the input for defining a plan
type CreatePlanRequest struct {
	Code         string          `json:"code" binding:"required"`
	Key          string          `json:"key" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	AnnualPrice  decimal.Decimal `json:"annual_price"`
	Currency     string          `json:"currency"`
	Features     map[string]bool `json:"features,omitempty"`
	Quotas       map[string]int  `json:"quotas,omitempty"`
}

// UpdatePlanRequest carries partial plan updates
type UpdatePlanRequest struct {
	Name     *string         `json:"name,omitempty"`
	IsActive *bool           `json:"is_active,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
	Quotas   map[string]int  `json:"quotas,omitempty"`
}

// PlanService manages the plan catalog
type PlanService struct {
	planRepo identity.PlanRepository
	logger   *zap.Logger
}

// NewPlanService creates a plan service
func NewPlanService(planRepo identity.PlanRepository, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		logger:   logger.Named("plan"),
	}
}

// Create defines a new plan
func (s *PlanService) Create(ctx context.Context, req CreatePlanRequest) (*identity.Plan, error) {
	taken, err := s.planRepo.ExistsByCodeOrKey(ctx, req.Code, req.Key)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewAlreadyExistsError("Plan")
	}

	plan, err := identity.NewPlan(req.Code, req.Key, req.Name, req.MonthlyPrice, req.AnnualPrice, req.Currency)
	if err != nil {
		return nil, err
	}
	for featureKey, enabled := range req.Features {
		plan.SetFeature(featureKey, enabled)
	}
	for metricKey, limit := range req.Quotas {
		if err := plan.SetQuota(metricKey, limit); err != nil {
			return nil, err
		}
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	s.logger.Info("Plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("key", plan.Key))
	return plan, nil
}

// Get finds a plan by ID
func (s *PlanService) Get(ctx context.Context, id uuid.UUID) (*identity.Plan, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, shared.NewNotFoundError("Plan")
	}
	return plan, nil
}

// GetByKey finds a plan by its machine-readable key
func (s *PlanService) GetByKey(ctx context.Context, key string) (*identity.Plan, error) {
	plan, err := s.planRepo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, shared.NewNotFoundError("Plan")
	}
	return plan, nil
}

// List returns all plans matching the filter
func (s *PlanService) List(ctx context.Context, filter shared.Filter) ([]identity.Plan, error) {
	return s.planRepo.FindAll(ctx, filter)
}

// ListActive returns the plans currently open for assignment
func (s *PlanService) ListActive(ctx context.Context) ([]identity.Plan, error) {
	return s.planRepo.FindActive(ctx)
}

// Update applies partial changes to a plan. Feature and quota entries are
// merged into the existing maps; omitted keys keep their values.
func (s *PlanService) Update(ctx context.Context, id uuid.UUID, req UpdatePlanRequest) (*identity.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewInvalidInputError("Plan name cannot be empty")
		}
		plan.Name = *req.Name
	}
	for featureKey, enabled := range req.Features {
		plan.SetFeature(featureKey, enabled)
	}
	for metricKey, limit := range req.Quotas {
		if err := plan.SetQuota(metricKey, limit); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			plan.Activate()
		} else {
			plan.Deactivate()
		}
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

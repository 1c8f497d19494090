package handler

import (
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/sitepulse/backend/internal/application/identity"
	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/identity"
)

// TenantHandler handles tenant administration HTTP requests
type TenantHandler struct {
	BaseHandler
	tenantService *identityapp.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *identityapp.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// TenantView is the outward shape of a tenant
type TenantView struct {
	ID        string          `json:"id"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	PlanKey   *string         `json:"plan_key,omitempty"`
	Features  map[string]bool `json:"feature_overrides,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// QuotaView is the outward shape of a tenant's billing quota row.
// Stored provider keys are reduced to their provider names.
type QuotaView struct {
	TenantID               string   `json:"tenant_id"`
	BillingStatus          string   `json:"billing_status"`
	MaxProjects            *int     `json:"max_projects"`
	MaxDomains             *int     `json:"max_domains"`
	MaxMembers             *int     `json:"max_members"`
	MaxOrgAdmins           *int     `json:"max_org_admins"`
	MaxAutomationsPerMonth *int     `json:"max_automations_per_month"`
	TrialEndsAt            *string  `json:"trial_ends_at,omitempty"`
	PeriodEndsAt           *string  `json:"period_ends_at,omitempty"`
	Notes                  string   `json:"notes,omitempty"`
	KeyProviders           []string `json:"key_providers,omitempty"`
}

// SetTenantPlanRequest carries a plan assignment; an empty key clears the plan
type SetTenantPlanRequest struct {
	PlanKey string `json:"plan_key"`
}

// SetBillingStatusRequest carries a billing status transition
type SetBillingStatusRequest struct {
	Status billing.BillingStatus `json:"status" binding:"required"`
}

// SetAPIKeyRequest stores a provider API key on the tenant's quota row
type SetAPIKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
	Key      string `json:"key" binding:"required"`
}

func toTenantView(t *identity.Tenant) TenantView {
	return TenantView{
		ID:        t.ID.String(),
		Slug:      t.Slug,
		Name:      t.Name,
		PlanKey:   t.PlanKey,
		Features:  t.Features,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

func toQuotaView(q *billing.TenantQuota) QuotaView {
	view := QuotaView{
		TenantID:               q.TenantID.String(),
		BillingStatus:          string(q.BillingStatus),
		MaxProjects:            q.MaxProjects,
		MaxDomains:             q.MaxDomains,
		MaxMembers:             q.MaxMembers,
		MaxOrgAdmins:           q.MaxOrgAdmins,
		MaxAutomationsPerMonth: q.MaxAutomationsPerMonth,
		Notes:                  q.Notes,
	}
	if q.TrialEndsAt != nil {
		s := q.TrialEndsAt.Format(time.RFC3339)
		view.TrialEndsAt = &s
	}
	if q.PeriodEndsAt != nil {
		s := q.PeriodEndsAt.Format(time.RFC3339)
		view.PeriodEndsAt = &s
	}
	for provider := range q.APIKeys {
		view.KeyProviders = append(view.KeyProviders, provider)
	}
	sort.Strings(view.KeyProviders)
	return view
}

// RegisterRoutes registers tenant administration routes
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tenants", h.Create)
	rg.GET("/tenants", h.List)
	rg.GET("/tenants/:id", h.GetByID)
	rg.GET("/tenants/slug/:slug", h.GetBySlug)
	rg.PUT("/tenants/:id", h.Update)
	rg.PUT("/tenants/:id/plan", h.SetPlan)
	rg.PUT("/tenants/:id/billing-status", h.SetBillingStatus)
	rg.GET("/tenants/:id/quota", h.GetQuota)
	rg.PUT("/tenants/:id/quota/ceiling", h.SetCeiling)
	rg.PUT("/tenants/:id/api-keys", h.SetAPIKey)
}

// Create provisions a tenant with its quota and usage rows
func (h *TenantHandler) Create(c *gin.Context) {
	var req identityapp.CreateTenantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTenantView(tenant))
}

// List returns a page of tenants
func (h *TenantHandler) List(c *gin.Context) {
	page, err := h.tenantService.List(c.Request.Context(), parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]TenantView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, toTenantView(&page.Items[i]))
	}
	h.SuccessWithMeta(c, views, page.Total, page.Page, page.PageSize)
}

// GetByID returns a single tenant
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenantView(tenant))
}

// GetBySlug returns a single tenant by its slug
func (h *TenantHandler) GetBySlug(c *gin.Context) {
	tenant, err := h.tenantService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenantView(tenant))
}

// Update applies partial tenant updates
func (h *TenantHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	var req identityapp.UpdateTenantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenantView(tenant))
}

// SetPlan assigns or clears the tenant's plan
func (h *TenantHandler) SetPlan(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	var req SetTenantPlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.SetPlan(c.Request.Context(), id, req.PlanKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenantView(tenant))
}

// SetBillingStatus transitions the tenant's billing status
func (h *TenantHandler) SetBillingStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	var req SetBillingStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quota, err := h.tenantService.SetBillingStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toQuotaView(quota))
}

// GetQuota returns the tenant's quota row
func (h *TenantHandler) GetQuota(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	quota, err := h.tenantService.GetQuota(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toQuotaView(quota))
}

// SetCeiling updates one resource ceiling on the tenant's quota row
func (h *TenantHandler) SetCeiling(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	var req identityapp.SetCeilingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quota, err := h.tenantService.SetCeiling(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toQuotaView(quota))
}

// SetAPIKey stores a provider API key for the tenant
func (h *TenantHandler) SetAPIKey(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	var req SetAPIKeyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.tenantService.SetAPIKey(c.Request.Context(), id, req.Provider, req.Key); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/sitepulse/backend/internal/application/identity"
	"github.com/sitepulse/backend/internal/domain/identity"
)

// PlanHandler handles plan catalog HTTP requests
type PlanHandler struct {
	BaseHandler
	planService *identityapp.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planService *identityapp.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// PlanView is the outward shape of a plan. Prices render as decimal
// strings to avoid float rounding on the wire.
type PlanView struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	MonthlyPrice string          `json:"monthly_price"`
	AnnualPrice  string          `json:"annual_price"`
	Currency     string          `json:"currency"`
	IsActive     bool            `json:"is_active"`
	Features     map[string]bool `json:"features,omitempty"`
	Quotas       map[string]int  `json:"quotas,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

func toPlanView(p *identity.Plan) PlanView {
	return PlanView{
		ID:           p.ID.String(),
		Code:         p.Code,
		Key:          p.Key,
		Name:         p.Name,
		MonthlyPrice: p.MonthlyPrice.String(),
		AnnualPrice:  p.AnnualPrice.String(),
		Currency:     p.Currency,
		IsActive:     p.IsActive,
		Features:     p.AllowedFeatures,
		Quotas:       p.Quotas,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

func toPlanViews(plans []identity.Plan) []PlanView {
	views := make([]PlanView, 0, len(plans))
	for i := range plans {
		views = append(views, toPlanView(&plans[i]))
	}
	return views
}

// RegisterRoutes registers plan catalog routes
func (h *PlanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/plans", h.Create)
	rg.GET("/plans", h.List)
	rg.GET("/plans/:id", h.GetByID)
	rg.GET("/plans/key/:key", h.GetByKey)
	rg.PUT("/plans/:id", h.Update)
}

// Create adds a plan to the catalog
func (h *PlanHandler) Create(c *gin.Context) {
	var req identityapp.CreatePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPlanView(plan))
}

// List returns plans; pass active=true to restrict to assignable ones
func (h *PlanHandler) List(c *gin.Context) {
	var (
		plans []identity.Plan
		err   error
	)
	if c.Query("active") == "true" {
		plans, err = h.planService.ListActive(c.Request.Context())
	} else {
		plans, err = h.planService.List(c.Request.Context(), parseFilter(c))
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPlanViews(plans))
}

// GetByID returns a single plan
func (h *PlanHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	plan, err := h.planService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPlanView(plan))
}

// GetByKey returns a single plan by its machine key
func (h *PlanHandler) GetByKey(c *gin.Context) {
	plan, err := h.planService.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPlanView(plan))
}

// Update applies partial plan updates
func (h *PlanHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}
	var req identityapp.UpdatePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPlanView(plan))
}

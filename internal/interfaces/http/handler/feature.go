package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sitepulse/backend/internal/application/entitlement"
	"github.com/sitepulse/backend/internal/domain/identity"
)

// FeatureHandler handles feature entitlement HTTP requests
type FeatureHandler struct {
	BaseHandler
	entitlementService *entitlement.Service
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(entitlementService *entitlement.Service) *FeatureHandler {
	return &FeatureHandler{entitlementService: entitlementService}
}

// SetFeatureOverrideRequest flips a feature on or off for a tenant,
// overriding whatever the plan says. A pointer distinguishes an explicit
// false from a missing field.
type SetFeatureOverrideRequest struct {
	Enabled *bool  `json:"enabled" binding:"required"`
	Reason  string `json:"reason,omitempty"`
}

// FeatureAuditView is the outward shape of one feature audit entry
type FeatureAuditView struct {
	ID         string  `json:"id"`
	FeatureKey string  `json:"feature_key"`
	Enabled    bool    `json:"enabled"`
	ActorID    *string `json:"actor_id,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func toFeatureAuditView(e *identity.FeatureAuditEntry) FeatureAuditView {
	view := FeatureAuditView{
		ID:         e.ID.String(),
		FeatureKey: e.FeatureKey,
		Enabled:    e.Enabled,
		Reason:     e.Reason,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
	if e.ActorID != nil {
		s := e.ActorID.String()
		view.ActorID = &s
	}
	return view
}

// RegisterRoutes registers feature resolution routes for the caller's tenant
func (h *FeatureHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/features/:key", h.Resolve)
}

// RegisterAdminRoutes registers override management routes; these are
// expected to sit behind the org admin gate.
func (h *FeatureHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PUT("/features/:key/override", h.SetOverride)
	rg.GET("/features/:key/audit", h.AuditTrail)
}

// Resolve reports whether a feature is available to the caller's tenant,
// where the decision came from and how much quota remains.
func (h *FeatureHandler) Resolve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	status, err := h.entitlementService.ResolveFeature(c.Request.Context(), tenantID, c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// SetOverride flips a feature override for the caller's tenant and records
// who did it and why.
func (h *FeatureHandler) SetOverride(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	var req SetFeatureOverrideRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var actorID *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		actorID = &userID
	}

	featureKey := c.Param("key")
	if err := h.entitlementService.SetFeatureOverride(c.Request.Context(), tenantID, featureKey, *req.Enabled, actorID, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}

	status, err := h.entitlementService.ResolveFeature(c.Request.Context(), tenantID, featureKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// AuditTrail returns the override history of a feature for the caller's
// tenant, newest first.
func (h *FeatureHandler) AuditTrail(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	entries, err := h.entitlementService.GetAuditTrail(c.Request.Context(), tenantID, c.Param("key"), parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]FeatureAuditView, 0, len(entries))
	for i := range entries {
		views = append(views, toFeatureAuditView(&entries[i]))
	}
	h.Success(c, views)
}

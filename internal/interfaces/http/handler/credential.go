package handler

import (
	"github.com/gin-gonic/gin"

	integrationapp "github.com/sitepulse/backend/internal/application/integration"
	"github.com/sitepulse/backend/internal/domain/integration"
)

// CredentialHandler handles provider credential HTTP requests
type CredentialHandler struct {
	BaseHandler
	credentialService *integrationapp.Service
}

// NewCredentialHandler creates a new credential handler
func NewCredentialHandler(credentialService *integrationapp.Service) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

// RotateCredentialRequest replaces a stored credential's secret
type RotateCredentialRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

func toCredentialViews(creds []integration.Integration) []integrationapp.CredentialView {
	views := make([]integrationapp.CredentialView, 0, len(creds))
	for i := range creds {
		views = append(views, integrationapp.View(&creds[i]))
	}
	return views
}

// RegisterRoutes registers credential routes
func (h *CredentialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/credentials", h.Create)
	rg.GET("/credentials", h.List)
	rg.GET("/credentials/:id", h.GetByID)
	rg.PUT("/credentials/:id/rotate", h.Rotate)
	rg.POST("/credentials/:id/test", h.Test)
	rg.DELETE("/credentials/:id", h.Delete)
}

// Create stores a provider credential for the caller's tenant or user.
// The secret is encrypted at rest and never returned.
func (h *CredentialHandler) Create(c *gin.Context) {
	var req integrationapp.CreateCredentialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	// Default ownership to the caller's tenant when neither owner is given.
	if req.TenantID == nil && req.UserID == nil {
		if tenantID, err := getTenantID(c); err == nil {
			req.TenantID = &tenantID
		}
	}

	cred, err := h.credentialService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, integrationapp.View(cred))
}

// List returns credentials; scope=user lists the caller's personal ones,
// otherwise the tenant's are returned.
func (h *CredentialHandler) List(c *gin.Context) {
	if c.Query("scope") == "user" {
		userID, err := getUserID(c)
		if err != nil {
			h.Unauthorized(c, "User context required")
			return
		}
		creds, err := h.credentialService.ListByUser(c.Request.Context(), userID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, toCredentialViews(creds))
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	creds, err := h.credentialService.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCredentialViews(creds))
}

// GetByID returns a single credential with its key masked
func (h *CredentialHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid credential ID")
		return
	}

	cred, err := h.credentialService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, integrationapp.View(cred))
}

// Rotate replaces the credential's secret and resets its health
func (h *CredentialHandler) Rotate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid credential ID")
		return
	}
	var req RotateCredentialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cred, err := h.credentialService.Rotate(c.Request.Context(), id, req.APIKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, integrationapp.View(cred))
}

// Test probes the provider with the stored secret and records the outcome
func (h *CredentialHandler) Test(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid credential ID")
		return
	}

	cred, err := h.credentialService.Test(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, integrationapp.View(cred))
}

// Delete removes a stored credential
func (h *CredentialHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid credential ID")
		return
	}

	if err := h.credentialService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/sitepulse/backend/internal/application/identity"
	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/infrastructure/auth"
)

// AuthHandler handles registration, login and member management
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// UserView is the outward shape of a user account. The password hash
// never leaves the service layer.
type UserView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// MembershipView is the outward shape of a tenant membership
type MembershipView struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse bundles the issued token with the authenticated identities
type LoginResponse struct {
	Token      *auth.IssuedToken `json:"token"`
	User       UserView          `json:"user"`
	Membership MembershipView    `json:"membership"`
}

// ChangeRoleRequest carries a member's new role
type ChangeRoleRequest struct {
	Role identity.MemberRole `json:"role" binding:"required"`
}

func toUserView(u *identity.User) UserView {
	return UserView{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toMembershipView(m *identity.Membership) MembershipView {
	return MembershipView{
		ID:        m.ID.String(),
		TenantID:  m.TenantID.String(),
		UserID:    m.UserID.String(),
		Role:      m.Role.String(),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// RegisterRoutes registers auth and member routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)

	rg.GET("/members", h.ListMembers)
	rg.PATCH("/members/:id/role", h.ChangeRole)
	rg.DELETE("/members/:id", h.RemoveMember)
}

// Register creates a user account and a membership in the target tenant
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toUserView(user))
}

// Login verifies credentials and issues a tenant-scoped access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LoginResponse{
		Token:      result.Token,
		User:       toUserView(result.User),
		Membership: toMembershipView(result.Membership),
	})
}

// ListMembers returns a page of the current tenant's memberships
func (h *AuthHandler) ListMembers(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found in token")
		return
	}

	page, err := h.authService.ListMembers(c.Request.Context(), tenantID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]MembershipView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, toMembershipView(&page.Items[i]))
	}
	h.SuccessWithMeta(c, views, page.Total, page.Page, page.PageSize)
}

// ChangeRole promotes or demotes a member
func (h *AuthHandler) ChangeRole(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid membership ID")
		return
	}
	var req ChangeRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	membership, err := h.authService.ChangeRole(c.Request.Context(), id, req.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMembershipView(membership))
}

// RemoveMember removes a membership and releases its seat
func (h *AuthHandler) RemoveMember(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid membership ID")
		return
	}

	if err := h.authService.RemoveMember(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

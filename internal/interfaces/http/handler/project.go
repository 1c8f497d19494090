package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	projectapp "github.com/sitepulse/backend/internal/application/project"
	"github.com/sitepulse/backend/internal/domain/project"
)

// ProjectHandler handles project, domain and page HTTP requests
type ProjectHandler struct {
	BaseHandler
	projectService *projectapp.Service
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *projectapp.Service) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ProjectView is the outward shape of a project
type ProjectView struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// DomainView is the outward shape of a project domain
type DomainView struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Host      string `json:"host"`
	Status    string `json:"status"`
	IsPrimary bool   `json:"is_primary"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

// PageView is the outward shape of a tracked page
type PageView struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Path      string `json:"path"`
	Title     string `json:"title,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AddDomainRequest submits a hostname for review
type AddDomainRequest struct {
	Host string `json:"host" binding:"required"`
}

// AddPageRequest registers a page path for auditing
type AddPageRequest struct {
	Path  string `json:"path" binding:"required"`
	Title string `json:"title,omitempty"`
}

func toProjectView(p *project.Project) ProjectView {
	return ProjectView{
		ID:          p.ID.String(),
		TenantID:    p.TenantID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toDomainView(d *project.Domain) DomainView {
	return DomainView{
		ID:        d.ID.String(),
		ProjectID: d.ProjectID.String(),
		Host:      d.Host,
		Status:    string(d.Status),
		IsPrimary: d.IsPrimary,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

func toPageView(p *project.Page) PageView {
	return PageView{
		ID:        p.ID.String(),
		ProjectID: p.ProjectID.String(),
		Path:      p.Path,
		Title:     p.Title,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

// RegisterRoutes registers project, domain and page routes
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/projects", h.Create)
	rg.GET("/projects", h.List)
	rg.GET("/projects/:id", h.GetByID)
	rg.PUT("/projects/:id", h.Update)
	rg.DELETE("/projects/:id", h.Delete)

	rg.POST("/projects/:id/domains", h.AddDomain)
	rg.GET("/projects/:id/domains", h.ListDomains)
	rg.PUT("/domains/:id/review", h.ReviewDomain)
	rg.PUT("/domains/:id/primary", h.SetPrimaryDomain)
	rg.DELETE("/domains/:id", h.DeleteDomain)

	rg.POST("/projects/:id/pages", h.AddPage)
	rg.GET("/projects/:id/pages", h.ListPages)
	rg.DELETE("/pages/:id", h.DeletePage)
}

// Create creates a project for the caller's tenant
func (h *ProjectHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	var req projectapp.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	proj, err := h.projectService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProjectView(proj))
}

// List returns a page of the caller's tenant projects
func (h *ProjectHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	page, err := h.projectService.List(c.Request.Context(), tenantID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]ProjectView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, toProjectView(&page.Items[i]))
	}
	h.SuccessWithMeta(c, views, page.Total, page.Page, page.PageSize)
}

// GetByID returns a single project
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	proj, err := h.projectService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectView(proj))
}

// Update applies partial project updates
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}
	var req projectapp.UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	proj, err := h.projectService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectView(proj))
}

// Delete removes a project and releases its standing-resource counts
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddDomain submits a hostname to the project; it enters review
func (h *ProjectHandler) AddDomain(c *gin.Context) {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}
	var req AddDomainRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domain, err := h.projectService.AddDomain(c.Request.Context(), projectID, req.Host)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toDomainView(domain))
}

// ListDomains returns the project's domains
func (h *ProjectHandler) ListDomains(c *gin.Context) {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	domains, err := h.projectService.ListDomains(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]DomainView, 0, len(domains))
	for i := range domains {
		views = append(views, toDomainView(&domains[i]))
	}
	h.Success(c, views)
}

// ReviewDomain records a reviewer's verdict on a pending domain
func (h *ProjectHandler) ReviewDomain(c *gin.Context) {
	domainID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid domain ID")
		return
	}
	var req projectapp.ReviewDomainRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domain, err := h.projectService.ReviewDomain(c.Request.Context(), domainID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDomainView(domain))
}

// SetPrimaryDomain promotes an approved domain to primary
func (h *ProjectHandler) SetPrimaryDomain(c *gin.Context) {
	domainID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid domain ID")
		return
	}

	domain, err := h.projectService.SetPrimaryDomain(c.Request.Context(), domainID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDomainView(domain))
}

// DeleteDomain removes a domain and releases its count
func (h *ProjectHandler) DeleteDomain(c *gin.Context) {
	domainID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid domain ID")
		return
	}

	if err := h.projectService.DeleteDomain(c.Request.Context(), domainID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddPage registers a page path under the project
func (h *ProjectHandler) AddPage(c *gin.Context) {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}
	var req AddPageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	page, err := h.projectService.AddPage(c.Request.Context(), projectID, req.Path, req.Title)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPageView(page))
}

// ListPages returns the project's tracked pages
func (h *ProjectHandler) ListPages(c *gin.Context) {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	pages, err := h.projectService.ListPages(c.Request.Context(), projectID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]PageView, 0, len(pages))
	for i := range pages {
		views = append(views, toPageView(&pages[i]))
	}
	h.Success(c, views)
}

// DeletePage removes a tracked page
func (h *ProjectHandler) DeletePage(c *gin.Context) {
	pageID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid page ID")
		return
	}

	if err := h.projectService.DeletePage(c.Request.Context(), pageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	auditapp "github.com/sitepulse/backend/internal/application/audit"
	"github.com/sitepulse/backend/internal/domain/audit"
)

// AuditHandler handles audit lifecycle HTTP requests
type AuditHandler struct {
	BaseHandler
	auditService *auditapp.Service
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *auditapp.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// AuditView is the outward shape of an audit. RawResult passes through
// untouched so clients can render the provider report.
type AuditView struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	PageID      *string         `json:"page_id,omitempty"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Trigger     string          `json:"trigger"`
	Runner      string          `json:"runner,omitempty"`
	Score       *int            `json:"score,omitempty"`
	Summary     string          `json:"summary,omitempty"`
	Error       *string         `json:"error,omitempty"`
	RawResult   json.RawMessage `json:"raw_result,omitempty"`
	StartedAt   *string         `json:"started_at,omitempty"`
	CompletedAt *string         `json:"completed_at,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

func toAuditView(a *audit.Audit) AuditView {
	view := AuditView{
		ID:        a.ID.String(),
		ProjectID: a.ProjectID.String(),
		Type:      string(a.Type),
		Status:    string(a.Status),
		Trigger:   string(a.Trigger),
		Runner:    a.Runner.String(),
		Score:     a.Score,
		Summary:   a.Summary,
		Error:     a.Error,
		RawResult: a.RawResult,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	if a.PageID != nil {
		s := a.PageID.String()
		view.PageID = &s
	}
	if a.StartedAt != nil {
		s := a.StartedAt.Format(time.RFC3339)
		view.StartedAt = &s
	}
	if a.CompletedAt != nil {
		s := a.CompletedAt.Format(time.RFC3339)
		view.CompletedAt = &s
	}
	return view
}

// RunAuditRequest optionally carries a caller-supplied provider key that
// takes precedence over stored credentials for this run only.
type RunAuditRequest struct {
	APIKey string `json:"api_key"`
}

// RegisterRoutes registers audit lifecycle routes
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/audits", h.Create)
	rg.GET("/audits/:id", h.GetByID)
	rg.POST("/audits/:id/run", h.Run)
	rg.GET("/projects/:id/audits", h.ListByProject)
	rg.GET("/projects/:id/audits/latest", h.LatestCompleted)
}

// Create queues a new audit; it runs asynchronously and returns pending
func (h *AuditHandler) Create(c *gin.Context) {
	var req auditapp.CreateAuditRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Trigger == "" {
		req.Trigger = audit.TriggerManual
	}

	run, err := h.auditService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toAuditView(run))
}

// Run executes a pending audit synchronously. The body is optional; a
// supplied key overrides stored credentials for this run.
func (h *AuditHandler) Run(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	var req RunAuditRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	run, err := h.auditService.Run(c.Request.Context(), id, req.APIKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAuditView(run))
}

// GetByID returns a single audit with its report blob
func (h *AuditHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	run, err := h.auditService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAuditView(run))
}

// ListByProject returns a page of a project's audits, newest first
func (h *AuditHandler) ListByProject(c *gin.Context) {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	page, err := h.auditService.List(c.Request.Context(), projectID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]AuditView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, toAuditView(&page.Items[i]))
	}
	h.SuccessWithMeta(c, views, page.Total, page.Page, page.PageSize)
}

// LatestCompleted returns the project's most recent completed audit
func (h *AuditHandler) LatestCompleted(c *gin.Context) {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	run, err := h.auditService.LatestCompleted(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAuditView(run))
}

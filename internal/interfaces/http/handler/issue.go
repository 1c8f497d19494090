package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditapp "github.com/sitepulse/backend/internal/application/audit"
	"github.com/sitepulse/backend/internal/domain/audit"
)

// IssueHandler handles issue and fix HTTP requests
type IssueHandler struct {
	BaseHandler
	issueService *auditapp.IssueService
	orchestrator *auditapp.FixOrchestrator
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(issueService *auditapp.IssueService, orchestrator *auditapp.FixOrchestrator) *IssueHandler {
	return &IssueHandler{issueService: issueService, orchestrator: orchestrator}
}

// IssueView is the outward shape of an audit finding
type IssueView struct {
	ID             string   `json:"id"`
	AuditID        string   `json:"audit_id"`
	Code           string   `json:"code"`
	Severity       string   `json:"severity"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	MetricValue    *float64 `json:"metric_value,omitempty"`
	Threshold      *float64 `json:"threshold,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	Status         string   `json:"status"`
	ResolvedAt     *string  `json:"resolved_at,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

// FixView is the outward shape of a proposed remediation
type FixView struct {
	ID        string           `json:"id"`
	IssueID   string           `json:"issue_id"`
	Provider  string           `json:"provider"`
	Content   audit.FixContent `json:"content"`
	CreatedBy *string          `json:"created_by,omitempty"`
	CreatedAt string           `json:"created_at"`
}

// UpdateIssueStatusRequest carries an issue status transition
type UpdateIssueStatusRequest struct {
	Status audit.IssueStatus `json:"status" binding:"required"`
}

// GenerateAiFixRequest selects the provider for an AI-generated fix.
// The API key is optional; stored tenant keys are used when absent.
type GenerateAiFixRequest struct {
	Provider string `json:"provider,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

func toIssueView(i *audit.Issue) IssueView {
	view := IssueView{
		ID:             i.ID.String(),
		AuditID:        i.AuditID.String(),
		Code:           i.Code,
		Severity:       string(i.Severity),
		Category:       string(i.Category),
		Description:    i.Description,
		MetricValue:    i.MetricValue,
		Threshold:      i.Threshold,
		Recommendation: i.Recommendation,
		Status:         string(i.Status),
		CreatedAt:      i.CreatedAt.Format(time.RFC3339),
	}
	if i.ResolvedAt != nil {
		s := i.ResolvedAt.Format(time.RFC3339)
		view.ResolvedAt = &s
	}
	return view
}

func toFixView(f *audit.Fix) FixView {
	view := FixView{
		ID:        f.ID.String(),
		IssueID:   f.IssueID.String(),
		Provider:  string(f.Provider),
		Content:   f.Content,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
	}
	if f.CreatedBy != nil {
		s := f.CreatedBy.String()
		view.CreatedBy = &s
	}
	return view
}

// RegisterRoutes registers issue and fix routes
func (h *IssueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audits/:id/issues", h.ListByAudit)
	rg.GET("/issues/:id", h.GetByID)
	rg.PATCH("/issues/:id/status", h.UpdateStatus)
	rg.POST("/issues/:id/fixes", h.CreateFix)
	rg.GET("/issues/:id/fixes", h.ListFixes)
	rg.POST("/issues/:id/fixes/ai", h.GenerateAiFix)
}

// ListByAudit returns a page of an audit's findings
func (h *IssueHandler) ListByAudit(c *gin.Context) {
	auditID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	page, err := h.issueService.List(c.Request.Context(), auditID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]IssueView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, toIssueView(&page.Items[i]))
	}
	h.SuccessWithMeta(c, views, page.Total, page.Page, page.PageSize)
}

// GetByID returns a single issue
func (h *IssueHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid issue ID")
		return
	}

	issue, err := h.issueService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toIssueView(issue))
}

// UpdateStatus transitions an issue through its remediation lifecycle
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid issue ID")
		return
	}
	var req UpdateIssueStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	issue, err := h.issueService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toIssueView(issue))
}

// CreateFix records a manually authored fix for an issue
func (h *IssueHandler) CreateFix(c *gin.Context) {
	issueID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid issue ID")
		return
	}
	var req auditapp.CreateFixRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	fix, err := h.issueService.CreateFix(c.Request.Context(), issueID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFixView(fix))
}

// ListFixes returns all fixes recorded for an issue, newest first
func (h *IssueHandler) ListFixes(c *gin.Context) {
	issueID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid issue ID")
		return
	}

	fixes, err := h.issueService.ListFixes(c.Request.Context(), issueID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]FixView, 0, len(fixes))
	for i := range fixes {
		views = append(views, toFixView(&fixes[i]))
	}
	h.Success(c, views)
}

// GenerateAiFix asks an AI provider to draft a remediation for the issue
func (h *IssueHandler) GenerateAiFix(c *gin.Context) {
	issueID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid issue ID")
		return
	}
	var req GenerateAiFixRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	var requestedBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		requestedBy = &userID
	}

	fix, err := h.orchestrator.GenerateAiFix(c.Request.Context(), issueID, req.Provider, req.APIKey, requestedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFixView(fix))
}

package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// CreateFixRequest carries the input for a manually authored fix
type CreateFixRequest struct {
	Fix       string     `json:"fix" binding:"required"`
	Impact    string     `json:"impact,omitempty"`
	CreatedBy *uuid.UUID `json:"-"`
}

// IssueService manages the remediation lifecycle of audit findings
type IssueService struct {
	issueRepo audit.IssueRepository
	auditRepo audit.AuditRepository
	fixRepo   audit.FixRepository
	logger    *zap.Logger
}

// NewIssueService creates an issue service
func NewIssueService(
	issueRepo audit.IssueRepository,
	auditRepo audit.AuditRepository,
	fixRepo audit.FixRepository,
	logger *zap.Logger,
) *IssueService {
	return &IssueService{
		issueRepo: issueRepo,
		auditRepo: auditRepo,
		fixRepo:   fixRepo,
		logger:    logger.Named("issues"),
	}
}

// List returns a page of an audit's issues. Severity, category and status
// filters are honored via filter.Filters.
func (s *IssueService) List(ctx context.Context, auditID uuid.UUID, filter shared.Filter) (*shared.Paginated[audit.Issue], error) {
	parent, err := s.auditRepo.FindByID(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, shared.NewNotFoundError("Audit")
	}

	issues, err := s.issueRepo.FindByAudit(ctx, auditID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.issueRepo.CountByAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(issues, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get finds an issue by ID
func (s *IssueService) Get(ctx context.Context, id uuid.UUID) (*audit.Issue, error) {
	issue, err := s.issueRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, shared.NewNotFoundError("Issue")
	}
	return issue, nil
}

// UpdateStatus transitions an issue's remediation status
func (s *IssueService) UpdateStatus(ctx context.Context, id uuid.UUID, status audit.IssueStatus) (*audit.Issue, error) {
	issue, err := s.issueRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, shared.NewNotFoundError("Issue")
	}

	if err := issue.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.issueRepo.Save(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("Issue status updated",
		zap.String("issue_id", issue.ID.String()),
		zap.String("status", issue.Status.String()))
	return issue, nil
}

// CreateFix records a manually authored fix for an issue
func (s *IssueService) CreateFix(ctx context.Context, issueID uuid.UUID, req CreateFixRequest) (*audit.Fix, error) {
	issue, err := s.issueRepo.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, shared.NewNotFoundError("Issue")
	}

	fix, err := audit.NewFix(issue.ID, audit.FixProviderManual, audit.FixContent{
		Fix:    req.Fix,
		Impact: req.Impact,
	}, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	if err := s.fixRepo.Save(ctx, fix); err != nil {
		return nil, err
	}
	return fix, nil
}

// ListFixes returns an issue's fixes, newest first
func (s *IssueService) ListFixes(ctx context.Context, issueID uuid.UUID) ([]audit.Fix, error) {
	issue, err := s.issueRepo.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, shared.NewNotFoundError("Issue")
	}
	return s.fixRepo.FindByIssue(ctx, issueID)
}

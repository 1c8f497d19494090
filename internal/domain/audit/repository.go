package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// AuditRepository defines the interface for audit persistence
type AuditRepository interface {
	// FindByID finds an audit by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Audit, error)

	// FindByProject lists a project's audits matching the filter
	FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]Audit, error)

	// CountByProject counts a project's audits matching the filter
	CountByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (int64, error)

	// FindLatestCompleted finds the most recent completed audit of a project, nil if none
	FindLatestCompleted(ctx context.Context, projectID uuid.UUID) (*Audit, error)

	// Save creates or updates an audit
	Save(ctx context.Context, audit *Audit) error

	// Delete deletes an audit
	Delete(ctx context.Context, id uuid.UUID) error
}

// IssueRepository defines the interface for issue persistence
type IssueRepository interface {
	// FindByID finds an issue by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Issue, error)

	// FindByAudit lists an audit's issues matching the filter
	FindByAudit(ctx context.Context, auditID uuid.UUID, filter shared.Filter) ([]Issue, error)

	// CountByAudit counts an audit's issues
	CountByAudit(ctx context.Context, auditID uuid.UUID) (int64, error)

	// Save creates or updates an issue
	Save(ctx context.Context, issue *Issue) error

	// SaveBatch persists a collection of issues in one write
	SaveBatch(ctx context.Context, issues []*Issue) error

	// Delete deletes an issue
	Delete(ctx context.Context, id uuid.UUID) error
}

// FixRepository defines the interface for fix persistence
type FixRepository interface {
	// FindByID finds a fix by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Fix, error)

	// FindByIssue lists an issue's fixes, newest first
	FindByIssue(ctx context.Context, issueID uuid.UUID) ([]Fix, error)

	// Save creates or updates a fix
	Save(ctx context.Context, fix *Fix) error

	// Delete deletes a fix
	Delete(ctx context.Context, id uuid.UUID) error
}

package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	billingapp "github.com/sitepulse/backend/internal/application/billing"
	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/project"
	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/infrastructure/pagespeed"
)

// Scorer runs a scoring strategy for an audit type against a target URL
type Scorer interface {
	Score(ctx context.Context, targetURL, apiKey string, auditType audit.Type) (*pagespeed.Outcome, error)
}

// Dispatcher schedules asynchronous execution of a freshly created audit.
// Dispatch must return without waiting for the run to finish.
type Dispatcher interface {
	Dispatch(auditID uuid.UUID)
}

// Archiver stores raw scoring reports outside the primary database
type Archiver interface {
	Store(ctx context.Context, auditID uuid.UUID, raw json.RawMessage) error
}

// MetricsRecorder counts audit lifecycle events for observability.
// All methods must be non-blocking.
type MetricsRecorder interface {
	RecordAuditStarted(ctx context.Context, auditType string)
	RecordAuditCompleted(ctx context.Context, auditType string)
	RecordAuditFailed(ctx context.Context, auditType string)
	RecordQuotaRefusal(ctx context.Context, metricKey string)
}

// CreateAuditRequest carries the input for creating an audit
type CreateAuditRequest struct {
	ProjectID uuid.UUID     `json:"project_id" binding:"required"`
	Type      audit.Type    `json:"type" binding:"required"`
	PageID    *uuid.UUID    `json:"page_id,omitempty"`
	Trigger   audit.Trigger `json:"trigger,omitempty"`
}

// Service drives the audit lifecycle: creation, asynchronous dispatch,
// execution against the project's primary approved domain, and issue
// derivation. An audit transitions pending -> running -> completed|failed
// and the running state is persisted before any network call goes out.
type Service struct {
	auditRepo   audit.AuditRepository
	issueRepo   audit.IssueRepository
	projectRepo project.ProjectRepository
	pageRepo    project.PageRepository
	domainRepo  project.DomainRepository
	scorer      Scorer
	meter       *billingapp.UsageMeter
	credentials *CredentialResolver
	dispatcher  Dispatcher
	archiver    Archiver
	metrics     MetricsRecorder
	logger      *zap.Logger
}

// NewService creates an audit Service. dispatcher and archiver may be nil:
// without a dispatcher created audits wait for an explicit Run call, and
// without an archiver raw reports live only in the database.
func NewService(
	auditRepo audit.AuditRepository,
	issueRepo audit.IssueRepository,
	projectRepo project.ProjectRepository,
	pageRepo project.PageRepository,
	domainRepo project.DomainRepository,
	scorer Scorer,
	meter *billingapp.UsageMeter,
	credentials *CredentialResolver,
	dispatcher Dispatcher,
	archiver Archiver,
	logger *zap.Logger,
) *Service {
	return &Service{
		auditRepo:   auditRepo,
		issueRepo:   issueRepo,
		projectRepo: projectRepo,
		pageRepo:    pageRepo,
		domainRepo:  domainRepo,
		scorer:      scorer,
		meter:       meter,
		credentials: credentials,
		dispatcher:  dispatcher,
		archiver:    archiver,
		logger:      logger.Named("audit"),
	}
}

// SetDispatcher wires the asynchronous dispatcher after construction.
// The scheduler needs the service to run audits and the service needs the
// scheduler to dispatch them, so one side is attached late.
func (s *Service) SetDispatcher(dispatcher Dispatcher) {
	s.dispatcher = dispatcher
}

// SetMetrics attaches a metrics recorder. May be left unset, in which case
// lifecycle counters are not emitted.
func (s *Service) SetMetrics(metrics MetricsRecorder) {
	s.metrics = metrics
}

// Create validates the target project (and page, when given), persists a
// pending audit and hands it to the dispatcher for asynchronous execution.
func (s *Service) Create(ctx context.Context, req CreateAuditRequest) (*audit.Audit, error) {
	proj, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, shared.NewNotFoundError("Project")
	}

	if req.PageID != nil {
		page, err := s.pageRepo.FindByID(ctx, *req.PageID)
		if err != nil {
			return nil, err
		}
		if page == nil || page.ProjectID != proj.ID {
			return nil, shared.NewNotFoundError("Page")
		}
	}

	newAudit, err := audit.NewAudit(req.ProjectID, req.Type, req.PageID, req.Trigger)
	if err != nil {
		return nil, err
	}
	if err := s.auditRepo.Save(ctx, newAudit); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(newAudit.ID)
	}

	s.logger.Info("Audit created",
		zap.String("audit_id", newAudit.ID.String()),
		zap.String("project_id", proj.ID.String()),
		zap.String("type", newAudit.Type.String()),
		zap.String("trigger", newAudit.Trigger.String()))
	return newAudit, nil
}

// Run executes an audit. Running or completed audits are returned unchanged
// so a duplicate dispatch is harmless. On any execution error the audit is
// persisted as failed with the error text recorded, and the error is
// returned to the caller. apiKey overrides stored and configured keys when
// non-empty.
func (s *Service) Run(ctx context.Context, auditID uuid.UUID, apiKey string) (*audit.Audit, error) {
	current, err := s.auditRepo.FindByID(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, shared.NewNotFoundError("Audit")
	}
	if current.Status == audit.StatusCompleted || current.Status == audit.StatusRunning {
		return current, nil
	}

	if err := current.Start(); err != nil {
		return nil, err
	}
	if err := s.auditRepo.Save(ctx, current); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordAuditStarted(ctx, current.Type.String())
	}

	if err := s.execute(ctx, current, apiKey); err != nil {
		current.Fail(err.Error())
		if saveErr := s.auditRepo.Save(ctx, current); saveErr != nil {
			s.logger.Error("Failed to persist audit failure",
				zap.String("audit_id", current.ID.String()),
				zap.Error(saveErr))
		}
		s.logger.Warn("Audit failed",
			zap.String("audit_id", current.ID.String()),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordAuditFailed(ctx, current.Type.String())
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordAuditCompleted(ctx, current.Type.String())
	}
	return current, nil
}

func (s *Service) execute(ctx context.Context, run *audit.Audit, apiKey string) error {
	proj, err := s.projectRepo.FindByID(ctx, run.ProjectID)
	if err != nil {
		return err
	}
	if proj == nil {
		return shared.NewNotFoundError("Project")
	}

	primary, err := s.domainRepo.FindPrimaryApproved(ctx, run.ProjectID)
	if err != nil {
		return err
	}
	if primary == nil {
		return shared.NewInvalidInputError("no approved primary domain")
	}

	key := apiKey
	if key == "" && s.credentials != nil {
		key, err = s.credentials.Resolve(ctx, proj.TenantID, ProviderPageSpeed)
		if err != nil {
			s.logger.Warn("Tenant credential lookup failed, continuing without a key",
				zap.String("tenant_id", proj.TenantID.String()),
				zap.Error(err))
			key = ""
		}
	}

	outcome, err := s.scorer.Score(ctx, primary.CanonicalURL(), key, run.Type)
	if err != nil {
		return err
	}

	if err := s.meter.Increment(ctx, proj.TenantID, billing.MetricSeoRuns, 1); err != nil {
		var domainErr *shared.DomainError
		if s.metrics != nil && errors.As(err, &domainErr) && domainErr.Code == shared.ErrCodeQuotaExceeded {
			s.metrics.RecordQuotaRefusal(ctx, billing.MetricSeoRuns)
		}
		return err
	}

	if err := run.Complete(outcome.Score(), summarize(outcome), outcome.Raw, outcome.Runner); err != nil {
		return err
	}
	if err := s.auditRepo.Save(ctx, run); err != nil {
		return err
	}

	if s.archiver != nil && len(outcome.Raw) > 0 {
		if err := s.archiver.Store(ctx, run.ID, outcome.Raw); err != nil {
			s.logger.Warn("Raw report archiving failed",
				zap.String("audit_id", run.ID.String()),
				zap.Error(err))
		}
	}

	if len(outcome.Issues) > 0 {
		issues := make([]*audit.Issue, 0, len(outcome.Issues))
		for _, draft := range outcome.Issues {
			issue, err := audit.NewIssue(run.ID, draft.Code, draft.Severity, draft.Category, draft.Description)
			if err != nil {
				s.logger.Warn("Skipping malformed issue draft",
					zap.String("audit_id", run.ID.String()),
					zap.String("code", draft.Code),
					zap.Error(err))
				continue
			}
			issue.MetricValue = draft.MetricValue
			issue.Threshold = draft.Threshold
			issue.Recommendation = draft.Recommendation
			issues = append(issues, issue)
		}
		if err := s.issueRepo.SaveBatch(ctx, issues); err != nil {
			return err
		}
	}

	s.logger.Info("Audit completed",
		zap.String("audit_id", run.ID.String()),
		zap.Intp("score", run.Score),
		zap.String("runner", run.Runner.String()),
		zap.Int("issues", len(outcome.Issues)))
	return nil
}

// Get finds an audit by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*audit.Audit, error) {
	found, err := s.auditRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, shared.NewNotFoundError("Audit")
	}
	return found, nil
}

// List returns a page of a project's audits, newest first by default
func (s *Service) List(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (*shared.Paginated[audit.Audit], error) {
	proj, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, shared.NewNotFoundError("Project")
	}

	audits, err := s.auditRepo.FindByProject(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.auditRepo.CountByProject(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(audits, total, filter.Page, filter.PageSize)
	return &page, nil
}

// LatestCompleted returns a project's most recent completed audit
func (s *Service) LatestCompleted(ctx context.Context, projectID uuid.UUID) (*audit.Audit, error) {
	latest, err := s.auditRepo.FindLatestCompleted(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, shared.NewNotFoundError("Completed audit")
	}
	return latest, nil
}

func summarize(outcome *pagespeed.Outcome) string {
	report := outcome.Report
	if outcome.SeoOnly {
		return fmt.Sprintf("SEO score %d, %d issue(s) found",
			audit.CategoryScore(report.SEO), len(outcome.Issues))
	}
	return fmt.Sprintf("Overall %d (performance %d, accessibility %d, best practices %d, SEO %d), %d issue(s) found",
		report.OverallScore(),
		audit.CategoryScore(report.Performance),
		audit.CategoryScore(report.Accessibility),
		audit.CategoryScore(report.BestPractices),
		audit.CategoryScore(report.SEO),
		len(outcome.Issues))
}

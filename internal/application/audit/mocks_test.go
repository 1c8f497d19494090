package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/integration"
	"github.com/sitepulse/backend/internal/domain/project"
	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/infrastructure/pagespeed"
)

// MockAuditRepository is a mock implementation of audit.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Audit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Audit), args.Error(1)
}

func (m *MockAuditRepository) FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]audit.Audit, error) {
	args := m.Called(ctx, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Audit), args.Error(1)
}

func (m *MockAuditRepository) CountByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, projectID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepository) FindLatestCompleted(ctx context.Context, projectID uuid.UUID) (*audit.Audit, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Audit), args.Error(1)
}

func (m *MockAuditRepository) Save(ctx context.Context, a *audit.Audit) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAuditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockIssueRepository is a mock implementation of audit.IssueRepository
type MockIssueRepository struct {
	mock.Mock
}

func (m *MockIssueRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Issue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Issue), args.Error(1)
}

func (m *MockIssueRepository) FindByAudit(ctx context.Context, auditID uuid.UUID, filter shared.Filter) ([]audit.Issue, error) {
	args := m.Called(ctx, auditID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Issue), args.Error(1)
}

func (m *MockIssueRepository) CountByAudit(ctx context.Context, auditID uuid.UUID) (int64, error) {
	args := m.Called(ctx, auditID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIssueRepository) Save(ctx context.Context, issue *audit.Issue) error {
	args := m.Called(ctx, issue)
	return args.Error(0)
}

func (m *MockIssueRepository) SaveBatch(ctx context.Context, issues []*audit.Issue) error {
	args := m.Called(ctx, issues)
	return args.Error(0)
}

func (m *MockIssueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFixRepository is a mock implementation of audit.FixRepository
type MockFixRepository struct {
	mock.Mock
}

func (m *MockFixRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Fix, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Fix), args.Error(1)
}

func (m *MockFixRepository) FindByIssue(ctx context.Context, issueID uuid.UUID) ([]audit.Fix, error) {
	args := m.Called(ctx, issueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Fix), args.Error(1)
}

func (m *MockFixRepository) Save(ctx context.Context, fix *audit.Fix) error {
	args := m.Called(ctx, fix)
	return args.Error(0)
}

func (m *MockFixRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProjectRepository is a mock implementation of project.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByTenantAndSlug(ctx context.Context, tenantID uuid.UUID, slug string) (*project.Project, error) {
	args := m.Called(ctx, tenantID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]project.Project, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Project), args.Error(1)
}

func (m *MockProjectRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) ExistsByTenantAndSlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	args := m.Called(ctx, tenantID, slug)
	return args.Bool(0), args.Error(1)
}

// MockPageRepository is a mock implementation of project.PageRepository
type MockPageRepository struct {
	mock.Mock
}

func (m *MockPageRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Page, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Page), args.Error(1)
}

func (m *MockPageRepository) FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]project.Page, error) {
	args := m.Called(ctx, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Page), args.Error(1)
}

func (m *MockPageRepository) Save(ctx context.Context, page *project.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDomainRepository is a mock implementation of project.DomainRepository
type MockDomainRepository struct {
	mock.Mock
}

func (m *MockDomainRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Domain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Domain), args.Error(1)
}

func (m *MockDomainRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]project.Domain, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Domain), args.Error(1)
}

func (m *MockDomainRepository) FindPrimaryApproved(ctx context.Context, projectID uuid.UUID) (*project.Domain, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Domain), args.Error(1)
}

func (m *MockDomainRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDomainRepository) Save(ctx context.Context, domain *project.Domain) error {
	args := m.Called(ctx, domain)
	return args.Error(0)
}

func (m *MockDomainRepository) SavePrimary(ctx context.Context, domain *project.Domain) error {
	args := m.Called(ctx, domain)
	return args.Error(0)
}

func (m *MockDomainRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDomainRepository) ExistsByProjectAndHost(ctx context.Context, projectID uuid.UUID, host string) (bool, error) {
	args := m.Called(ctx, projectID, host)
	return args.Bool(0), args.Error(1)
}

func (m *MockDomainRepository) ExistsByTenantAndHost(ctx context.Context, tenantID uuid.UUID, host string) (bool, error) {
	args := m.Called(ctx, tenantID, host)
	return args.Bool(0), args.Error(1)
}

// MockIntegrationRepository is a mock implementation of integration.Repository
type MockIntegrationRepository struct {
	mock.Mock
}

func (m *MockIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]integration.Integration, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]integration.Integration, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindByTenantAndProvider(ctx context.Context, tenantID uuid.UUID, provider string) (*integration.Integration, error) {
	args := m.Called(ctx, tenantID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*integration.Integration, error) {
	args := m.Called(ctx, userID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) Save(ctx context.Context, i *integration.Integration) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockIntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQuotaRepository is a mock implementation of billing.QuotaRepository
type MockQuotaRepository struct {
	mock.Mock
}

func (m *MockQuotaRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TenantQuota, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TenantQuota), args.Error(1)
}

func (m *MockQuotaRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*billing.TenantQuota, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TenantQuota), args.Error(1)
}

func (m *MockQuotaRepository) Save(ctx context.Context, quota *billing.TenantQuota) error {
	args := m.Called(ctx, quota)
	return args.Error(0)
}

func (m *MockQuotaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindBySlug(ctx context.Context, slug string) (*identity.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockPlanRepository is a mock implementation of identity.PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindByKey(ctx context.Context, key string) (*identity.Plan, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindByCode(ctx context.Context, code string) (*identity.Plan, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Plan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindActive(ctx context.Context) ([]identity.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Plan), args.Error(1)
}

func (m *MockPlanRepository) Save(ctx context.Context, plan *identity.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPlanRepository) ExistsByCodeOrKey(ctx context.Context, code, key string) (bool, error) {
	args := m.Called(ctx, code, key)
	return args.Bool(0), args.Error(1)
}

// MockUsageLogRepository is a mock implementation of billing.UsageLogRepository
type MockUsageLogRepository struct {
	mock.Mock
}

func (m *MockUsageLogRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, metricKey string, periodStart time.Time) (*billing.UsageLog, error) {
	args := m.Called(ctx, tenantID, metricKey, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.UsageLog), args.Error(1)
}

func (m *MockUsageLogRepository) SumForRange(ctx context.Context, tenantID uuid.UUID, metricKey string, from, to time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, metricKey, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUsageLogRepository) Accumulate(ctx context.Context, tenantID uuid.UUID, metricKey string, period billing.Period, amount, limit int64) (bool, error) {
	args := m.Called(ctx, tenantID, metricKey, period, amount, limit)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsageLogRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.UsageLog, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.UsageLog), args.Error(1)
}

// MockScorer is a mock implementation of Scorer
type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(ctx context.Context, targetURL, apiKey string, auditType audit.Type) (*pagespeed.Outcome, error) {
	args := m.Called(ctx, targetURL, apiKey, auditType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagespeed.Outcome), args.Error(1)
}

// recordingDispatcher records dispatched audit IDs
type recordingDispatcher struct {
	dispatched []uuid.UUID
}

func (d *recordingDispatcher) Dispatch(auditID uuid.UUID) {
	d.dispatched = append(d.dispatched, auditID)
}

// recordingArchiver records archived raw reports
type recordingArchiver struct {
	stored map[uuid.UUID]json.RawMessage
	err    error
}

func (a *recordingArchiver) Store(_ context.Context, auditID uuid.UUID, raw json.RawMessage) error {
	if a.err != nil {
		return a.err
	}
	if a.stored == nil {
		a.stored = make(map[uuid.UUID]json.RawMessage)
	}
	a.stored[auditID] = raw
	return nil
}

// stubCompleter is a scripted ai.Completer
type stubCompleter struct {
	name      string
	responses []string
	errs      []error
	calls     int
	prompts   []string
	keys      []string
}

func (c *stubCompleter) Name() string {
	return c.name
}

func (c *stubCompleter) Complete(_ context.Context, prompt, apiKey string) (string, error) {
	idx := c.calls
	c.calls++
	c.prompts = append(c.prompts, prompt)
	c.keys = append(c.keys, apiKey)
	var err error
	if idx < len(c.errs) {
		err = c.errs[idx]
	}
	if err != nil {
		return "", err
	}
	if idx < len(c.responses) {
		return c.responses[idx], nil
	}
	return "", nil
}

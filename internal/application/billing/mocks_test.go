package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/project"
	"github.com/sitepulse/backend/internal/domain/shared"
)

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

// MockUsageRepository is a mock implementation of billing.UsageRepository
type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TenantUsage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TenantUsage), args.Error(1)
}

func (m *MockUsageRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*billing.TenantUsage, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TenantUsage), args.Error(1)
}

func (m *MockUsageRepository) Save(ctx context.Context, usage *billing.TenantUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

func (m *MockUsageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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
	return args.Get(0).([]billing.UsageLog), args.Error(1)
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
	return args.Get(0).([]identity.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindActive(ctx context.Context) ([]identity.Plan, error) {
	args := m.Called(ctx)
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

func (m *MockDomainRepository) Save(ctx context.Context, d *project.Domain) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDomainRepository) SavePrimary(ctx context.Context, d *project.Domain) error {
	args := m.Called(ctx, d)
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

// MockMembershipRepository is a mock implementation of identity.MembershipRepository
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindByTenantAndUser(ctx context.Context, tenantID, userID uuid.UUID) (*identity.Membership, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Membership, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]identity.Membership), args.Error(1)
}

func (m *MockMembershipRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMembershipRepository) CountByTenantAndRole(ctx context.Context, tenantID uuid.UUID, role identity.MemberRole) (int64, error) {
	args := m.Called(ctx, tenantID, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMembershipRepository) Save(ctx context.Context, membership *identity.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

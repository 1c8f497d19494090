package entitlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/shared"
)

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

// MockFeatureAuditRepository is a mock implementation of identity.FeatureAuditRepository
type MockFeatureAuditRepository struct {
	mock.Mock
}

func (m *MockFeatureAuditRepository) Append(ctx context.Context, entry *identity.FeatureAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockFeatureAuditRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.FeatureAuditEntry, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]identity.FeatureAuditEntry), args.Error(1)
}

func (m *MockFeatureAuditRepository) FindByTenantAndFeature(ctx context.Context, tenantID uuid.UUID, featureKey string) ([]identity.FeatureAuditEntry, error) {
	args := m.Called(ctx, tenantID, featureKey)
	return args.Get(0).([]identity.FeatureAuditEntry), args.Error(1)
}

// fakeStatusCache is an in-process StatusCache for asserting cache behavior.
type fakeStatusCache struct {
	mu      sync.Mutex
	entries map[string]*FeatureStatus
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{entries: make(map[string]*FeatureStatus)}
}

func (c *fakeStatusCache) key(tenantID uuid.UUID, featureKey string) string {
	return tenantID.String() + ":" + featureKey
}

func (c *fakeStatusCache) Get(_ context.Context, tenantID uuid.UUID, featureKey string) (*FeatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[c.key(tenantID, featureKey)], nil
}

func (c *fakeStatusCache) Set(_ context.Context, tenantID uuid.UUID, featureKey string, status *FeatureStatus, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(tenantID, featureKey)] = status
	return nil
}

func (c *fakeStatusCache) Invalidate(_ context.Context, tenantID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := tenantID.String() + ":"
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *fakeStatusCache) Close() error { return nil }

func newServiceFixture(t *testing.T, cache StatusCache) (*Service, *MockTenantRepository, *MockPlanRepository, *MockUsageLogRepository, *MockFeatureAuditRepository) {
	tenantRepo := new(MockTenantRepository)
	planRepo := new(MockPlanRepository)
	usageLogs := new(MockUsageLogRepository)
	auditRepo := new(MockFeatureAuditRepository)
	svc := NewService(tenantRepo, planRepo, usageLogs, auditRepo, cache, zaptest.NewLogger(t))
	return svc, tenantRepo, planRepo, usageLogs, auditRepo
}

func proTenant(t *testing.T) *identity.Tenant {
	tenant, err := identity.NewTenant("acme", "Acme")
	require.NoError(t, err)
	tenant.AssignPlan("pro")
	return tenant
}

func proPlan(t *testing.T) *identity.Plan {
	plan, err := identity.NewPlan("PLN-PRO", "pro", "Pro", decimal.NewFromInt(29), decimal.NewFromInt(290), "USD")
	require.NoError(t, err)
	plan.SetFeature("seo", true)
	require.NoError(t, plan.SetQuota(billing.MetricKeyForFeature("seo"), 50))
	return plan
}

func TestService_ResolveFeature(t *testing.T) {
	ctx := context.Background()

	t.Run("override wins over the plan", func(t *testing.T) {
		svc, tenantRepo, _, _, _ := newServiceFixture(t, nil)
		tenant := proTenant(t)
		require.NoError(t, tenant.SetFeatureOverride("seo", false))
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)

		status, err := svc.ResolveFeature(ctx, tenant.ID, "seo")
		require.NoError(t, err)
		assert.False(t, status.Enabled)
		require.NotNil(t, status.Source)
		assert.Equal(t, SourceOverride, *status.Source)
		assert.Nil(t, status.QuotaLeft)
	})

	t.Run("plan grant reports remaining quota", func(t *testing.T) {
		svc, tenantRepo, planRepo, usageLogs, _ := newServiceFixture(t, nil)
		tenant := proTenant(t)
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		planRepo.On("FindByKey", ctx, "pro").Return(proPlan(t), nil)
		usageLogs.On("SumForRange", ctx, tenant.ID, "seo_runs_month", mock.Anything, mock.Anything).Return(int64(20), nil)

		status, err := svc.ResolveFeature(ctx, tenant.ID, "seo")
		require.NoError(t, err)
		assert.True(t, status.Enabled)
		require.NotNil(t, status.Source)
		assert.Equal(t, SourcePlan, *status.Source)
		require.NotNil(t, status.QuotaLeft)
		assert.Equal(t, int64(30), *status.QuotaLeft)
	})

	t.Run("quota left never goes negative", func(t *testing.T) {
		svc, tenantRepo, planRepo, usageLogs, _ := newServiceFixture(t, nil)
		tenant := proTenant(t)
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		planRepo.On("FindByKey", ctx, "pro").Return(proPlan(t), nil)
		usageLogs.On("SumForRange", ctx, tenant.ID, "seo_runs_month", mock.Anything, mock.Anything).Return(int64(80), nil)

		status, err := svc.ResolveFeature(ctx, tenant.ID, "seo")
		require.NoError(t, err)
		require.NotNil(t, status.QuotaLeft)
		assert.Equal(t, int64(0), *status.QuotaLeft)
	})

	t.Run("feature not in the plan is disabled with no source", func(t *testing.T) {
		svc, tenantRepo, planRepo, _, _ := newServiceFixture(t, nil)
		tenant := proTenant(t)
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		planRepo.On("FindByKey", ctx, "pro").Return(proPlan(t), nil)

		status, err := svc.ResolveFeature(ctx, tenant.ID, "ai_fixes")
		require.NoError(t, err)
		assert.False(t, status.Enabled)
		assert.Nil(t, status.Source)
	})

	t.Run("tenant without a plan has nothing enabled", func(t *testing.T) {
		svc, tenantRepo, _, _, _ := newServiceFixture(t, nil)
		tenant, err := identity.NewTenant("planless", "Planless")
		require.NoError(t, err)
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)

		status, err := svc.ResolveFeature(ctx, tenant.ID, "seo")
		require.NoError(t, err)
		assert.False(t, status.Enabled)
		assert.Nil(t, status.Source)
	})

	t.Run("an inactive plan grants nothing", func(t *testing.T) {
		svc, tenantRepo, planRepo, _, _ := newServiceFixture(t, nil)
		tenant := proTenant(t)
		plan := proPlan(t)
		plan.Deactivate()
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		planRepo.On("FindByKey", ctx, "pro").Return(plan, nil)

		status, err := svc.ResolveFeature(ctx, tenant.ID, "seo")
		require.NoError(t, err)
		assert.False(t, status.Enabled)
	})

	t.Run("unknown tenant fails", func(t *testing.T) {
		svc, tenantRepo, _, _, _ := newServiceFixture(t, nil)
		tenantID := uuid.New()
		tenantRepo.On("FindByID", ctx, tenantID).Return(nil, nil)

		_, err := svc.ResolveFeature(ctx, tenantID, "seo")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrCodeNotFound, domainErr.Code)
	})

	t.Run("second resolution is served from the cache", func(t *testing.T) {
		cache := newFakeStatusCache()
		svc, tenantRepo, planRepo, usageLogs, _ := newServiceFixture(t, cache)
		tenant := proTenant(t)
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil).Once()
		planRepo.On("FindByKey", ctx, "pro").Return(proPlan(t), nil).Once()
		usageLogs.On("SumForRange", ctx, tenant.ID, "seo_runs_month", mock.Anything, mock.Anything).Return(int64(0), nil).Once()

		first, err := svc.ResolveFeature(ctx, tenant.ID, "seo")
		require.NoError(t, err)
		second, err := svc.ResolveFeature(ctx, tenant.ID, "seo")
		require.NoError(t, err)

		assert.Equal(t, first.Enabled, second.Enabled)
		tenantRepo.AssertExpectations(t)
	})
}

func TestService_SetFeatureOverride(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the override and appends to the trail", func(t *testing.T) {
		svc, tenantRepo, _, _, auditRepo := newServiceFixture(t, nil)
		tenant := proTenant(t)
		actorID := uuid.New()
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		tenantRepo.On("Save", ctx, tenant).Return(nil)
		auditRepo.On("Append", ctx, mock.MatchedBy(func(e *identity.FeatureAuditEntry) bool {
			return e.TenantID == tenant.ID && e.FeatureKey == "seo" && !e.Enabled && *e.ActorID == actorID
		})).Return(nil)

		err := svc.SetFeatureOverride(ctx, tenant.ID, "seo", false, &actorID, "abuse report")
		require.NoError(t, err)

		enabled, ok := tenant.FeatureOverride("seo")
		assert.True(t, ok)
		assert.False(t, enabled)
		auditRepo.AssertExpectations(t)
	})

	t.Run("invalidate drops the tenant's cached statuses", func(t *testing.T) {
		cache := newFakeStatusCache()
		svc, tenantRepo, planRepo, usageLogs, auditRepo := newServiceFixture(t, cache)
		tenant := proTenant(t)
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		tenantRepo.On("Save", ctx, tenant).Return(nil)
		planRepo.On("FindByKey", ctx, "pro").Return(proPlan(t), nil)
		usageLogs.On("SumForRange", ctx, tenant.ID, "seo_runs_month", mock.Anything, mock.Anything).Return(int64(0), nil)
		auditRepo.On("Append", ctx, mock.Anything).Return(nil)

		_, err := svc.ResolveFeature(ctx, tenant.ID, "seo")
		require.NoError(t, err)
		require.NoError(t, svc.SetFeatureOverride(ctx, tenant.ID, "seo", false, nil, ""))

		// The next resolution must see the override, not the cached grant.
		status, err := svc.ResolveFeature(ctx, tenant.ID, "seo")
		require.NoError(t, err)
		assert.False(t, status.Enabled)
		require.NotNil(t, status.Source)
		assert.Equal(t, SourceOverride, *status.Source)
	})

	t.Run("unknown tenant fails", func(t *testing.T) {
		svc, tenantRepo, _, _, _ := newServiceFixture(t, nil)
		tenantID := uuid.New()
		tenantRepo.On("FindByID", ctx, tenantID).Return(nil, nil)

		err := svc.SetFeatureOverride(ctx, tenantID, "seo", true, nil, "")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrCodeNotFound, domainErr.Code)
	})
}

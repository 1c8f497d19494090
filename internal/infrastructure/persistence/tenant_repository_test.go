package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/infrastructure/persistence/models"
)

func setupTenantTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TenantModel{}))
	return db
}

func TestTenantRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormTenantRepository(setupTenantTestDB(t))

	t.Run("save and find by slug", func(t *testing.T) {
		tenant, err := identity.NewTenant("acme-corp", "Acme Corp")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tenant))

		found, err := repo.FindBySlug(ctx, "acme-corp")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, tenant.ID, found.ID)
		assert.Equal(t, "Acme Corp", found.Name)
	})

	t.Run("feature overrides survive a round trip", func(t *testing.T) {
		tenant, err := identity.NewTenant("overrides", "Overrides Inc")
		require.NoError(t, err)
		require.NoError(t, tenant.SetFeatureOverride("seo", true))
		require.NoError(t, tenant.SetFeatureOverride("ai_fixes", false))
		require.NoError(t, repo.Save(ctx, tenant))

		found, err := repo.FindByID(ctx, tenant.ID)
		require.NoError(t, err)
		require.NotNil(t, found)

		enabled, ok := found.FeatureOverride("seo")
		assert.True(t, ok)
		assert.True(t, enabled)
		enabled, ok = found.FeatureOverride("ai_fixes")
		assert.True(t, ok)
		assert.False(t, enabled)
		_, ok = found.FeatureOverride("never_set")
		assert.False(t, ok)
	})

	t.Run("plan key survives a round trip", func(t *testing.T) {
		tenant, err := identity.NewTenant("planned", "Planned Ltd")
		require.NoError(t, err)
		tenant.AssignPlan("pro")
		require.NoError(t, repo.Save(ctx, tenant))

		found, err := repo.FindByID(ctx, tenant.ID)
		require.NoError(t, err)
		require.NotNil(t, found.PlanKey)
		assert.Equal(t, "pro", *found.PlanKey)
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.FindBySlug(ctx, "no-such-tenant")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("exists by slug", func(t *testing.T) {
		exists, err := repo.ExistsBySlug(ctx, "acme-corp")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySlug(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("delete removes the tenant", func(t *testing.T) {
		tenant, err := identity.NewTenant("doomed", "Doomed Co")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tenant))
		require.NoError(t, repo.Delete(ctx, tenant.ID))

		found, err := repo.FindByID(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

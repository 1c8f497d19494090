package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenantUsage(t *testing.T) {
	t.Run("creates a zeroed usage row", func(t *testing.T) {
		tenantID := uuid.New()

		usage, err := NewTenantUsage(tenantID)

		require.NoError(t, err)
		assert.Equal(t, tenantID, usage.TenantID)
		assert.Equal(t, 0, usage.ProjectCount)
		assert.Equal(t, 0, usage.DomainCount)
		assert.Equal(t, 0, usage.MemberCount)
		assert.Equal(t, 0, usage.OrgAdminCount)
		assert.False(t, usage.LastCalculatedAt.IsZero())
	})

	t.Run("rejects a nil tenant", func(t *testing.T) {
		_, err := NewTenantUsage(uuid.Nil)
		assert.Error(t, err)
	})
}

func TestTenantUsage_Apply(t *testing.T) {
	t.Run("adjusts counters by the delta", func(t *testing.T) {
		usage, _ := NewTenantUsage(uuid.New())

		usage.Apply(UsageDelta{Projects: 2, Domains: 3, Members: 1, OrgAdmins: 1})

		assert.Equal(t, 2, usage.ProjectCount)
		assert.Equal(t, 3, usage.DomainCount)
		assert.Equal(t, 1, usage.MemberCount)
		assert.Equal(t, 1, usage.OrgAdminCount)
	})

	t.Run("never drives a counter below zero", func(t *testing.T) {
		usage, _ := NewTenantUsage(uuid.New())
		usage.Apply(UsageDelta{Projects: 1})

		usage.Apply(UsageDelta{Projects: -5, Domains: -100})

		assert.Equal(t, 0, usage.ProjectCount)
		assert.Equal(t, 0, usage.DomainCount)
	})

	t.Run("repeated decrements stay floored at zero", func(t *testing.T) {
		usage, _ := NewTenantUsage(uuid.New())

		for i := 0; i < 10; i++ {
			usage.Apply(UsageDelta{Members: -1})
		}

		assert.Equal(t, 0, usage.MemberCount)
	})
}

func TestTenantUsage_Recalculate(t *testing.T) {
	usage, _ := NewTenantUsage(uuid.New())
	usage.Apply(UsageDelta{Projects: 9})
	before := usage.LastCalculatedAt

	usage.Recalculate(3, 5, 7, 2)

	assert.Equal(t, 3, usage.ProjectCount)
	assert.Equal(t, 5, usage.DomainCount)
	assert.Equal(t, 7, usage.MemberCount)
	assert.Equal(t, 2, usage.OrgAdminCount)
	assert.False(t, usage.LastCalculatedAt.Before(before))
}

func TestTenantUsage_CountFor(t *testing.T) {
	usage, _ := NewTenantUsage(uuid.New())
	usage.Recalculate(1, 2, 3, 4)

	assert.Equal(t, 1, usage.CountFor(ResourceProject))
	assert.Equal(t, 2, usage.CountFor(ResourceDomain))
	assert.Equal(t, 3, usage.CountFor(ResourceMember))
	assert.Equal(t, 4, usage.CountFor(ResourceOrgAdmin))
}

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPlanRepository creates a GormPlanRepository with a mocked SQL connection
func newMockPlanRepository(t *testing.T) (*GormPlanRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPlanRepository(gormDB), mock, mockDB
}

func planRows(planID uuid.UUID, key string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version",
		"code", "key", "name",
		"monthly_price", "annual_price", "currency", "is_active",
		"allowed_features", "quotas",
	}).AddRow(
		planID, now, now, 1,
		"PLAN-PRO", key, "Pro",
		"29.00", "290.00", "USD", true,
		`{"ai_fixes":true,"scheduled_audits":true}`,
		`{"max_projects":10,"seo_runs_month":100}`,
	)
}

func TestGormPlanRepository_FindByKey(t *testing.T) {
	t.Run("finds existing plan", func(t *testing.T) {
		repo, mock, mockDB := newMockPlanRepository(t)
		defer mockDB.Close()

		planID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "plans" WHERE key = \$1`).
			WithArgs("pro", 1).
			WillReturnRows(planRows(planID, "pro"))

		plan, err := repo.FindByKey(context.Background(), "pro")
		require.NoError(t, err)
		require.NotNil(t, plan)
		assert.Equal(t, planID, plan.ID)
		assert.Equal(t, "pro", plan.Key)
		assert.Equal(t, "29.00", plan.MonthlyPrice.StringFixed(2))
		assert.True(t, plan.AllowedFeatures["ai_fixes"])
		assert.Equal(t, 100, plan.Quotas["seo_runs_month"])

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil when plan does not exist", func(t *testing.T) {
		repo, mock, mockDB := newMockPlanRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "plans" WHERE key = \$1`).
			WithArgs("ghost", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		plan, err := repo.FindByKey(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Nil(t, plan)
	})
}

func TestGormPlanRepository_FindActive(t *testing.T) {
	repo, mock, mockDB := newMockPlanRepository(t)
	defer mockDB.Close()

	rows := planRows(uuid.New(), "pro")
	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE is_active = \$1 ORDER BY monthly_price ASC`).
		WithArgs(true).
		WillReturnRows(rows)

	plans, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "pro", plans[0].Key)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPlanRepository_ExistsByCodeOrKey(t *testing.T) {
	tests := []struct {
		name     string
		count    int64
		expected bool
	}{
		{"exists", 1, true},
		{"does not exist", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, mockDB := newMockPlanRepository(t)
			defer mockDB.Close()

			mock.ExpectQuery(`SELECT count\(\*\) FROM "plans" WHERE code = \$1 OR key = \$2`).
				WithArgs("PLAN-PRO", "pro").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))

			exists, err := repo.ExistsByCodeOrKey(context.Background(), "PLAN-PRO", "pro")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

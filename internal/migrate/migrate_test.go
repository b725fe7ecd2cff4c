package migrate_test

import (
	"fmt"
	"testing"

	"rentnest-backend/internal/migrate"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestUpAndStatus(t *testing.T) {
	db := openSQLite(t)

	before, err := migrate.Status(db)
	require.NoError(t, err)
	for _, s := range before {
		assert.False(t, s.Applied, s.Table)
	}

	require.NoError(t, migrate.Up(db))

	after, err := migrate.Status(db)
	require.NoError(t, err)
	tables := make([]string, 0, len(after))
	for _, s := range after {
		assert.True(t, s.Applied, s.Table)
		tables = append(tables, s.Table)
	}
	assert.Contains(t, tables, "applications")
	assert.Contains(t, tables, "activity_logs")

	// Re-running is a no-op.
	require.NoError(t, migrate.Up(db))
}

func TestRentApplicationUniquePerMonth(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, migrate.Up(db))

	agreementID := "ag-1"
	year, month := 2026, 10
	newApp := func(id string) *migrate.Application {
		return &migrate.Application{
			ID:           id,
			PropertyID:   "prop-1",
			RenterID:     "tenant-1",
			OwnerID:      "owner-1",
			Kind:         "RENT_CYCLE",
			AgreementID:  &agreementID,
			BillingYear:  &year,
			BillingMonth: &month,
			Status:       "RENT_DUE",
			Amount:       decimal.NewFromInt(20000),
		}
	}

	require.NoError(t, db.Create(newApp("app-1")).Error)
	assert.Error(t, db.Create(newApp("app-2")).Error)

	// Onboarding applications carry no agreement or period and never collide.
	onboarding := func(id string) *migrate.Application {
		return &migrate.Application{ID: id, PropertyID: "prop-1", RenterID: "tenant-1", OwnerID: "owner-1", Kind: "ONBOARDING", Status: "PENDING"}
	}
	require.NoError(t, db.Create(onboarding("app-3")).Error)
	require.NoError(t, db.Create(onboarding("app-4")).Error)
}

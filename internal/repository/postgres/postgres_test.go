package postgres_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/repository"
	"rentnest-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*postgres.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return postgres.NewStore(db), mock
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestApplicationRepository_CreateRentCycle(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	agreementID := "ag-1"

	newApp := func() *domain.Application {
		return &domain.Application{
			PropertyID:    "prop-1",
			RenterID:      "tenant-1",
			OwnerID:       "owner-1",
			Kind:          domain.ApplicationKindRentCycle,
			AgreementID:   &agreementID,
			BillingPeriod: &domain.BillingPeriod{Year: 2026, Month: 10},
			Status:        domain.ApplicationStatusRentDue,
			Amount:        decimal.NewFromInt(20000),
		}
	}
	insert := regexp.QuoteMeta("INSERT INTO applications") + ".*" +
		regexp.QuoteMeta("ON CONFLICT (agreement_id, billing_year, billing_month) DO NOTHING")

	t.Run("Inserted", func(t *testing.T) {
		mock.ExpectExec(insert).WithArgs(anyArgs(19)...).WillReturnResult(sqlmock.NewResult(0, 1))

		app := newApp()
		created, err := store.Applications().CreateRentCycle(ctx, app)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, app.ID)
	})

	t.Run("Conflict skipped", func(t *testing.T) {
		mock.ExpectExec(insert).WithArgs(anyArgs(19)...).WillReturnResult(sqlmock.NewResult(0, 0))

		created, err := store.Applications().CreateRentCycle(ctx, newApp())
		require.NoError(t, err)
		assert.False(t, created)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_GetByID(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	due := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "property_id", "renter_id", "owner_id", "kind", "source_viewing_id", "agreement_id",
			"billing_year", "billing_month", "move_in_date", "status", "amount", "due_date",
			"offline_transaction_id", "offline_submitted_at", "offline_acknowledged", "offline_acknowledged_at", "created_at", "updated_at"}).
			AddRow("app-1", "prop-1", "tenant-1", "owner-1", "RENT_CYCLE", nil, "ag-1",
				int64(2026), int64(10), nil, "OFFLINE_PAYMENT_PENDING", "20000.00", due,
				"UPI123", due, false, nil, due, due)

		mock.ExpectQuery("SELECT (.+) FROM applications WHERE id = \\$1").
			WithArgs("app-1").
			WillReturnRows(rows)

		app, err := store.Applications().GetByID(ctx, "app-1")
		require.NoError(t, err)
		assert.Nil(t, app.SourceViewingID)
		require.NotNil(t, app.AgreementID)
		assert.Equal(t, "ag-1", *app.AgreementID)
		assert.Equal(t, &domain.BillingPeriod{Year: 2026, Month: 10}, app.BillingPeriod)
		assert.True(t, app.Amount.Equal(decimal.NewFromInt(20000)))
		require.NotNil(t, app.OfflinePayment)
		assert.Equal(t, "UPI123", app.OfflinePayment.TransactionID)
		assert.False(t, app.OfflinePayment.Acknowledged)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM applications WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := store.Applications().GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_ListByStatuses(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE 1=1 AND agreement_id = $1 AND billing_year = $2 AND billing_month = $3 AND status = ANY($4) ORDER BY created_at DESC")).
		WithArgs("ag-1", 2026, 10, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	apps, err := store.Applications().List(ctx, domain.ApplicationFilter{
		AgreementID: "ag-1",
		Period:      &domain.BillingPeriod{Year: 2026, Month: 10},
		Statuses:    domain.RentCycleStatuses,
	})
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_MarkRefunded(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	t.Run("Paid payment refunded", func(t *testing.T) {
		mock.ExpectExec("UPDATE payments SET status").
			WithArgs("Refunded", "pay-1", "Paid").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, store.Payments().MarkRefunded(ctx, "pay-1"))
	})

	t.Run("Already refunded", func(t *testing.T) {
		mock.ExpectExec("UPDATE payments SET status").
			WithArgs("Refunded", "pay-1", "Paid").
			WillReturnResult(sqlmock.NewResult(0, 0))
		rows := sqlmock.NewRows([]string{"id", "user_id", "property_id", "application_id", "viewing_id", "bill_id", "related_payment_id", "type", "amount", "status", "reference", "payment_date"}).
			AddRow("pay-1", "tenant-1", "prop-1", nil, "view-1", nil, nil, "VIEWING_ADVANCE", "500", "Refunded", "", time.Now())
		mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = \\$1").WithArgs("pay-1").WillReturnRows(rows)

		err := store.Payments().MarkRefunded(ctx, "pay-1")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		var te *domain.TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "Refunded", te.From)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_Exists(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM notifications WHERE user_id = $1")).
		WithArgs("tenant-1", "RENT_DUE_SOON", "ag-1", "2026-10").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.Notifications().Exists(ctx, domain.NotificationKey{
		UserID:        "tenant-1",
		Type:          domain.NotificationRentDueSoon,
		RelatedID:     "ag-1",
		BillingPeriod: "2026-10",
	})
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE notifications SET is_read = TRUE").
		WithArgs("tenant-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.Notifications().MarkAllRead(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestUserRepository_Create(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").WithArgs(anyArgs(11)...).WillReturnResult(sqlmock.NewResult(0, 1))

		u := &domain.User{Name: "Asha", Email: "asha@example.com", Role: domain.UserRoleRenter}
		require.NoError(t, store.Users().Create(ctx, u))
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, domain.KYCStatusNotVerified, u.KYCStatus)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").WithArgs(anyArgs(11)...).WillReturnError(&pq.Error{Code: "23505"})

		err := store.Users().Create(ctx, &domain.User{Email: "asha@example.com"})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_Search(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM properties WHERE 1=1 AND LOWER(city) = LOWER($1) AND availability = $2")).
		WithArgs("Pune", "available").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs("Pune", "available", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "description", "address", "city", "bedrooms", "rent", "security_deposit", "viewing_advance", "availability", "created_at", "updated_at"}).
			AddRow("prop-1", "owner-1", "2BHK", "", "MG Road", "Pune", 2, "20000", "40000", "500", "available", now, now))

	props, total, err := store.Properties().Search(ctx, domain.PropertyFilter{City: "Pune", AvailableOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, props, 1)
	assert.True(t, props[0].ViewingAdvance.Equal(decimal.NewFromInt(500)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO activity_logs").WithArgs(anyArgs(6)...).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.WithinTx(ctx, func(tx repository.Store) error {
			return tx.Activities().Create(ctx, &domain.ActivityLog{UserID: "u1", Action: "TEST"})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO activity_logs").WithArgs(anyArgs(6)...).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := store.WithinTx(ctx, func(tx repository.Store) error {
			if err := tx.Activities().Create(ctx, &domain.ActivityLog{UserID: "u1", Action: "TEST"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package memory_test

import (
	"context"
	"errors"
	"testing"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/repository"
	"rentnest-backend/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTxRollsBack(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	owner := &domain.User{Name: "Owner", Email: "owner@example.com", Role: domain.UserRoleOwner}
	require.NoError(t, store.Users().Create(ctx, owner))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Users().AddOwnerCredit(ctx, owner.ID, decimal.NewFromInt(250)))
		require.NoError(t, tx.Payments().Create(ctx, &domain.Payment{UserID: owner.ID, Type: domain.PaymentTypePlatformFee, Amount: decimal.NewFromInt(250), Status: domain.PaymentStatusPaid}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, got.OwnerCredit.IsZero())

	payments, err := store.Payments().ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestStore_NestedTxJoinsOuter(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.WithinTx(ctx, func(inner repository.Store) error {
			return inner.Activities().Create(ctx, &domain.ActivityLog{UserID: "u1", Action: "NESTED"})
		})
	})
	require.NoError(t, err)

	logs, err := store.Activities().ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestApplicationRepository_CreateRentCycleUnique(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	agreementID := "ag-1"
	period := domain.BillingPeriod{Year: 2026, Month: 10}

	newApp := func() *domain.Application {
		p := period
		return &domain.Application{
			Kind:          domain.ApplicationKindRentCycle,
			AgreementID:   &agreementID,
			BillingPeriod: &p,
			Status:        domain.ApplicationStatusRentDue,
		}
	}

	created, err := store.Applications().CreateRentCycle(ctx, newApp())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Applications().CreateRentCycle(ctx, newApp())
	require.NoError(t, err)
	assert.False(t, created)

	apps, err := store.Applications().List(ctx, domain.ApplicationFilter{AgreementID: agreementID, Period: &period})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestApplicationRepository_RowsAreDetached(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	app := &domain.Application{
		Kind:           domain.ApplicationKindRentCycle,
		Status:         domain.ApplicationStatusOfflinePaymentPending,
		OfflinePayment: &domain.OfflinePaymentDetails{TransactionID: "UPI-1"},
	}
	require.NoError(t, store.Applications().Create(ctx, app))

	t.Run("callers cannot mutate stored rows", func(t *testing.T) {
		app.OfflinePayment.TransactionID = "changed"
		got, err := store.Applications().GetByID(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, "UPI-1", got.OfflinePayment.TransactionID)

		got.OfflinePayment.Acknowledged = true
		again, err := store.Applications().GetByID(ctx, app.ID)
		require.NoError(t, err)
		assert.False(t, again.OfflinePayment.Acknowledged)
	})

	t.Run("rollback restores nested fields", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.WithinTx(ctx, func(tx repository.Store) error {
			got, err := tx.Applications().GetByID(ctx, app.ID)
			require.NoError(t, err)
			got.Status = domain.ApplicationStatusRentPaid
			got.OfflinePayment.Acknowledged = true
			require.NoError(t, tx.Applications().Update(ctx, got))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := store.Applications().GetByID(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusOfflinePaymentPending, got.Status)
		assert.False(t, got.OfflinePayment.Acknowledged)
	})
}

func TestUserRepository_EmailCaseInsensitive(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Users().Create(ctx, &domain.User{Email: "Asha@Example.com"}))
	err := store.Users().Create(ctx, &domain.User{Email: "asha@example.com"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	u, err := store.Users().GetByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha@Example.com", u.Email)
}

func TestPaymentRepository_MarkRefundedOnce(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	p := &domain.Payment{UserID: "u1", Type: domain.PaymentTypeViewingAdvance, Amount: decimal.NewFromInt(500), Status: domain.PaymentStatusPaid}
	require.NoError(t, store.Payments().Create(ctx, p))

	require.NoError(t, store.Payments().MarkRefunded(ctx, p.ID))
	assert.ErrorIs(t, store.Payments().MarkRefunded(ctx, p.ID), domain.ErrInvalidTransition)
	assert.ErrorIs(t, store.Payments().MarkRefunded(ctx, "missing"), domain.ErrNotFound)
}

func TestNotificationRepository_Exists(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	n := &domain.Notification{
		UserID:     "tenant-1",
		Type:       domain.NotificationRentDueSoon,
		RelatedID:  "ag-1",
		Attributes: map[string]string{domain.AttrBillingPeriod: "2026-10"},
	}
	require.NoError(t, store.Notifications().Create(ctx, n))

	exists, err := store.Notifications().Exists(ctx, n.Key())
	require.NoError(t, err)
	assert.True(t, exists)

	other := n.Key()
	other.BillingPeriod = "2026-11"
	exists, err = store.Notifications().Exists(ctx, other)
	require.NoError(t, err)
	assert.False(t, exists)

	read, err := store.Notifications().MarkAllRead(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), read)

	unread, err := store.Notifications().CountUnread(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

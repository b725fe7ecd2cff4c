package service_test

import (
	"errors"
	"testing"
	"time"

	"rentnest-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rentDue creates an active agreement starting in October and runs the November cycle.
func (f *fixture) rentDue(t *testing.T, rent string) *domain.Application {
	t.Helper()
	agreement := f.activeAgreement(t, rent, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	f.clock = time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)
	_, err := f.rentCycle.Run(f.ctx, f.clock)
	require.NoError(t, err)
	apps, err := f.store.Applications().List(f.ctx, domain.ApplicationFilter{AgreementID: agreement.ID, Statuses: []domain.ApplicationStatus{domain.ApplicationStatusRentDue}})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	return &apps[0]
}

func TestPaymentService_RecurringRentOnline(t *testing.T) {
	f := newFixture(t)
	app := f.rentDue(t, "20000")

	paid, err := f.payments.RentPaymentSuccess(f.ctx, f.tenant.ID, app.ID, "pay_nov")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusRentPaid, paid.Status)
	assert.True(t, paid.Amount.IsZero())
	assert.Nil(t, paid.DueDate)

	payments := f.paymentsOf(t, f.tenant.ID)
	rent := paymentsOfType(payments, domain.PaymentTypeRent)
	require.Len(t, rent, 1)
	assert.True(t, rent[0].Amount.Equal(dec("20000")))
	assert.Equal(t, "pay_nov", rent[0].Reference)
	fee := paymentsOfType(payments, domain.PaymentTypePlatformFee)
	require.Len(t, fee, 1)
	assert.True(t, fee[0].Amount.Equal(dec("500")))

	owner, err := f.store.Users().GetByID(f.ctx, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, owner.OwnerCredit.Equal(dec("19500")), owner.OwnerCredit.String())

	received := f.notifier.ofType(domain.NotificationPaymentReceived)
	require.Len(t, received, 2)
	recipients := []string{received[0].UserID, received[1].UserID}
	assert.ElementsMatch(t, []string{f.owner.ID, f.tenant.ID}, recipients)

	t.Run("paying twice is rejected", func(t *testing.T) {
		_, err := f.payments.RentPaymentSuccess(f.ctx, f.tenant.ID, app.ID, "pay_nov_again")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Len(t, paymentsOfType(f.paymentsOf(t, f.tenant.ID), domain.PaymentTypeRent), 1)
	})
}

func TestPaymentService_OfflineRent(t *testing.T) {
	f := newFixture(t)
	app := f.rentDue(t, "20000")

	_, err := f.payments.SubmitOfflinePayment(f.ctx, f.tenant.ID, app.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	pending, err := f.payments.SubmitOfflinePayment(f.ctx, f.tenant.ID, app.ID, "UPI123456")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusOfflinePaymentPending, pending.Status)
	require.NotNil(t, pending.OfflinePayment)
	assert.Equal(t, "UPI123456", pending.OfflinePayment.TransactionID)
	assert.False(t, pending.OfflinePayment.Acknowledged)
	require.Len(t, f.notifier.ofType(domain.NotificationOfflinePaymentSubmitted), 1)
	assert.Equal(t, f.owner.ID, f.notifier.ofType(domain.NotificationOfflinePaymentSubmitted)[0].UserID)

	t.Run("tenant cannot acknowledge", func(t *testing.T) {
		_, err := f.payments.AcknowledgeOfflinePayment(f.ctx, f.tenant.ID, app.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	acked, err := f.payments.AcknowledgeOfflinePayment(f.ctx, f.owner.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusRentPaid, acked.Status)
	assert.True(t, acked.OfflinePayment.Acknowledged)
	require.NotNil(t, acked.OfflinePayment.AcknowledgedAt)

	payments := f.paymentsOf(t, f.tenant.ID)
	rent := paymentsOfType(payments, domain.PaymentTypeRent)
	require.Len(t, rent, 1)
	assert.True(t, rent[0].Amount.Equal(dec("20000")))
	assert.Equal(t, "UPI123456", rent[0].Reference)
	assert.Empty(t, paymentsOfType(payments, domain.PaymentTypePlatformFee))

	owner, err := f.store.Users().GetByID(f.ctx, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, owner.OwnerCredit.IsZero())
	assert.Len(t, f.notifier.ofType(domain.NotificationOfflinePaymentAcknowledged), 1)

	t.Run("second acknowledgement rejected", func(t *testing.T) {
		_, err := f.payments.AcknowledgeOfflinePayment(f.ctx, f.owner.ID, app.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestPaymentService_RentPaymentFailure(t *testing.T) {
	f := newFixture(t)
	app := f.rentDue(t, "20000")

	failed, err := f.payments.RentPaymentFailure(f.ctx, f.tenant.ID, app.ID, "card declined")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusRentDue, failed.Status)
	assert.True(t, failed.Amount.Equal(dec("20000")))

	rent := paymentsOfType(f.paymentsOf(t, f.tenant.ID), domain.PaymentTypeRent)
	require.Len(t, rent, 1)
	assert.Equal(t, domain.PaymentStatusFailed, rent[0].Status)
	assert.Equal(t, "card declined", rent[0].Reference)

	notes := f.notifier.ofType(domain.NotificationPaymentFailed)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "card declined")

	summary, err := f.ledger.PaymentSummary(f.ctx, f.tenant.ID)
	require.NoError(t, err)
	_, ok := summary.TotalsByType[domain.PaymentTypeRent]
	assert.False(t, ok)

	_, err = f.payments.RentPaymentSuccess(f.ctx, f.tenant.ID, app.ID, "retry")
	require.NoError(t, err)
	_, err = f.payments.RentPaymentFailure(f.ctx, f.tenant.ID, app.ID, "late webhook")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPaymentService_SelectPaymentMethod(t *testing.T) {
	f := newFixture(t)
	app := f.rentDue(t, "20000")

	t.Run("online rent", func(t *testing.T) {
		intent, err := f.payments.SelectPaymentMethod(f.ctx, f.tenant.ID, app.ID, domain.PaymentMethodOnline)
		require.NoError(t, err)
		assert.True(t, intent.Amount.Equal(dec("20000")))
		assert.Equal(t, f.tenant.Email, intent.PayerEmail)
		assert.Contains(t, intent.Description, "2026-11")
	})

	t.Run("offline rent", func(t *testing.T) {
		intent, err := f.payments.SelectPaymentMethod(f.ctx, f.tenant.ID, app.ID, domain.PaymentMethodOffline)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentMethodOffline, intent.Method)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := f.payments.SelectPaymentMethod(f.ctx, f.tenant.ID, app.ID, domain.PaymentMethod("cheque"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("someone else's application", func(t *testing.T) {
		_, err := f.payments.SelectPaymentMethod(f.ctx, f.owner.ID, app.ID, domain.PaymentMethodOnline)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestPaymentService_OfflineNotAllowedForDeposit(t *testing.T) {
	f := newFixture(t)
	app, _ := f.depositDue(t, domain.AgreementTerms{})

	_, err := f.payments.SelectPaymentMethod(f.ctx, f.tenant.ID, app.ID, domain.PaymentMethodOffline)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	intent, err := f.payments.SelectPaymentMethod(f.ctx, f.tenant.ID, app.ID, domain.PaymentMethodOnline)
	require.NoError(t, err)
	assert.True(t, intent.Amount.Equal(dec("60000")))
	assert.Contains(t, intent.Description, "deposit")
}

func TestPaymentService_PlatformFeePath(t *testing.T) {
	f := newFixture(t)
	moveIn := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)

	app, err := f.applications.Apply(f.ctx, f.tenant.ID, f.property.ID, &moveIn)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPending, app.Status)
	assert.Len(t, f.notifier.ofType(domain.NotificationApplicationReceived), 1)

	t.Run("owners cannot apply", func(t *testing.T) {
		_, err := f.applications.Apply(f.ctx, f.owner.ID, f.property.ID, nil)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("fee before approval", func(t *testing.T) {
		_, err := f.payments.PayPlatformFee(f.ctx, f.tenant.ID, app.ID, "fee_early")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	approved, err := f.applications.UpdateApplicationStatus(f.ctx, f.owner.ID, app.ID, domain.ApplicationStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApproved, approved.Status)
	assert.True(t, approved.Amount.Equal(dec("500")))
	require.NotNil(t, approved.DueDate)
	assert.Equal(t, time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC), *approved.DueDate)

	rentDue, err := f.payments.PayPlatformFee(f.ctx, f.tenant.ID, app.ID, "fee_001")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusRentDue, rentDue.Status)
	assert.True(t, rentDue.Amount.Equal(dec("20000")))
	require.NotNil(t, rentDue.AgreementID)
	assert.Equal(t, moveIn, *rentDue.DueDate)

	agreement, err := f.store.Agreements().GetByID(f.ctx, *rentDue.AgreementID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, agreement.ApplicationID)
	assert.Equal(t, moveIn, agreement.StartDate)
	assert.False(t, agreement.Active())

	fee := paymentsOfType(f.paymentsOf(t, f.tenant.ID), domain.PaymentTypePlatformFee)
	require.Len(t, fee, 1)
	assert.True(t, fee[0].Amount.Equal(dec("500")))
	owner, err := f.store.Users().GetByID(f.ctx, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, owner.OwnerCredit.Equal(dec("500")))
	assert.Len(t, f.notifier.ofType(domain.NotificationSignatureRequired), 1)

	t.Run("signing on this path leaves the application alone", func(t *testing.T) {
		_, err := f.agreements.SignAgreement(f.ctx, f.tenant.ID, agreement.ID)
		require.NoError(t, err)
		_, err = f.agreements.SignAgreement(f.ctx, f.owner.ID, agreement.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusRentDue, f.application(t, app.ID).Status)
	})
}

func TestApplicationService_UpdateApplicationStatus(t *testing.T) {
	f := newFixture(t)
	app, err := f.applications.Apply(f.ctx, f.tenant.ID, f.property.ID, nil)
	require.NoError(t, err)

	t.Run("payment statuses cannot be set directly", func(t *testing.T) {
		_, err := f.applications.UpdateApplicationStatus(f.ctx, f.owner.ID, app.ID, domain.ApplicationStatusCompleted)
		var te *domain.TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "set_COMPLETED", te.Event)
		assert.Equal(t, string(domain.ApplicationStatusPending), te.From)
	})

	t.Run("tenant cannot approve", func(t *testing.T) {
		_, err := f.applications.UpdateApplicationStatus(f.ctx, f.tenant.ID, app.ID, domain.ApplicationStatusApproved)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("status is not revealed to non-owners", func(t *testing.T) {
		_, err := f.applications.UpdateApplicationStatus(f.ctx, f.tenant.ID, app.ID, domain.ApplicationStatusCompleted)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		var te *domain.TransitionError
		assert.False(t, errors.As(err, &te))
	})

	t.Run("reject", func(t *testing.T) {
		rejected, err := f.applications.UpdateApplicationStatus(f.ctx, f.owner.ID, app.ID, domain.ApplicationStatusRejected)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusRejected, rejected.Status)
		assert.Len(t, f.notifier.ofType(domain.NotificationApplicationRejected), 1)

		_, err = f.applications.ApproveApplication(f.ctx, f.owner.ID, app.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

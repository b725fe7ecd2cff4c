package service_test

import (
	"testing"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d, hour int) time.Time {
	return time.Date(year, month, d, hour, 0, 0, 0, time.UTC)
}

func (f *fixture) rentApplications(t *testing.T, agreementID string) []domain.Application {
	t.Helper()
	apps, err := f.store.Applications().List(f.ctx, domain.ApplicationFilter{AgreementID: agreementID})
	require.NoError(t, err)
	return apps
}

func TestRentCycleService_Run(t *testing.T) {
	t.Run("one application per agreement and month", func(t *testing.T) {
		f := newFixture(t)
		agreement := f.activeAgreement(t, "20000", day(2026, 10, 1, 0))

		for _, now := range []time.Time{day(2026, 11, 1, 0), day(2026, 11, 1, 12), day(2026, 11, 15, 9)} {
			_, err := f.rentCycle.Run(f.ctx, now)
			require.NoError(t, err)
		}

		apps := f.rentApplications(t, agreement.ID)
		require.Len(t, apps, 1)
		assert.Equal(t, domain.ApplicationStatusRentDue, apps[0].Status)
		assert.Equal(t, day(2026, 11, 1, 0), *apps[0].DueDate)
		due := f.notifier.ofType(domain.NotificationRentDue)
		require.Len(t, due, 1)
		assert.Equal(t, "2026-11", due[0].Attributes[domain.AttrBillingPeriod])

		_, err := f.payments.RentPaymentSuccess(f.ctx, f.tenant.ID, apps[0].ID, "pay")
		require.NoError(t, err)
		result, err := f.rentCycle.Run(f.ctx, day(2026, 11, 20, 0))
		require.NoError(t, err)
		assert.Zero(t, result.ApplicationsGenerated)
		assert.Len(t, f.rentApplications(t, agreement.ID), 1)

		result, err = f.rentCycle.Run(f.ctx, day(2026, 12, 2, 0))
		require.NoError(t, err)
		assert.Equal(t, 1, result.ApplicationsGenerated)
		assert.Len(t, f.rentApplications(t, agreement.ID), 2)
	})

	t.Run("nothing in the start month", func(t *testing.T) {
		f := newFixture(t)
		agreement := f.activeAgreement(t, "20000", day(2026, 10, 1, 0))

		result, err := f.rentCycle.Run(f.ctx, day(2026, 10, 28, 0))
		require.NoError(t, err)
		assert.Equal(t, service.RentCycleResult{AgreementsScanned: 1, Skipped: 1}, result)
		assert.Empty(t, f.rentApplications(t, agreement.ID))
	})

	t.Run("reminder window", func(t *testing.T) {
		f := newFixture(t)
		f.activeAgreement(t, "15000", day(2026, 10, 10, 0))

		result, err := f.rentCycle.Run(f.ctx, day(2026, 11, 4, 9))
		require.NoError(t, err)
		assert.Zero(t, result.RemindersSent)

		result, err = f.rentCycle.Run(f.ctx, day(2026, 11, 5, 9))
		require.NoError(t, err)
		assert.Equal(t, 1, result.RemindersSent)
		assert.Zero(t, result.ApplicationsGenerated)

		result, err = f.rentCycle.Run(f.ctx, day(2026, 11, 6, 9))
		require.NoError(t, err)
		assert.Zero(t, result.RemindersSent)

		soon := f.notifier.ofType(domain.NotificationRentDueSoon)
		require.Len(t, soon, 1)
		assert.Equal(t, f.tenant.ID, soon[0].UserID)
		assert.Contains(t, soon[0].Message, "10 Nov 2026")
	})

	t.Run("due day clamps to month end", func(t *testing.T) {
		f := newFixture(t)
		agreement := f.activeAgreement(t, "20000", day(2027, 1, 31, 0))

		result, err := f.rentCycle.Run(f.ctx, day(2027, 2, 28, 6))
		require.NoError(t, err)
		assert.Equal(t, 1, result.ApplicationsGenerated)
		apps := f.rentApplications(t, agreement.ID)
		require.Len(t, apps, 1)
		assert.Equal(t, day(2027, 2, 28, 0), *apps[0].DueDate)
	})

	t.Run("agreements with missing parties are skipped", func(t *testing.T) {
		f := newFixture(t)
		orphan := &domain.Agreement{
			ApplicationID:  "app-orphan",
			PropertyID:     f.property.ID,
			TenantID:       "ghost",
			OwnerID:        f.owner.ID,
			RentAmount:     dec("9000"),
			StartDate:      day(2026, 9, 1, 0),
			SignedByTenant: true,
			SignedByOwner:  true,
		}
		require.NoError(t, f.store.Agreements().Create(f.ctx, orphan))
		f.activeAgreement(t, "20000", day(2026, 9, 1, 0))

		result, err := f.rentCycle.Run(f.ctx, day(2026, 11, 1, 0))
		require.NoError(t, err)
		assert.Equal(t, 2, result.AgreementsScanned)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 1, result.ApplicationsGenerated)
		assert.Empty(t, f.rentApplications(t, orphan.ID))
	})

	t.Run("agreements of rejected applications are skipped", func(t *testing.T) {
		f := newFixture(t)
		origin := &domain.Application{
			PropertyID: f.property.ID,
			RenterID:   f.tenant.ID,
			OwnerID:    f.owner.ID,
			Kind:       domain.ApplicationKindOnboarding,
			Status:     domain.ApplicationStatusRejected,
		}
		require.NoError(t, f.store.Applications().Create(f.ctx, origin))
		signed := &domain.Agreement{
			ApplicationID:  origin.ID,
			PropertyID:     f.property.ID,
			TenantID:       f.tenant.ID,
			OwnerID:        f.owner.ID,
			RentAmount:     dec("15000"),
			StartDate:      day(2026, 9, 1, 0),
			SignedByTenant: true,
			SignedByOwner:  true,
		}
		require.NoError(t, f.store.Agreements().Create(f.ctx, signed))

		result, err := f.rentCycle.Run(f.ctx, day(2026, 12, 2, 0))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Zero(t, result.ApplicationsGenerated)
		assert.Empty(t, f.rentApplications(t, signed.ID))
		assert.Empty(t, f.notifier.ofType(domain.NotificationRentDue))
	})

	t.Run("unsigned agreements are ignored", func(t *testing.T) {
		f := newFixture(t)
		a := f.activeAgreement(t, "20000", day(2026, 9, 1, 0))
		a.SignedByOwner = false
		require.NoError(t, f.store.Agreements().Update(f.ctx, a))

		result, err := f.rentCycle.Run(f.ctx, day(2026, 11, 1, 0))
		require.NoError(t, err)
		assert.Zero(t, result.AgreementsScanned)
	})
}

func TestRentCycleService_SendOverdueReminders(t *testing.T) {
	f := newFixture(t)
	agreement := f.activeAgreement(t, "20000", day(2026, 10, 1, 0))
	_, err := f.rentCycle.Run(f.ctx, day(2026, 11, 1, 0))
	require.NoError(t, err)
	app := f.rentApplications(t, agreement.ID)[0]

	steps := []struct {
		now  time.Time
		sent int
	}{
		{day(2026, 11, 3, 9), 0},
		{day(2026, 11, 4, 9), 1},
		{day(2026, 11, 4, 18), 0},
		{day(2026, 11, 5, 9), 1},
	}
	for _, step := range steps {
		sent, err := f.rentCycle.SendOverdueReminders(f.ctx, step.now)
		require.NoError(t, err)
		assert.Equal(t, step.sent, sent, step.now.String())
	}

	overdue := f.notifier.ofType(domain.NotificationRentOverdue)
	require.Len(t, overdue, 2)
	assert.Equal(t, "3", overdue[0].Attributes[service.AttrOverdueDays])
	assert.Equal(t, "4", overdue[1].Attributes[service.AttrOverdueDays])
	assert.Equal(t, app.ID, overdue[1].RelatedID)
	assert.Contains(t, overdue[1].Message, "4 days overdue")

	_, err = f.payments.RentPaymentSuccess(f.ctx, f.tenant.ID, app.ID, "late")
	require.NoError(t, err)
	sent, err := f.rentCycle.SendOverdueReminders(f.ctx, day(2026, 11, 6, 9))
	require.NoError(t, err)
	assert.Zero(t, sent)
}

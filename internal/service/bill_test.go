package service_test

import (
	"testing"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillService(t *testing.T) {
	f := newFixture(t)
	f.activeAgreement(t, "20000", day(2026, 9, 1, 0))
	input := service.BillInput{
		PropertyID:  f.property.ID,
		TenantID:    f.tenant.ID,
		Category:    domain.BillCategoryElectricity,
		Description: "September meter reading",
		Amount:      dec("1450.50"),
		DueDate:     f.clock.Add(10 * 24 * time.Hour),
	}

	t.Run("validation", func(t *testing.T) {
		bad := input
		bad.Category = "GAS"
		_, err := f.bills.IssueBill(f.ctx, f.owner.ID, bad)
		assert.ErrorIs(t, err, domain.ErrValidation)

		bad = input
		bad.Amount = dec("0")
		_, err = f.bills.IssueBill(f.ctx, f.owner.ID, bad)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("only the owner issues bills", func(t *testing.T) {
		_, err := f.bills.IssueBill(f.ctx, f.tenant.ID, input)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("tenant must live there", func(t *testing.T) {
		stranger := f.user(t, "Stranger", "stranger@example.com", domain.UserRoleRenter, domain.KYCStatusVerified)
		bad := input
		bad.TenantID = stranger.ID
		_, err := f.bills.IssueBill(f.ctx, f.owner.ID, bad)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	bill, err := f.bills.IssueBill(f.ctx, f.owner.ID, input)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusUnpaid, bill.Status)
	require.Len(t, f.notifier.ofType(domain.NotificationBillIssued), 1)

	t.Run("someone else's bill", func(t *testing.T) {
		_, err := f.bills.PayBill(f.ctx, f.owner.ID, bill.ID, "ref")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	paid, err := f.bills.PayBill(f.ctx, f.tenant.ID, bill.ID, "bill_ref")
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentID)

	payments := paymentsOfType(f.paymentsOf(t, f.tenant.ID), domain.PaymentTypeBill)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(dec("1450.50")))
	assert.Equal(t, bill.ID, *payments[0].BillID)

	owner, err := f.store.Users().GetByID(f.ctx, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, owner.OwnerCredit.Equal(dec("1450.50")))
	assert.Len(t, f.notifier.ofType(domain.NotificationBillPaid), 1)

	_, err = f.bills.PayBill(f.ctx, f.tenant.ID, bill.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	bills, err := f.bills.ListBills(f.ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, bills, 1)
}

package service_test

import (
	"testing"

	"rentnest-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_KYCReview(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "Root", "admin@example.com", domain.UserRoleSuperAdmin, domain.KYCStatusVerified)
	renter := f.user(t, "New Renter", "new@example.com", domain.UserRoleRenter, domain.KYCStatusNotVerified)

	_, err := f.users.SubmitKYC(f.ctx, renter.ID, "", "X1", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	v, err := f.users.SubmitKYC(f.ctx, renter.ID, "AADHAAR", "1234-5678", "kyc/"+renter.ID+"/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusPending, v.Status)
	profile, err := f.users.GetProfile(f.ctx, renter.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusPending, profile.KYCStatus)

	t.Run("only admins review", func(t *testing.T) {
		_, err := f.admin.ReviewKYC(f.ctx, f.owner.ID, v.ID, true, "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		_, err = f.admin.ListPendingVerifications(f.ctx, f.tenant.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	pending, err := f.admin.ListPendingVerifications(f.ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, v.ID, pending[0].ID)

	reviewed, err := f.admin.ReviewKYC(f.ctx, admin.ID, v.ID, true, "looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusVerified, reviewed.Status)
	assert.Equal(t, admin.ID, *reviewed.ReviewerID)

	profile, err = f.users.GetProfile(f.ctx, renter.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusVerified, profile.KYCStatus)
	require.Len(t, f.notifier.ofType(domain.NotificationKYCUpdated), 1)
	assert.Equal(t, renter.ID, f.notifier.ofType(domain.NotificationKYCUpdated)[0].UserID)

	t.Run("reviewed once", func(t *testing.T) {
		_, err := f.admin.ReviewKYC(f.ctx, admin.ID, v.ID, false, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("verified users cannot resubmit", func(t *testing.T) {
		_, err := f.users.SubmitKYC(f.ctx, renter.ID, "PAN", "ABCDE1234F", "")
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("rejection carries notes", func(t *testing.T) {
		other := f.user(t, "Other", "other@example.com", domain.UserRoleOwner, domain.KYCStatusNotVerified)
		v, err := f.users.SubmitKYC(f.ctx, other.ID, "PAN", "ABCDE1234F", "")
		require.NoError(t, err)
		_, err = f.admin.ReviewKYC(f.ctx, admin.ID, v.ID, false, "blurry scan")
		require.NoError(t, err)
		notes := f.notifier.ofType(domain.NotificationKYCUpdated)
		assert.Contains(t, notes[len(notes)-1].Message, "blurry scan")
		profile, err := f.users.GetProfile(f.ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.KYCStatusRejected, profile.KYCStatus)
	})
}

func TestAdminService_Dashboard(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "Root", "admin@example.com", domain.UserRoleSuperAdmin, domain.KYCStatusVerified)
	app, _ := f.depositDue(t, domain.AgreementTerms{})
	_, err := f.payments.RentPaymentSuccess(f.ctx, f.tenant.ID, app.ID, "pay")
	require.NoError(t, err)

	stats, err := f.admin.PlatformStats(f.ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UsersByRole[domain.UserRoleOwner])
	assert.Equal(t, 1, stats.UsersByRole[domain.UserRoleRenter])
	assert.Equal(t, 1, stats.PropertiesByAvailability[domain.AvailabilityRented])
	assert.Equal(t, 1, stats.ApplicationsByStatus[domain.ApplicationStatusMoveInReady])
	assert.True(t, stats.PlatformFeesCollected.Equal(dec("500")))

	owners, err := f.admin.ListUsers(f.ctx, admin.ID, domain.UserRoleOwner)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	everyone, err := f.admin.ListUsers(f.ctx, admin.ID, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 3)

	p, err := f.admin.SetPropertyAvailability(f.ctx, admin.ID, f.property.ID, domain.AvailabilityAvailable)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityAvailable, p.Availability)

	_, err = f.admin.PlatformStats(f.ctx, f.owner.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/repository/memory"
	"rentnest-backend/internal/security"
	"rentnest-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (r *recordingNotifier) Dispatch(_ context.Context, notes ...domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, notes...)
}

func (r *recordingNotifier) ofType(t domain.NotificationType) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	ctx        context.Context
	clock      time.Time
	store      *memory.Store
	notifier   *recordingNotifier
	challenges security.ChallengeStore
	deps       service.Deps

	viewings     service.ViewingService
	applications service.ApplicationService
	agreements   service.AgreementService
	payments     service.PaymentService
	rentCycle    service.RentCycleService
	ledger       service.LedgerService
	users        service.UserService
	properties   service.PropertyService
	admin        service.AdminService
	bills        service.BillService
	disputes     service.DisputeService

	owner    *domain.User
	tenant   *domain.User
	property *domain.Property
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		clock:    time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC),
		store:    memory.NewStore(),
		notifier: &recordingNotifier{},
	}
	now := func() time.Time { return f.clock }
	f.challenges = security.NewMemoryChallengeStore(now)
	f.deps = service.Deps{
		Store:    f.store,
		Ledger:   service.NewLedger(now),
		Notifier: f.notifier,
		Settings: service.DefaultSettings(),
		Now:      now,
	}
	f.rebuild()

	f.owner = f.user(t, "Meera Owner", "owner@example.com", domain.UserRoleOwner, domain.KYCStatusVerified)
	f.tenant = f.user(t, "Arjun Tenant", "tenant@example.com", domain.UserRoleRenter, domain.KYCStatusVerified)
	f.property = f.listing(t, f.owner.ID, "2BHK in Indiranagar", "20000", "40000", "500")
	return f
}

// rebuild re-creates the services after f.deps changes.
func (f *fixture) rebuild() {
	f.viewings = service.NewViewingService(f.deps)
	f.applications = service.NewApplicationService(f.deps)
	f.agreements = service.NewAgreementService(f.deps, f.challenges)
	f.payments = service.NewPaymentService(f.deps)
	f.rentCycle = service.NewRentCycleService(f.deps)
	f.ledger = service.NewLedgerService(f.store)
	f.users = service.NewUserService(f.deps)
	f.properties = service.NewPropertyService(f.deps, nil)
	f.admin = service.NewAdminService(f.deps)
	f.bills = service.NewBillService(f.deps)
	f.disputes = service.NewDisputeService(f.deps)
}

func (f *fixture) user(t *testing.T, name, email string, role domain.UserRole, kyc domain.KYCStatus) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, Role: role, KYCStatus: kyc}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return u
}

func (f *fixture) listing(t *testing.T, ownerID, title, rent, deposit, advance string) *domain.Property {
	t.Helper()
	p := &domain.Property{
		OwnerID:         ownerID,
		Title:           title,
		City:            "Bengaluru",
		Bedrooms:        2,
		Rent:            dec(rent),
		SecurityDeposit: dec(deposit),
		ViewingAdvance:  dec(advance),
		Availability:    domain.AvailabilityAvailable,
	}
	require.NoError(t, f.store.Properties().Create(f.ctx, p))
	return p
}

func (f *fixture) paymentsOf(t *testing.T, userID string) []domain.Payment {
	t.Helper()
	out, err := f.store.Payments().ListByUser(f.ctx, userID)
	require.NoError(t, err)
	return out
}

func paymentsOfType(payments []domain.Payment, typ domain.PaymentType) []domain.Payment {
	var out []domain.Payment
	for _, p := range payments {
		if p.Type == typ {
			out = append(out, p)
		}
	}
	return out
}

func (f *fixture) application(t *testing.T, id string) *domain.Application {
	t.Helper()
	app, err := f.store.Applications().GetByID(f.ctx, id)
	require.NoError(t, err)
	return app
}

// completedViewing walks a viewing through request, accept and complete.
func (f *fixture) completedViewing(t *testing.T) *domain.Viewing {
	t.Helper()
	v, err := f.viewings.RequestViewing(f.ctx, f.tenant.ID, f.property.ID, f.clock.Add(48*time.Hour), domain.VerificationSnapshot{FullName: f.tenant.Name})
	require.NoError(t, err)
	_, err = f.viewings.UpdateViewingStatus(f.ctx, f.owner.ID, v.ID, domain.ViewingStatusAccepted)
	require.NoError(t, err)
	v, err = f.viewings.UpdateViewingStatus(f.ctx, f.owner.ID, v.ID, domain.ViewingStatusCompleted)
	require.NoError(t, err)
	return v
}

// depositDue drives the onboarding path up to a fully signed agreement.
func (f *fixture) depositDue(t *testing.T, terms domain.AgreementTerms) (*domain.Application, *domain.Agreement) {
	t.Helper()
	v := f.completedViewing(t)
	app, err := f.applications.ConfirmRent(f.ctx, f.tenant.ID, v.ID)
	require.NoError(t, err)
	_, agreement, err := f.applications.FinalizeAgreement(f.ctx, f.owner.ID, app.ID, terms)
	require.NoError(t, err)
	_, err = f.agreements.SignAgreement(f.ctx, f.tenant.ID, agreement.ID)
	require.NoError(t, err)
	agreement, err = f.agreements.SignAgreement(f.ctx, f.owner.ID, agreement.ID)
	require.NoError(t, err)
	return f.application(t, app.ID), agreement
}

// activeAgreement stores a signed agreement directly, bypassing the onboarding flow.
func (f *fixture) activeAgreement(t *testing.T, rent string, start time.Time) *domain.Agreement {
	t.Helper()
	a := &domain.Agreement{
		ApplicationID:  "app-" + start.Format("20060102") + "-" + rent,
		PropertyID:     f.property.ID,
		TenantID:       f.tenant.ID,
		OwnerID:        f.owner.ID,
		RentAmount:     dec(rent),
		DepositAmount:  dec("0"),
		StartDate:      start,
		SignedByTenant: true,
		SignedByOwner:  true,
	}
	require.NoError(t, f.store.Agreements().Create(f.ctx, a))
	return a
}

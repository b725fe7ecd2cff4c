package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type applicationService struct {
	Deps
}

func NewApplicationService(d Deps) ApplicationService {
	return &applicationService{Deps: d}
}

// advanceApplication moves app along event, applies mutate and persists it.
// mutate runs only when the transition is legal.
func (w *writer) advanceApplication(ctx context.Context, app *domain.Application, event domain.ApplicationEvent, now time.Time, mutate func(a *domain.Application)) error {
	next, err := domain.NextApplicationStatus(app.Status, event)
	if err != nil {
		return err
	}
	from := app.Status
	app.Status = next
	app.UpdatedAt = now
	if mutate != nil {
		mutate(app)
	}
	if err := w.Applications().Update(ctx, app); err != nil {
		return err
	}
	logger.Transition("application", app.ID, string(from), string(next), "event", event)
	return nil
}

func applicationForOwner(ctx context.Context, w *writer, applicationID, ownerID string) (*domain.Application, error) {
	app, err := w.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: only the property owner can do this", domain.ErrForbidden)
	}
	return app, nil
}

func applicationForRenter(ctx context.Context, w *writer, applicationID, renterID string) (*domain.Application, error) {
	app, err := w.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.RenterID != renterID {
		return nil, fmt.Errorf("%w: only the applicant can do this", domain.ErrForbidden)
	}
	return app, nil
}

func propertyTitle(ctx context.Context, w *writer, propertyID string) string {
	if p, err := w.Properties().GetByID(ctx, propertyID); err == nil {
		return p.Title
	}
	return "your rental"
}

func (s *applicationService) Apply(ctx context.Context, renterID, propertyID string, moveInDate *time.Time) (*domain.Application, error) {
	logger.EnterMethod("ApplicationService.Apply", "renterID", renterID, "propertyID", propertyID)

	renter, err := requireRole(ctx, s.Store.Users(), renterID, domain.UserRoleRenter)
	if err != nil {
		return nil, err
	}
	property, err := s.Store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.Availability != domain.AvailabilityAvailable {
		return nil, domain.Invalid("property %s is not available", propertyID)
	}

	app := &domain.Application{
		PropertyID: property.ID,
		RenterID:   renterID,
		OwnerID:    property.OwnerID,
		Kind:       domain.ApplicationKindOnboarding,
		MoveInDate: moveInDate,
		Status:     domain.ApplicationStatusPending,
	}
	err = s.inTx(ctx, func(w *writer) error {
		if err := w.Applications().Create(ctx, app); err != nil {
			return err
		}
		if err := w.notify(ctx, property.OwnerID, domain.NotificationApplicationReceived, app.ID,
			fmt.Sprintf("%s applied to rent %s", renter.Name, property.Title)); err != nil {
			return err
		}
		return w.activity(ctx, renterID, "APPLICATION_SUBMITTED", property.Title, app.ID)
	})
	if err != nil {
		logger.ExitMethodWithError("ApplicationService.Apply", err)
		return nil, err
	}
	logger.ExitMethod("ApplicationService.Apply", "applicationID", app.ID)
	return app, nil
}

func (s *applicationService) ConfirmRent(ctx context.Context, tenantID, viewingID string) (*domain.Application, error) {
	logger.EnterMethod("ApplicationService.ConfirmRent", "tenantID", tenantID, "viewingID", viewingID)

	viewing, err := s.Store.Viewings().GetByID(ctx, viewingID)
	if err != nil {
		return nil, err
	}
	if viewing.TenantID != tenantID {
		return nil, fmt.Errorf("%w: only the tenant who viewed the property can confirm", domain.ErrForbidden)
	}
	if viewing.Status != domain.ViewingStatusCompleted {
		return nil, &domain.TransitionError{Entity: "viewing", From: string(viewing.Status), Event: "confirm_rent"}
	}
	if existing, err := s.Store.Applications().GetBySourceViewing(ctx, viewingID); err == nil {
		logger.ExitMethod("ApplicationService.ConfirmRent", "applicationID", existing.ID, "existing", true)
		return existing, nil
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	app := &domain.Application{
		PropertyID:      viewing.PropertyID,
		RenterID:        tenantID,
		OwnerID:         viewing.OwnerID,
		Kind:            domain.ApplicationKindOnboarding,
		SourceViewingID: &viewing.ID,
		Status:          domain.ApplicationStatusPending,
	}
	err = s.inTx(ctx, func(w *writer) error {
		if err := w.Applications().Create(ctx, app); err != nil {
			return err
		}
		title := propertyTitle(ctx, w, viewing.PropertyID)
		if err := w.notify(ctx, tenantID, domain.NotificationRentInterest, app.ID,
			fmt.Sprintf("We told the owner you want to rent %s. You will hear back once the agreement is ready", title)); err != nil {
			return err
		}
		if err := w.notify(ctx, viewing.OwnerID, domain.NotificationRentInterest, app.ID,
			fmt.Sprintf("%s wants to rent %s after the viewing. Finalize the agreement to proceed", tenantName(ctx, w, viewing), title)); err != nil {
			return err
		}
		return w.activity(ctx, tenantID, "RENT_CONFIRMED", title, app.ID)
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// A concurrent confirmation won the insert.
		return s.Store.Applications().GetBySourceViewing(ctx, viewingID)
	}
	if err != nil {
		logger.ExitMethodWithError("ApplicationService.ConfirmRent", err)
		return nil, err
	}
	logger.ExitMethod("ApplicationService.ConfirmRent", "applicationID", app.ID)
	return app, nil
}

// tenantName prefers the name captured at viewing time and falls back to the account name.
func tenantName(ctx context.Context, w *writer, viewing *domain.Viewing) string {
	if name := strings.TrimSpace(viewing.Verification.FullName); name != "" {
		return name
	}
	if u, err := w.Users().GetByID(ctx, viewing.TenantID); err == nil && u.Name != "" {
		return u.Name
	}
	return "A tenant"
}

func (s *applicationService) ApproveApplication(ctx context.Context, ownerID, applicationID string) (*domain.Application, error) {
	var app *domain.Application
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		app, err = applicationForOwner(ctx, w, applicationID, ownerID)
		if err != nil {
			return err
		}
		property, err := w.Properties().GetByID(ctx, app.PropertyID)
		if err != nil {
			return err
		}
		now := s.now()
		fee := domain.ServiceFee(property.Rent, s.Settings.ServiceFeePercentage)
		due := utils.StartOfDay(now).AddDate(0, 0, s.Settings.PlatformFeeDueDays)
		if err := w.advanceApplication(ctx, app, domain.ApplicationEventApprove, now, func(a *domain.Application) {
			a.Amount = fee
			a.DueDate = &due
		}); err != nil {
			return err
		}
		if err := w.notify(ctx, app.RenterID, domain.NotificationApplicationApproved, app.ID,
			fmt.Sprintf("Your application for %s was approved. Pay the platform fee of %s by %s to continue",
				property.Title, money(fee), due.Format("02 Jan 2006"))); err != nil {
			return err
		}
		return w.activity(ctx, ownerID, "APPLICATION_APPROVED", property.Title, app.ID)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) RejectApplication(ctx context.Context, ownerID, applicationID, reason string) (*domain.Application, error) {
	var app *domain.Application
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		app, err = applicationForOwner(ctx, w, applicationID, ownerID)
		if err != nil {
			return err
		}
		if err := w.advanceApplication(ctx, app, domain.ApplicationEventReject, s.now(), func(a *domain.Application) {
			a.Amount = decimal.Zero
			a.DueDate = nil
		}); err != nil {
			return err
		}
		title := propertyTitle(ctx, w, app.PropertyID)
		msg := fmt.Sprintf("Your application for %s was not accepted", title)
		if reason = strings.TrimSpace(reason); reason != "" {
			msg += ": " + reason
		}
		if err := w.notify(ctx, app.RenterID, domain.NotificationApplicationRejected, app.ID, msg); err != nil {
			return err
		}
		return w.activity(ctx, ownerID, "APPLICATION_REJECTED", reason, app.ID)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateApplicationStatus is the status-setter entrypoint kept for older clients.
// Payment-driven statuses have their own operations.
func (s *applicationService) UpdateApplicationStatus(ctx context.Context, ownerID, applicationID string, status domain.ApplicationStatus) (*domain.Application, error) {
	switch status {
	case domain.ApplicationStatusApproved:
		return s.ApproveApplication(ctx, ownerID, applicationID)
	case domain.ApplicationStatusRejected:
		return s.RejectApplication(ctx, ownerID, applicationID, "")
	}
	app, err := applicationForOwner(ctx, &writer{Store: s.Store}, applicationID, ownerID)
	if err != nil {
		return nil, err
	}
	return nil, &domain.TransitionError{Entity: "application", From: string(app.Status), Event: "set_" + string(status)}
}

func (s *applicationService) FinalizeAgreement(ctx context.Context, ownerID, applicationID string, terms domain.AgreementTerms) (*domain.Application, *domain.Agreement, error) {
	logger.EnterMethod("ApplicationService.FinalizeAgreement", "ownerID", ownerID, "applicationID", applicationID)

	if terms.RentAmount.IsNegative() || terms.DepositAmount.IsNegative() {
		return nil, nil, domain.Invalid("amounts must not be negative")
	}

	var (
		app       *domain.Application
		agreement *domain.Agreement
	)
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		app, err = applicationForOwner(ctx, w, applicationID, ownerID)
		if err != nil {
			return err
		}
		if _, err := domain.NextApplicationStatus(app.Status, domain.ApplicationEventFinalizeAgreement); err != nil {
			return err
		}
		property, err := w.Properties().GetByID(ctx, app.PropertyID)
		if err != nil {
			return err
		}

		now := s.now()
		agreement = &domain.Agreement{
			ApplicationID: app.ID,
			PropertyID:    app.PropertyID,
			TenantID:      app.RenterID,
			OwnerID:       app.OwnerID,
			RentAmount:    terms.RentAmount,
			DepositAmount: terms.DepositAmount,
			StartDate:     terms.StartDate,
			Terms:         terms.Text,
			CreatedAt:     now,
		}
		if agreement.RentAmount.IsZero() {
			agreement.RentAmount = property.Rent
		}
		if agreement.DepositAmount.IsZero() {
			agreement.DepositAmount = property.SecurityDeposit
		}
		if agreement.StartDate.IsZero() {
			agreement.StartDate = startDateFor(app, now)
		}
		agreement.StartDate = utils.StartOfDay(agreement.StartDate)
		if err := w.Agreements().Create(ctx, agreement); err != nil {
			return err
		}

		if err := w.advanceApplication(ctx, app, domain.ApplicationEventFinalizeAgreement, now, func(a *domain.Application) {
			a.AgreementID = &agreement.ID
		}); err != nil {
			return err
		}
		if err := w.notify(ctx, app.RenterID, domain.NotificationAgreementSent, agreement.ID,
			fmt.Sprintf("The rental agreement for %s is ready: rent %s, deposit %s, starting %s. Your signature is required",
				property.Title, money(agreement.RentAmount), money(agreement.DepositAmount), agreement.StartDate.Format("02 Jan 2006"))); err != nil {
			return err
		}
		return w.activity(ctx, ownerID, "AGREEMENT_FINALIZED", property.Title, agreement.ID)
	})
	if err != nil {
		logger.ExitMethodWithError("ApplicationService.FinalizeAgreement", err)
		return nil, nil, err
	}
	logger.ExitMethod("ApplicationService.FinalizeAgreement", "agreementID", agreement.ID)
	return app, agreement, nil
}

func startDateFor(app *domain.Application, now time.Time) time.Time {
	if app.MoveInDate != nil && !app.MoveInDate.IsZero() {
		return *app.MoveInDate
	}
	return now
}

func (s *applicationService) ConfirmKeyHandover(ctx context.Context, ownerID, applicationID string) (*domain.Application, error) {
	var app *domain.Application
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		app, err = applicationForOwner(ctx, w, applicationID, ownerID)
		if err != nil {
			return err
		}
		if err := w.advanceApplication(ctx, app, domain.ApplicationEventKeyHandover, s.now(), nil); err != nil {
			return err
		}
		title := propertyTitle(ctx, w, app.PropertyID)
		if err := w.notify(ctx, app.RenterID, domain.NotificationKeyHandoverComplete, app.ID,
			fmt.Sprintf("Keys for %s have been handed over. Welcome home", title)); err != nil {
			return err
		}
		return w.activity(ctx, ownerID, "KEY_HANDOVER", title, app.ID)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) GetApplication(ctx context.Context, userID, applicationID string) (*domain.Application, error) {
	app, err := s.Store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.IsParticipant(userID) {
		return nil, domain.ErrForbidden
	}
	return app, nil
}

func (s *applicationService) ListApplications(ctx context.Context, userID string) ([]domain.Application, error) {
	return s.Store.Applications().List(ctx, domain.ApplicationFilter{UserID: userID})
}

package service

import (
	"context"
	"fmt"
	"strings"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type paymentService struct {
	Deps
}

func NewPaymentService(d Deps) PaymentService {
	return &paymentService{Deps: d}
}

func (s *paymentService) fee(amount decimal.Decimal) decimal.Decimal {
	return domain.ServiceFee(amount, s.Settings.ServiceFeePercentage)
}

// PayPlatformFee settles the fee charged when an owner approves a direct application.
// It opens the first rent period and prepares an agreement for signing.
func (s *paymentService) PayPlatformFee(ctx context.Context, tenantID, applicationID, reference string) (*domain.Application, error) {
	logger.EnterMethod("PaymentService.PayPlatformFee", "tenantID", tenantID, "applicationID", applicationID)

	var app *domain.Application
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		app, err = applicationForRenter(ctx, w, applicationID, tenantID)
		if err != nil {
			return err
		}
		if _, err := domain.NextApplicationStatus(app.Status, domain.ApplicationEventPayPlatformFee); err != nil {
			return err
		}
		property, err := w.Properties().GetByID(ctx, app.PropertyID)
		if err != nil {
			return err
		}
		now := s.now()
		fee := app.Amount
		if !fee.IsPositive() {
			fee = s.fee(property.Rent)
		}

		if err := w.pay(ctx, &domain.Payment{
			UserID:        tenantID,
			PropertyID:    app.PropertyID,
			ApplicationID: &app.ID,
			Type:          domain.PaymentTypePlatformFee,
			Amount:        fee,
			Reference:     reference,
		}); err != nil {
			return err
		}
		if err := w.Users().AddOwnerCredit(ctx, app.OwnerID, fee); err != nil {
			return err
		}

		agreement, err := w.Agreements().GetByApplication(ctx, app.ID)
		if domain.IsNotFound(err) {
			agreement = &domain.Agreement{
				ApplicationID: app.ID,
				PropertyID:    app.PropertyID,
				TenantID:      app.RenterID,
				OwnerID:       app.OwnerID,
				RentAmount:    property.Rent,
				DepositAmount: property.SecurityDeposit,
				StartDate:     utils.StartOfDay(startDateFor(app, now)),
				CreatedAt:     now,
			}
			err = w.Agreements().Create(ctx, agreement)
		}
		if err != nil {
			return err
		}

		firstDue := agreement.StartDate
		if err := w.advanceApplication(ctx, app, domain.ApplicationEventPayPlatformFee, now, func(a *domain.Application) {
			a.Amount = property.Rent
			a.DueDate = &firstDue
			a.AgreementID = &agreement.ID
		}); err != nil {
			return err
		}
		if err := w.notify(ctx, tenantID, domain.NotificationSignatureRequired, agreement.ID,
			fmt.Sprintf("Platform fee of %s received. The agreement for %s is ready for your signature", money(fee), property.Title)); err != nil {
			return err
		}
		return w.activity(ctx, tenantID, "PLATFORM_FEE_PAID", money(fee), app.ID)
	})
	if err != nil {
		logger.ExitMethodWithError("PaymentService.PayPlatformFee", err)
		return nil, err
	}
	logger.ExitMethod("PaymentService.PayPlatformFee", "status", app.Status)
	return app, nil
}

func (s *paymentService) SelectPaymentMethod(ctx context.Context, tenantID, applicationID string, method domain.PaymentMethod) (*domain.CheckoutIntent, error) {
	app, err := s.Store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.RenterID != tenantID {
		return nil, domain.ErrForbidden
	}

	switch method {
	case domain.PaymentMethodOnline:
		if _, err := domain.NextApplicationStatus(app.Status, domain.ApplicationEventPaymentSucceeded); err != nil {
			return nil, err
		}
	case domain.PaymentMethodOffline:
		if _, err := domain.NextApplicationStatus(app.Status, domain.ApplicationEventOfflineSubmitted); err != nil {
			return nil, err
		}
	default:
		return nil, domain.Invalid("unknown payment method %q", method)
	}

	tenant, err := s.Store.Users().GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	title := app.PropertyID
	if p, err := s.Store.Properties().GetByID(ctx, app.PropertyID); err == nil {
		title = p.Title
	}
	description := fmt.Sprintf("Security deposit and first month's rent for %s", title)
	if app.Status == domain.ApplicationStatusRentDue {
		description = fmt.Sprintf("Rent for %s", title)
		if app.BillingPeriod != nil {
			description += ", " + app.BillingPeriod.String()
		}
	}

	return &domain.CheckoutIntent{
		ApplicationID: app.ID,
		Method:        method,
		Amount:        app.Amount,
		Description:   description,
		PayerName:     tenant.Name,
		PayerEmail:    tenant.Email,
	}, nil
}

// RentPaymentSuccess records a completed online checkout. The platform fee is taken
// from the rent portion only, so a deposit payment is charged on agreement rent.
func (s *paymentService) RentPaymentSuccess(ctx context.Context, tenantID, applicationID, reference string) (*domain.Application, error) {
	logger.EnterMethod("PaymentService.RentPaymentSuccess", "tenantID", tenantID, "applicationID", applicationID)

	var app *domain.Application
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		app, err = applicationForRenter(ctx, w, applicationID, tenantID)
		if err != nil {
			return err
		}
		switch app.Status {
		case domain.ApplicationStatusDepositDue:
			return s.settleDeposit(ctx, w, app, reference)
		case domain.ApplicationStatusRentDue:
			return s.settleRent(ctx, w, app, reference)
		}
		return &domain.TransitionError{Entity: "application", From: string(app.Status), Event: string(domain.ApplicationEventPaymentSucceeded)}
	})
	if err != nil {
		logger.ExitMethodWithError("PaymentService.RentPaymentSuccess", err)
		return nil, err
	}
	logger.ExitMethod("PaymentService.RentPaymentSuccess", "status", app.Status)
	return app, nil
}

func (s *paymentService) settleDeposit(ctx context.Context, w *writer, app *domain.Application, reference string) error {
	agreement, err := s.agreementFor(ctx, w, app)
	if err != nil {
		return err
	}
	paid := app.Amount
	fee := s.fee(agreement.RentAmount)
	net := paid.Sub(fee)

	if err := w.pay(ctx, &domain.Payment{
		UserID:        app.RenterID,
		PropertyID:    app.PropertyID,
		ApplicationID: &app.ID,
		Type:          domain.PaymentTypeDeposit,
		Amount:        paid,
		Reference:     reference,
	}); err != nil {
		return err
	}
	if err := w.pay(ctx, &domain.Payment{
		UserID:        app.RenterID,
		PropertyID:    app.PropertyID,
		ApplicationID: &app.ID,
		Type:          domain.PaymentTypePlatformFee,
		Amount:        fee,
		Reference:     reference,
	}); err != nil {
		return err
	}
	if err := w.Properties().SetAvailability(ctx, app.PropertyID, domain.AvailabilityRented); err != nil {
		return err
	}
	if err := w.Users().AddOwnerCredit(ctx, app.OwnerID, net); err != nil {
		return err
	}
	if err := w.advanceApplication(ctx, app, domain.ApplicationEventPaymentSucceeded, s.now(), clearAmountDue); err != nil {
		return err
	}

	title := propertyTitle(ctx, w, app.PropertyID)
	if err := w.notify(ctx, app.OwnerID, domain.NotificationPaymentReceived, app.ID,
		fmt.Sprintf("Deposit and first month's rent for %s received. %s credited after a platform fee of %s", title, money(net), money(fee))); err != nil {
		return err
	}
	if err := w.notify(ctx, app.RenterID, domain.NotificationMoveInReady, app.ID,
		fmt.Sprintf("Payment of %s for %s received. Coordinate the key handover with your owner", money(paid), title)); err != nil {
		return err
	}
	return w.activity(ctx, app.RenterID, "DEPOSIT_PAID", money(paid), app.ID)
}

func (s *paymentService) settleRent(ctx context.Context, w *writer, app *domain.Application, reference string) error {
	paid := app.Amount
	fee := s.fee(paid)
	net := paid.Sub(fee)

	if err := w.pay(ctx, &domain.Payment{
		UserID:        app.RenterID,
		PropertyID:    app.PropertyID,
		ApplicationID: &app.ID,
		Type:          domain.PaymentTypeRent,
		Amount:        paid,
		Reference:     reference,
	}); err != nil {
		return err
	}
	if err := w.pay(ctx, &domain.Payment{
		UserID:        app.RenterID,
		PropertyID:    app.PropertyID,
		ApplicationID: &app.ID,
		Type:          domain.PaymentTypePlatformFee,
		Amount:        fee,
		Reference:     reference,
	}); err != nil {
		return err
	}
	if err := w.Users().AddOwnerCredit(ctx, app.OwnerID, net); err != nil {
		return err
	}
	if err := w.advanceApplication(ctx, app, domain.ApplicationEventPaymentSucceeded, s.now(), clearAmountDue); err != nil {
		return err
	}

	title := propertyTitle(ctx, w, app.PropertyID)
	period := ""
	if app.BillingPeriod != nil {
		period = " (" + app.BillingPeriod.String() + ")"
	}
	if err := w.notify(ctx, app.OwnerID, domain.NotificationPaymentReceived, app.ID,
		fmt.Sprintf("Rent for %s%s received. %s credited after a platform fee of %s", title, period, money(net), money(fee))); err != nil {
		return err
	}
	if err := w.notify(ctx, app.RenterID, domain.NotificationPaymentReceived, app.ID,
		fmt.Sprintf("Your rent payment of %s for %s%s was received", money(paid), title, period)); err != nil {
		return err
	}
	return w.activity(ctx, app.RenterID, "RENT_PAID", money(paid), app.ID)
}

func (s *paymentService) agreementFor(ctx context.Context, w *writer, app *domain.Application) (*domain.Agreement, error) {
	if app.AgreementID != nil {
		return w.Agreements().GetByID(ctx, *app.AgreementID)
	}
	return w.Agreements().GetByApplication(ctx, app.ID)
}

func clearAmountDue(a *domain.Application) {
	a.Amount = decimal.Zero
	a.DueDate = nil
}

// RentPaymentFailure leaves the application as it is and keeps an audit record of the attempt.
func (s *paymentService) RentPaymentFailure(ctx context.Context, tenantID, applicationID, reason string) (*domain.Application, error) {
	var app *domain.Application
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		app, err = applicationForRenter(ctx, w, applicationID, tenantID)
		if err != nil {
			return err
		}
		paymentType := domain.PaymentTypeRent
		switch app.Status {
		case domain.ApplicationStatusDepositDue:
			paymentType = domain.PaymentTypeDeposit
		case domain.ApplicationStatusRentDue:
		default:
			return &domain.TransitionError{Entity: "application", From: string(app.Status), Event: "payment_failed"}
		}
		reason = strings.TrimSpace(reason)
		if err := w.pay(ctx, &domain.Payment{
			UserID:        tenantID,
			PropertyID:    app.PropertyID,
			ApplicationID: &app.ID,
			Type:          paymentType,
			Amount:        app.Amount,
			Status:        domain.PaymentStatusFailed,
			Reference:     reason,
		}); err != nil {
			return err
		}
		msg := fmt.Sprintf("Your payment of %s did not go through", money(app.Amount))
		if reason != "" {
			msg += ": " + reason
		}
		return w.notify(ctx, tenantID, domain.NotificationPaymentFailed, app.ID, msg+". You can try again")
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *paymentService) SubmitOfflinePayment(ctx context.Context, tenantID, applicationID, upiTransactionID string) (*domain.Application, error) {
	upiTransactionID = strings.TrimSpace(upiTransactionID)
	if upiTransactionID == "" {
		return nil, domain.Invalid("transaction id is required")
	}

	var app *domain.Application
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		app, err = applicationForRenter(ctx, w, applicationID, tenantID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := w.advanceApplication(ctx, app, domain.ApplicationEventOfflineSubmitted, now, func(a *domain.Application) {
			a.OfflinePayment = &domain.OfflinePaymentDetails{
				TransactionID: upiTransactionID,
				SubmittedAt:   now,
			}
		}); err != nil {
			return err
		}
		title := propertyTitle(ctx, w, app.PropertyID)
		if err := w.notify(ctx, app.OwnerID, domain.NotificationOfflinePaymentSubmitted, app.ID,
			fmt.Sprintf("Your tenant reports paying %s for %s by UPI (transaction %s). Please confirm once you receive it",
				money(app.Amount), title, upiTransactionID)); err != nil {
			return err
		}
		return w.activity(ctx, tenantID, "OFFLINE_PAYMENT_SUBMITTED", upiTransactionID, app.ID)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// AcknowledgeOfflinePayment confirms a UPI transfer made directly to the owner.
// No platform fee is withheld on this path.
func (s *paymentService) AcknowledgeOfflinePayment(ctx context.Context, ownerID, applicationID string) (*domain.Application, error) {
	var app *domain.Application
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		app, err = applicationForOwner(ctx, w, applicationID, ownerID)
		if err != nil {
			return err
		}
		paid := app.Amount
		now := s.now()
		reference := ""
		if app.OfflinePayment != nil {
			reference = app.OfflinePayment.TransactionID
		}
		if err := w.advanceApplication(ctx, app, domain.ApplicationEventOfflineAcknowledged, now, func(a *domain.Application) {
			details := domain.OfflinePaymentDetails{SubmittedAt: now}
			if a.OfflinePayment != nil {
				details = *a.OfflinePayment
			}
			details.Acknowledged = true
			details.AcknowledgedAt = timePtr(now)
			a.OfflinePayment = &details
			clearAmountDue(a)
		}); err != nil {
			return err
		}
		if err := w.pay(ctx, &domain.Payment{
			UserID:        app.RenterID,
			PropertyID:    app.PropertyID,
			ApplicationID: &app.ID,
			Type:          domain.PaymentTypeRent,
			Amount:        paid,
			Reference:     reference,
		}); err != nil {
			return err
		}
		title := propertyTitle(ctx, w, app.PropertyID)
		if err := w.notify(ctx, app.RenterID, domain.NotificationOfflinePaymentAcknowledged, app.ID,
			fmt.Sprintf("The owner confirmed your UPI payment of %s for %s", money(paid), title)); err != nil {
			return err
		}
		return w.activity(ctx, ownerID, "OFFLINE_PAYMENT_ACKNOWLEDGED", reference, app.ID)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

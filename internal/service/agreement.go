package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/repository"
	"rentnest-backend/internal/security"
)

type agreementService struct {
	Deps
	challenges security.ChallengeStore
}

func NewAgreementService(d Deps, challenges security.ChallengeStore) AgreementService {
	return &agreementService{Deps: d, challenges: challenges}
}

func (s *agreementService) SignAgreement(ctx context.Context, userID, agreementID string) (*domain.Agreement, error) {
	logger.EnterMethod("AgreementService.SignAgreement", "userID", userID, "agreementID", agreementID)

	var agreement *domain.Agreement
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		agreement, err = w.Agreements().GetByID(ctx, agreementID)
		if err != nil {
			return err
		}
		if !agreement.IsParticipant(userID) {
			return fmt.Errorf("%w: not a party to this agreement", domain.ErrForbidden)
		}
		if err := requireSignable(ctx, w.Applications(), agreement); err != nil {
			return err
		}
		now := s.now()

		switch userID {
		case agreement.TenantID:
			if agreement.SignedByTenant {
				return nil
			}
			if s.Settings.RequireKYCForSigning {
				tenant, err := w.Users().GetByID(ctx, userID)
				if err != nil {
					return err
				}
				if tenant.KYCStatus != domain.KYCStatusVerified {
					return domain.ErrKYCRequired
				}
			}
			agreement.SignedByTenant = true
			agreement.TenantSignedAt = timePtr(now)
		case agreement.OwnerID:
			if agreement.SignedByOwner {
				return nil
			}
			if !agreement.SignedByTenant {
				return domain.ErrSignatureOrder
			}
			agreement.SignedByOwner = true
			agreement.OwnerSignedAt = timePtr(now)
		default:
			return fmt.Errorf("%w: not a party to this agreement", domain.ErrForbidden)
		}

		if err := w.Agreements().Update(ctx, agreement); err != nil {
			return err
		}
		if err := w.activity(ctx, userID, "AGREEMENT_SIGNED", "", agreement.ID); err != nil {
			return err
		}
		title := propertyTitle(ctx, w, agreement.PropertyID)

		if !agreement.Active() {
			other := agreement.OwnerID
			if userID == agreement.OwnerID {
				other = agreement.TenantID
			}
			return w.notify(ctx, other, domain.NotificationSignatureRequired, agreement.ID,
				fmt.Sprintf("The agreement for %s has been signed by the other party. Your signature is required", title))
		}
		return s.activate(ctx, w, agreement, title, now)
	})
	if err != nil {
		logger.ExitMethodWithError("AgreementService.SignAgreement", err)
		return nil, err
	}
	logger.ExitMethod("AgreementService.SignAgreement", "active", agreement.Active())
	return agreement, nil
}

// requireSignable rejects signatures once the linked application has left the signing states.
func requireSignable(ctx context.Context, apps repository.ApplicationRepository, agreement *domain.Agreement) error {
	app, err := apps.GetByID(ctx, agreement.ApplicationID)
	if domain.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !app.Status.AgreementSignable() {
		return &domain.TransitionError{Entity: "agreement", From: string(app.Status), Event: "sign"}
	}
	return nil
}

// activate moves the onboarding application to DEPOSIT_DUE once both parties have signed.
// Applications on the platform-fee path are past AGREEMENT_SENT and are left alone.
func (s *agreementService) activate(ctx context.Context, w *writer, agreement *domain.Agreement, title string, now time.Time) error {
	app, err := w.Applications().GetByID(ctx, agreement.ApplicationID)
	if domain.IsNotFound(err) {
		logger.Warn("Agreement has no application", "agreementID", agreement.ID, "applicationID", agreement.ApplicationID)
		return nil
	}
	if err != nil {
		return err
	}
	if app.Status != domain.ApplicationStatusAgreementSent {
		return nil
	}

	due := agreement.DepositAmount.Add(agreement.RentAmount)
	dueDate := agreement.StartDate
	if err := w.advanceApplication(ctx, app, domain.ApplicationEventAgreementSigned, now, func(a *domain.Application) {
		a.Amount = due
		a.DueDate = &dueDate
	}); err != nil {
		return err
	}
	if err := w.notify(ctx, agreement.TenantID, domain.NotificationPaymentDue, app.ID,
		fmt.Sprintf("The agreement for %s is signed. Pay the deposit and first month's rent of %s by %s",
			title, money(due), dueDate.Format("02 Jan 2006"))); err != nil {
		return err
	}
	return w.notify(ctx, agreement.OwnerID, domain.NotificationAgreementComplete, agreement.ID,
		fmt.Sprintf("Both parties have signed the agreement for %s", title))
}

func (s *agreementService) InitiateSignature(ctx context.Context, userID, agreementID string) (time.Time, error) {
	agreement, err := s.GetAgreement(ctx, userID, agreementID)
	if err != nil {
		return time.Time{}, err
	}
	if (userID == agreement.TenantID && agreement.SignedByTenant) || (userID == agreement.OwnerID && agreement.SignedByOwner) {
		return time.Time{}, domain.Invalid("agreement already signed")
	}
	if userID == agreement.OwnerID && !agreement.SignedByTenant {
		return time.Time{}, domain.ErrSignatureOrder
	}
	if err := requireSignable(ctx, s.Store.Applications(), agreement); err != nil {
		return time.Time{}, err
	}

	code, err := security.GenerateCode()
	if err != nil {
		return time.Time{}, err
	}
	ttl := s.Settings.OTPTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if err := s.challenges.Put(ctx, security.SignatureChallengeKey(agreementID, userID), code, ttl); err != nil {
		return time.Time{}, fmt.Errorf("store signature challenge: %w", err)
	}

	// Only the delivered copy carries the code; the stored record is readable over the API.
	n, err := s.ledger().Notify(ctx, s.Store, userID, domain.NotificationSignatureOTP,
		fmt.Sprintf("A code to sign the rental agreement was sent to you. It expires in %d minutes", int(ttl.Minutes())),
		agreement.ID, nil)
	if err != nil {
		return time.Time{}, err
	}
	if s.Notifier != nil {
		delivered := *n
		delivered.Message = fmt.Sprintf("Your code to sign the rental agreement is %s. It expires in %d minutes", code, int(ttl.Minutes()))
		s.Notifier.Dispatch(ctx, delivered)
	}
	logger.Info("Signature challenge issued", "agreementID", agreementID, "userID", userID)
	return s.now().Add(ttl), nil
}

// VerifyOtpAndSign signs on a matching code. A wrong code leaves the challenge in place;
// the challenge is consumed once the signature is recorded.
func (s *agreementService) VerifyOtpAndSign(ctx context.Context, userID, agreementID, code string) (*domain.Agreement, error) {
	key := security.SignatureChallengeKey(agreementID, userID)
	expected, err := s.challenges.Get(ctx, key)
	if errors.Is(err, security.ErrNoChallenge) {
		return nil, domain.ErrInvalidOTP
	}
	if err != nil {
		return nil, fmt.Errorf("load signature challenge: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
		return nil, domain.ErrInvalidOTP
	}

	agreement, err := s.SignAgreement(ctx, userID, agreementID)
	if err != nil {
		return nil, err
	}
	if err := s.challenges.Consume(ctx, key); err != nil {
		logger.Warn("Failed to consume signature challenge", "agreementID", agreementID, "error", err)
	}
	return agreement, nil
}

func (s *agreementService) GetAgreement(ctx context.Context, userID, agreementID string) (*domain.Agreement, error) {
	agreement, err := s.Store.Agreements().GetByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if !agreement.IsParticipant(userID) {
		return nil, domain.ErrForbidden
	}
	return agreement, nil
}

func (s *agreementService) ListAgreements(ctx context.Context, userID string) ([]domain.Agreement, error) {
	return s.Store.Agreements().ListByUser(ctx, userID)
}

package service

import (
	"context"
	"fmt"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"

	"github.com/google/uuid"
)

const viewingTimeLayout = "Mon 02 Jan 2006, 15:04 MST"

type viewingService struct {
	Deps
}

func NewViewingService(d Deps) ViewingService {
	return &viewingService{Deps: d}
}

func (s *viewingService) RequestViewing(ctx context.Context, tenantID, propertyID string, scheduledAt time.Time, snapshot domain.VerificationSnapshot) (*domain.Viewing, error) {
	logger.EnterMethod("ViewingService.RequestViewing", "tenantID", tenantID, "propertyID", propertyID)

	tenant, err := requireRole(ctx, s.Store.Users(), tenantID, domain.UserRoleRenter)
	if err != nil {
		logger.ExitMethodWithError("ViewingService.RequestViewing", err)
		return nil, err
	}
	property, err := s.Store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		logger.ExitMethodWithError("ViewingService.RequestViewing", err)
		return nil, err
	}
	if property.Availability != domain.AvailabilityAvailable {
		return nil, domain.Invalid("property %s is not available", propertyID)
	}
	if property.OwnerID == tenantID {
		return nil, fmt.Errorf("%w: cannot request a viewing of your own property", domain.ErrForbidden)
	}
	now := s.now()
	if !scheduledAt.After(now) {
		return nil, domain.Invalid("viewing must be scheduled in the future")
	}

	viewing := &domain.Viewing{
		ID:            uuid.NewString(),
		PropertyID:    property.ID,
		TenantID:      tenantID,
		OwnerID:       property.OwnerID,
		AdvanceAmount: property.ViewingAdvance,
		Status:        domain.ViewingStatusRequested,
		ScheduledAt:   scheduledAt.UTC(),
		RequestedAt:   now,
		UpdatedAt:     now,
		Verification:  snapshot,
	}

	err = s.inTx(ctx, func(w *writer) error {
		var advance *domain.Payment
		if property.ViewingAdvance.IsPositive() {
			advance = &domain.Payment{
				ID:         uuid.NewString(),
				UserID:     tenantID,
				PropertyID: property.ID,
				ViewingID:  &viewing.ID,
				Type:       domain.PaymentTypeViewingAdvance,
				Amount:     property.ViewingAdvance,
			}
			viewing.AdvancePaymentID = &advance.ID
		}
		if err := w.Viewings().Create(ctx, viewing); err != nil {
			return err
		}
		if advance != nil {
			if err := w.pay(ctx, advance); err != nil {
				return err
			}
		}

		when := viewing.ScheduledAt.Format(viewingTimeLayout)
		if err := w.notify(ctx, property.OwnerID, domain.NotificationViewingRequested, viewing.ID,
			fmt.Sprintf("%s requested a viewing of %s on %s", tenant.Name, property.Title, when)); err != nil {
			return err
		}
		msg := fmt.Sprintf("Your viewing request for %s on %s has been sent to the owner", property.Title, when)
		if advance != nil {
			msg += fmt.Sprintf(". Advance of %s paid", money(advance.Amount))
		}
		if err := w.notify(ctx, tenantID, domain.NotificationViewingConfirmation, viewing.ID, msg); err != nil {
			return err
		}
		return w.activity(ctx, tenantID, "VIEWING_REQUESTED", property.Title, viewing.ID)
	})
	if err != nil {
		logger.ExitMethodWithError("ViewingService.RequestViewing", err)
		return nil, err
	}

	logger.ExitMethod("ViewingService.RequestViewing", "viewingID", viewing.ID)
	return viewing, nil
}

func (s *viewingService) UpdateViewingStatus(ctx context.Context, ownerID, viewingID string, status domain.ViewingStatus) (*domain.Viewing, error) {
	logger.EnterMethod("ViewingService.UpdateViewingStatus", "ownerID", ownerID, "viewingID", viewingID, "status", status)

	event, ok := domain.ViewingEventFor(status)
	if !ok {
		v, err := s.Store.Viewings().GetByID(ctx, viewingID)
		if err != nil {
			return nil, err
		}
		if v.OwnerID != ownerID {
			return nil, fmt.Errorf("%w: only the owner can update this viewing", domain.ErrForbidden)
		}
		return nil, &domain.TransitionError{Entity: "viewing", From: string(v.Status), Event: "set_" + string(status)}
	}

	viewing, err := s.transition(ctx, viewingID, event, func(v *domain.Viewing) error {
		if v.OwnerID != ownerID {
			return fmt.Errorf("%w: only the owner can update this viewing", domain.ErrForbidden)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("ViewingService.UpdateViewingStatus", err)
		return nil, err
	}
	logger.ExitMethod("ViewingService.UpdateViewingStatus", "status", viewing.Status)
	return viewing, nil
}

func (s *viewingService) CancelViewing(ctx context.Context, tenantID, viewingID string) (*domain.Viewing, error) {
	return s.transition(ctx, viewingID, domain.ViewingEventCancel, s.tenantOnly(tenantID))
}

func (s *viewingService) RejectAfterViewing(ctx context.Context, tenantID, viewingID string) (*domain.Viewing, error) {
	return s.transition(ctx, viewingID, domain.ViewingEventTenantReject, s.tenantOnly(tenantID))
}

func (s *viewingService) tenantOnly(tenantID string) func(v *domain.Viewing) error {
	return func(v *domain.Viewing) error {
		if v.TenantID != tenantID {
			return fmt.Errorf("%w: only the requesting tenant can do this", domain.ErrForbidden)
		}
		return nil
	}
}

// transition applies event to the viewing and performs its side effects in one
// transaction: refunds on the refundable end states, notifications otherwise.
func (s *viewingService) transition(ctx context.Context, viewingID string, event domain.ViewingEvent, authorize func(v *domain.Viewing) error) (*domain.Viewing, error) {
	var viewing *domain.Viewing
	err := s.inTx(ctx, func(w *writer) error {
		v, err := w.Viewings().GetByID(ctx, viewingID)
		if err != nil {
			return err
		}
		if err := authorize(v); err != nil {
			return err
		}
		next, err := domain.NextViewingStatus(v.Status, event)
		if err != nil {
			return err
		}
		from := v.Status
		v.Status = next
		v.UpdatedAt = s.now()
		if err := w.Viewings().Update(ctx, v); err != nil {
			return err
		}
		logger.Transition("viewing", v.ID, string(from), string(next))

		title := v.PropertyID
		if p, err := w.Properties().GetByID(ctx, v.PropertyID); err == nil {
			title = p.Title
		}
		if err := s.announce(ctx, w, v, title); err != nil {
			return err
		}
		viewing = v
		return w.activity(ctx, v.TenantID, "VIEWING_"+string(next), title, v.ID)
	})
	if err != nil {
		return nil, err
	}
	return viewing, nil
}

func (s *viewingService) announce(ctx context.Context, w *writer, v *domain.Viewing, title string) error {
	switch v.Status {
	case domain.ViewingStatusAccepted:
		return w.notify(ctx, v.TenantID, domain.NotificationViewingAccepted, v.ID,
			fmt.Sprintf("Your viewing of %s is confirmed for %s", title, v.ScheduledAt.Format(viewingTimeLayout)))
	case domain.ViewingStatusCompleted:
		return w.notify(ctx, v.TenantID, domain.NotificationViewingStatusChanged, v.ID,
			fmt.Sprintf("Your viewing of %s is complete. Let the owner know if you would like to rent it", title))
	}

	if !v.Status.Refundable() {
		return nil
	}
	if v.Status == domain.ViewingStatusCancelled {
		if err := w.notify(ctx, v.OwnerID, domain.NotificationViewingCancelled, v.ID,
			fmt.Sprintf("The viewing of %s on %s was cancelled by the tenant", title, v.ScheduledAt.Format(viewingTimeLayout))); err != nil {
			return err
		}
	}

	refund, err := s.refundAdvance(ctx, w, v)
	if err != nil {
		return err
	}
	if refund == nil {
		if v.Status == domain.ViewingStatusDeclined {
			return w.notify(ctx, v.TenantID, domain.NotificationViewingDeclined, v.ID,
				fmt.Sprintf("Your viewing request for %s was declined", title))
		}
		return nil
	}
	var reason string
	switch v.Status {
	case domain.ViewingStatusDeclined:
		reason = "was declined"
	case domain.ViewingStatusCancelled:
		reason = "was cancelled"
	default:
		reason = "is closed"
	}
	return w.notify(ctx, v.TenantID, domain.NotificationViewingRefunded, v.ID,
		fmt.Sprintf("Your viewing of %s %s. The advance of %s has been refunded", title, reason, money(refund.Amount)))
}

// refundAdvance returns nil when the viewing has no advance payment on record.
func (s *viewingService) refundAdvance(ctx context.Context, w *writer, v *domain.Viewing) (*domain.Payment, error) {
	if v.AdvancePaymentID == nil {
		return nil, nil
	}
	refund, err := w.refund(ctx, *v.AdvancePaymentID)
	if domain.IsNotFound(err) {
		logger.Warn("Viewing advance payment missing", "viewingID", v.ID, "paymentID", *v.AdvancePaymentID)
		return nil, nil
	}
	return refund, err
}

func (s *viewingService) GetViewing(ctx context.Context, userID, viewingID string) (*domain.Viewing, error) {
	v, err := s.Store.Viewings().GetByID(ctx, viewingID)
	if err != nil {
		return nil, err
	}
	if v.TenantID != userID && v.OwnerID != userID {
		return nil, domain.ErrForbidden
	}
	return v, nil
}

func (s *viewingService) ListViewings(ctx context.Context, userID string) ([]domain.Viewing, error) {
	return s.Store.Viewings().ListByUser(ctx, userID)
}

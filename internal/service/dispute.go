package service

import (
	"context"
	"fmt"
	"strings"

	"rentnest-backend/internal/domain"
)

type disputeService struct {
	Deps
}

func NewDisputeService(d Deps) DisputeService {
	return &disputeService{Deps: d}
}

func (s *disputeService) OpenDispute(ctx context.Context, userID, propertyID string, applicationID *string, reason string) (*domain.Dispute, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Invalid("reason is required")
	}
	property, err := s.Store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	against, err := s.counterparty(ctx, userID, property, applicationID)
	if err != nil {
		return nil, err
	}

	dispute := &domain.Dispute{
		PropertyID:    property.ID,
		ApplicationID: applicationID,
		RaisedBy:      userID,
		AgainstUserID: against,
		Reason:        reason,
		Status:        domain.DisputeStatusOpen,
		CreatedAt:     s.now(),
	}
	err = s.inTx(ctx, func(w *writer) error {
		if err := w.Disputes().Create(ctx, dispute); err != nil {
			return err
		}
		msg := fmt.Sprintf("A dispute was raised about %s: %s", property.Title, reason)
		if err := w.notify(ctx, against, domain.NotificationDisputeOpened, dispute.ID, msg); err != nil {
			return err
		}
		admins, err := w.Users().List(ctx, domain.UserRoleSuperAdmin)
		if err != nil {
			return err
		}
		for _, a := range admins {
			if err := w.notify(ctx, a.ID, domain.NotificationDisputeOpened, dispute.ID, msg); err != nil {
				return err
			}
		}
		return w.activity(ctx, userID, "DISPUTE_OPENED", reason, dispute.ID)
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

// counterparty resolves who the dispute is raised against. Only the owner and
// tenants who applied for the property may raise one.
func (s *disputeService) counterparty(ctx context.Context, userID string, property *domain.Property, applicationID *string) (string, error) {
	if applicationID != nil {
		app, err := s.Store.Applications().GetByID(ctx, *applicationID)
		if err != nil {
			return "", err
		}
		if app.PropertyID != property.ID {
			return "", domain.Invalid("application %s is for a different property", app.ID)
		}
		switch userID {
		case app.OwnerID:
			return app.RenterID, nil
		case app.RenterID:
			return app.OwnerID, nil
		}
		return "", fmt.Errorf("%w: not a party to this application", domain.ErrForbidden)
	}

	if userID == property.OwnerID {
		return "", domain.Invalid("owners must name the application the dispute is about")
	}
	apps, err := s.Store.Applications().List(ctx, domain.ApplicationFilter{PropertyID: property.ID, RenterID: userID})
	if err != nil {
		return "", err
	}
	if len(apps) == 0 {
		return "", fmt.Errorf("%w: no rental history with this property", domain.ErrForbidden)
	}
	return property.OwnerID, nil
}

func (s *disputeService) ResolveDispute(ctx context.Context, adminID, disputeID, resolution string) (*domain.Dispute, error) {
	if _, err := requireRole(ctx, s.Store.Users(), adminID, domain.UserRoleSuperAdmin); err != nil {
		return nil, err
	}
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return nil, domain.Invalid("resolution is required")
	}

	var dispute *domain.Dispute
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		dispute, err = w.Disputes().GetByID(ctx, disputeID)
		if err != nil {
			return err
		}
		if dispute.Status != domain.DisputeStatusOpen {
			return &domain.TransitionError{Entity: "dispute", From: string(dispute.Status), Event: "resolve"}
		}
		now := s.now()
		dispute.Status = domain.DisputeStatusResolved
		dispute.Resolution = resolution
		dispute.ResolvedBy = &adminID
		dispute.ResolvedAt = &now
		if err := w.Disputes().Update(ctx, dispute); err != nil {
			return err
		}
		msg := "Your dispute has been resolved: " + resolution
		for _, uid := range []string{dispute.RaisedBy, dispute.AgainstUserID} {
			if err := w.notify(ctx, uid, domain.NotificationDisputeResolved, dispute.ID, msg); err != nil {
				return err
			}
		}
		return w.activity(ctx, adminID, "DISPUTE_RESOLVED", resolution, dispute.ID)
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

func (s *disputeService) ListDisputes(ctx context.Context, userID string) ([]domain.Dispute, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsSuperAdmin() {
		return s.Store.Disputes().List(ctx, "")
	}
	return s.Store.Disputes().List(ctx, userID)
}

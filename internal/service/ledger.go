package service

import (
	"context"
	"fmt"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// Ledger appends payments, notifications and activity entries. Every method takes the
// store to write to so callers can run it inside WithinTx. Nothing is ever deleted.
type Ledger struct {
	now func() time.Time
}

func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{now: now}
}

func (l *Ledger) RecordPayment(ctx context.Context, store repository.Store, p *domain.Payment) error {
	if p.PaymentDate.IsZero() {
		p.PaymentDate = l.now().UTC()
	}
	if p.Status == "" {
		p.Status = domain.PaymentStatusPaid
	}
	if err := store.Payments().Create(ctx, p); err != nil {
		return fmt.Errorf("record %s payment: %w", p.Type, err)
	}
	logger.Info("Payment recorded", "paymentID", p.ID, "type", p.Type, "amount", p.Amount.String(), "status", p.Status, "userID", p.UserID)
	return nil
}

// Refund flips a Paid payment to Refunded and appends the mirrored REFUND entry.
// A payment that is not Paid yields a *domain.TransitionError, so a payment is
// refunded at most once.
func (l *Ledger) Refund(ctx context.Context, store repository.Store, originalID string) (*domain.Payment, error) {
	original, err := store.Payments().GetByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.PaymentStatusPaid {
		return nil, &domain.TransitionError{Entity: "payment", From: string(original.Status), Event: "refund"}
	}
	if err := store.Payments().MarkRefunded(ctx, originalID); err != nil {
		return nil, err
	}

	refund := &domain.Payment{
		UserID:           original.UserID,
		PropertyID:       original.PropertyID,
		ApplicationID:    original.ApplicationID,
		ViewingID:        original.ViewingID,
		BillID:           original.BillID,
		RelatedPaymentID: &original.ID,
		Type:             domain.PaymentTypeRefund,
		Amount:           original.Amount,
		Status:           domain.PaymentStatusPaid,
	}
	if err := l.RecordPayment(ctx, store, refund); err != nil {
		return nil, err
	}
	logger.Transition("payment", originalID, string(domain.PaymentStatusPaid), string(domain.PaymentStatusRefunded), "refundID", refund.ID)
	return refund, nil
}

func (l *Ledger) Notify(ctx context.Context, store repository.Store, userID string, typ domain.NotificationType, message, relatedID string, attrs map[string]string) (*domain.Notification, error) {
	n := &domain.Notification{
		UserID:     userID,
		Type:       typ,
		Message:    message,
		RelatedID:  relatedID,
		Attributes: attrs,
		CreatedAt:  l.now().UTC(),
	}
	if err := store.Notifications().Create(ctx, n); err != nil {
		return nil, fmt.Errorf("notify %s: %w", typ, err)
	}
	return n, nil
}

func (l *Ledger) LogActivity(ctx context.Context, store repository.Store, userID, action, details, relatedID string) error {
	a := &domain.ActivityLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		RelatedID: relatedID,
		CreatedAt: l.now().UTC(),
	}
	return store.Activities().Create(ctx, a)
}

type ledgerService struct {
	store repository.Store
}

func NewLedgerService(store repository.Store) LedgerService {
	return &ledgerService{store: store}
}

func (s *ledgerService) ListPayments(ctx context.Context, userID string) ([]domain.Payment, error) {
	return s.store.Payments().ListByUser(ctx, userID)
}

func (s *ledgerService) ListNotifications(ctx context.Context, userID string, page, pageSize int) ([]domain.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.store.Notifications().List(ctx, userID, pageSize, offset)
}

func (s *ledgerService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.Notifications().MarkAllRead(ctx, userID)
}

func (s *ledgerService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.Notifications().CountUnread(ctx, userID)
}

func (s *ledgerService) PaymentSummary(ctx context.Context, userID string) (*domain.PaymentSummary, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := &domain.PaymentSummary{
		TotalsByType: make(map[domain.PaymentType]decimal.Decimal),
		Count:        len(payments),
		OwnerCredit:  user.OwnerCredit,
	}
	for _, p := range payments {
		if p.Status == domain.PaymentStatusFailed {
			continue
		}
		summary.TotalsByType[p.Type] = summary.TotalsByType[p.Type].Add(p.Amount)
	}
	return summary, nil
}

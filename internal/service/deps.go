package service

import (
	"context"
	"fmt"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/notify"
	"rentnest-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// Settings are the tunable business rules of the rental lifecycle.
type Settings struct {
	ServiceFeePercentage decimal.Decimal
	PlatformFeeDueDays   int
	ReminderDaysBefore   int
	OverdueAfterDays     int
	RequireKYCForSigning bool
	OTPTTL               time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		ServiceFeePercentage: domain.DefaultServiceFeePercentage,
		PlatformFeeDueDays:   7,
		ReminderDaysBefore:   5,
		OverdueAfterDays:     3,
		RequireKYCForSigning: true,
		OTPTTL:               10 * time.Minute,
	}
}

// Deps is shared by the lifecycle services.
type Deps struct {
	Store    repository.Store
	Ledger   *Ledger
	Notifier notify.Notifier
	Settings Settings
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

func (d Deps) ledger() *Ledger {
	if d.Ledger == nil {
		return NewLedger(d.Now)
	}
	return d.Ledger
}

// inTx runs fn in one transaction. Notifications recorded through the writer are
// dispatched only after commit.
func (d Deps) inTx(ctx context.Context, fn func(w *writer) error) error {
	var w *writer
	err := d.Store.WithinTx(ctx, func(tx repository.Store) error {
		w = &writer{Store: tx, ledger: d.ledger()}
		return fn(w)
	})
	if err != nil {
		return err
	}
	if d.Notifier != nil && len(w.notes) > 0 {
		d.Notifier.Dispatch(ctx, w.notes...)
	}
	return nil
}

// writer is a transaction-bound store plus the ledger side effects of one operation.
type writer struct {
	repository.Store
	ledger *Ledger
	notes  []domain.Notification
}

func (w *writer) notify(ctx context.Context, userID string, typ domain.NotificationType, relatedID, message string) error {
	return w.notifyWith(ctx, userID, typ, relatedID, message, nil)
}

func (w *writer) notifyWith(ctx context.Context, userID string, typ domain.NotificationType, relatedID, message string, attrs map[string]string) error {
	n, err := w.ledger.Notify(ctx, w.Store, userID, typ, message, relatedID, attrs)
	if err != nil {
		return err
	}
	w.notes = append(w.notes, *n)
	return nil
}

func (w *writer) activity(ctx context.Context, userID, action, details, relatedID string) error {
	return w.ledger.LogActivity(ctx, w.Store, userID, action, details, relatedID)
}

func (w *writer) pay(ctx context.Context, p *domain.Payment) error {
	return w.ledger.RecordPayment(ctx, w.Store, p)
}

func (w *writer) refund(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return w.ledger.Refund(ctx, w.Store, paymentID)
}

// money renders an amount for notification text.
func money(d decimal.Decimal) string {
	return "₹" + d.String()
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// requireRole loads userID and checks it holds one of roles.
func requireRole(ctx context.Context, users repository.UserRepository, userID string, roles ...domain.UserRole) (*domain.User, error) {
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if u.Role == r {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: requires role %v", domain.ErrForbidden, roles)
}

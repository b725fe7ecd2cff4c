// Package notify delivers persisted notifications out of band (email, push).
// Delivery is best-effort: failures are logged and never returned to callers.
package notify

import (
	"context"
	"strings"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
)

// Recipient is the contact data a channel needs to reach a user.
type Recipient struct {
	UserID    string
	Name      string
	Email     string
	PushToken string
}

type Channel interface {
	Name() string
	Deliver(ctx context.Context, to Recipient, n domain.Notification) error
}

// UserLookup resolves notification owners to recipients.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Notifier is what services hand committed notifications to.
type Notifier interface {
	Dispatch(ctx context.Context, notes ...domain.Notification)
}

type Dispatcher struct {
	users    UserLookup
	channels []Channel
}

func NewDispatcher(users UserLookup, channels ...Channel) *Dispatcher {
	return &Dispatcher{users: users, channels: channels}
}

func (d *Dispatcher) Dispatch(ctx context.Context, notes ...domain.Notification) {
	if len(d.channels) == 0 {
		return
	}
	recipients := make(map[string]*Recipient)
	for _, n := range notes {
		to, ok := recipients[n.UserID]
		if !ok {
			u, err := d.users.GetByID(ctx, n.UserID)
			if err != nil {
				logger.Warn("Notification recipient lookup failed", "userID", n.UserID, "error", err)
				recipients[n.UserID] = nil
				continue
			}
			to = &Recipient{UserID: u.ID, Name: u.Name, Email: u.Email, PushToken: u.PushToken}
			recipients[n.UserID] = to
		}
		if to == nil {
			continue
		}
		for _, ch := range d.channels {
			if err := ch.Deliver(ctx, *to, n); err != nil {
				logger.Warn("Notification delivery failed", "channel", ch.Name(), "userID", n.UserID, "type", n.Type, "error", err)
			}
		}
	}
}

// Discard drops every notification. Used when no delivery channel is configured.
type Discard struct{}

func (Discard) Dispatch(context.Context, ...domain.Notification) {}

// Subject renders a short title for a notification type, e.g. "Payment received".
func Subject(t domain.NotificationType) string {
	s := strings.ToLower(strings.ReplaceAll(string(t), "_", " "))
	s = strings.ReplaceAll(s, "kyc", "KYC")
	s = strings.ReplaceAll(s, "otp", "code")
	if s == "" {
		return "RentNest update"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

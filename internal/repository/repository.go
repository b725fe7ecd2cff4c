package repository

import (
	"context"

	"rentnest-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Lookups by id return an error wrapping domain.ErrNotFound when the row is missing.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, role domain.UserRole) ([]domain.User, error)
	AddOwnerCredit(ctx context.Context, userID string, amount decimal.Decimal) error
	CountByRole(ctx context.Context) (map[domain.UserRole]int, error)
}

type PropertyRepository interface {
	Create(ctx context.Context, p *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Update(ctx context.Context, p *domain.Property) error
	SetAvailability(ctx context.Context, id string, availability domain.Availability) error
	Search(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, int, error)
	CountByAvailability(ctx context.Context) (map[domain.Availability]int, error)
}

type ViewingRepository interface {
	Create(ctx context.Context, v *domain.Viewing) error
	GetByID(ctx context.Context, id string) (*domain.Viewing, error)
	Update(ctx context.Context, v *domain.Viewing) error
	ListByUser(ctx context.Context, userID string) ([]domain.Viewing, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.Application) error
	// CreateRentCycle inserts a RENT_CYCLE application unless one already exists for the
	// same (agreement, billing period). created is false when the insert was skipped.
	CreateRentCycle(ctx context.Context, a *domain.Application) (created bool, err error)
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	GetBySourceViewing(ctx context.Context, viewingID string) (*domain.Application, error)
	Update(ctx context.Context, a *domain.Application) error
	List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error)
	CountByStatus(ctx context.Context) (map[domain.ApplicationStatus]int, error)
}

type AgreementRepository interface {
	Create(ctx context.Context, a *domain.Agreement) error
	GetByID(ctx context.Context, id string) (*domain.Agreement, error)
	GetByApplication(ctx context.Context, applicationID string) (*domain.Agreement, error)
	Update(ctx context.Context, a *domain.Agreement) error
	ListByUser(ctx context.Context, userID string) ([]domain.Agreement, error)
	ListActive(ctx context.Context) ([]domain.Agreement, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	// MarkRefunded flips a Paid payment to Refunded. Any other status yields
	// domain.ErrInvalidTransition.
	MarkRefunded(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Payment, error)
	SumByType(ctx context.Context, paymentType domain.PaymentType) (decimal.Decimal, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, int, error)
	Exists(ctx context.Context, key domain.NotificationKey) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, a *domain.ActivityLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error)
}

type VerificationRepository interface {
	Create(ctx context.Context, v *domain.Verification) error
	GetByID(ctx context.Context, id string) (*domain.Verification, error)
	Update(ctx context.Context, v *domain.Verification) error
	ListByStatus(ctx context.Context, status domain.KYCStatus) ([]domain.Verification, error)
}

type BillRepository interface {
	Create(ctx context.Context, b *domain.Bill) error
	GetByID(ctx context.Context, id string) (*domain.Bill, error)
	Update(ctx context.Context, b *domain.Bill) error
	ListByUser(ctx context.Context, userID string) ([]domain.Bill, error)
}

type DisputeRepository interface {
	Create(ctx context.Context, d *domain.Dispute) error
	GetByID(ctx context.Context, id string) (*domain.Dispute, error)
	Update(ctx context.Context, d *domain.Dispute) error
	// List returns disputes the user raised or is named in; empty userID lists all.
	List(ctx context.Context, userID string) ([]domain.Dispute, error)
	CountOpen(ctx context.Context) (int, error)
}

// Store groups the repositories. WithinTx runs fn against a Store whose writes commit
// together or not at all.
type Store interface {
	Users() UserRepository
	Properties() PropertyRepository
	Viewings() ViewingRepository
	Applications() ApplicationRepository
	Agreements() AgreementRepository
	Payments() PaymentRepository
	Notifications() NotificationRepository
	Activities() ActivityRepository
	Verifications() VerificationRepository
	Bills() BillRepository
	Disputes() DisputeRepository

	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

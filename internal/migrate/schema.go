// Package migrate owns the relational schema. The postgres repositories read and
// write these tables with hand-written SQL; gorm is only used to create them.
package migrate

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)"`
	Name         string          `gorm:"not null"`
	Email        string          `gorm:"not null;uniqueIndex:idx_users_email"`
	Phone        string          `gorm:"not null;default:''"`
	PasswordHash string          `gorm:"not null"`
	Role         string          `gorm:"not null;index"`
	KYCStatus    string          `gorm:"column:kyc_status;not null;default:'Not Verified'"`
	OwnerCredit  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	PushToken    string          `gorm:"not null;default:''"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Property struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)"`
	OwnerID         string          `gorm:"type:varchar(36);not null;index"`
	Title           string          `gorm:"not null"`
	Description     string          `gorm:"not null;default:''"`
	Address         string          `gorm:"not null;default:''"`
	City            string          `gorm:"not null;index"`
	Bedrooms        int             `gorm:"not null;default:0"`
	Rent            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SecurityDeposit decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ViewingAdvance  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Availability    string          `gorm:"not null;default:'available'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Viewing struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)"`
	PropertyID       string          `gorm:"type:varchar(36);not null;index"`
	TenantID         string          `gorm:"type:varchar(36);not null;index"`
	OwnerID          string          `gorm:"type:varchar(36);not null;index"`
	AdvanceAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AdvancePaymentID *string         `gorm:"type:varchar(36)"`
	Status           string          `gorm:"not null"`
	ScheduledAt      time.Time       `gorm:"not null"`
	RequestedAt      time.Time       `gorm:"not null"`
	UpdatedAt        time.Time
	VerificationData string `gorm:"type:jsonb"`
}

// Application carries the (agreement, billing month) unique index that keeps the
// rent cycle from creating two rent applications for one month.
type Application struct {
	ID                    string          `gorm:"primaryKey;type:varchar(36)"`
	PropertyID            string          `gorm:"type:varchar(36);not null;index"`
	RenterID              string          `gorm:"type:varchar(36);not null;index"`
	OwnerID               string          `gorm:"type:varchar(36);not null;index"`
	Kind                  string          `gorm:"not null"`
	SourceViewingID       *string         `gorm:"type:varchar(36);uniqueIndex:idx_applications_source_viewing"`
	AgreementID           *string         `gorm:"type:varchar(36);uniqueIndex:idx_applications_agreement_period,priority:1"`
	BillingYear           *int            `gorm:"uniqueIndex:idx_applications_agreement_period,priority:2"`
	BillingMonth          *int            `gorm:"uniqueIndex:idx_applications_agreement_period,priority:3"`
	MoveInDate            *time.Time
	Status                string          `gorm:"not null;index"`
	Amount                decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	DueDate               *time.Time
	OfflineTransactionID  *string
	OfflineSubmittedAt    *time.Time
	OfflineAcknowledged   bool `gorm:"not null;default:false"`
	OfflineAcknowledgedAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Agreement struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)"`
	ApplicationID  string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_agreements_application"`
	PropertyID     string          `gorm:"type:varchar(36);not null;index"`
	TenantID       string          `gorm:"type:varchar(36);not null;index"`
	OwnerID        string          `gorm:"type:varchar(36);not null;index"`
	RentAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DepositAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	StartDate      time.Time       `gorm:"not null"`
	Terms          string          `gorm:"not null;default:''"`
	SignedByTenant bool            `gorm:"not null;default:false"`
	SignedByOwner  bool            `gorm:"not null;default:false"`
	TenantSignedAt *time.Time
	OwnerSignedAt  *time.Time
	CreatedAt      time.Time
}

type Payment struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)"`
	UserID           string          `gorm:"type:varchar(36);not null;index"`
	PropertyID       string          `gorm:"type:varchar(36);not null;default:''"`
	ApplicationID    *string         `gorm:"type:varchar(36);index"`
	ViewingID        *string         `gorm:"type:varchar(36)"`
	BillID           *string         `gorm:"type:varchar(36)"`
	RelatedPaymentID *string         `gorm:"type:varchar(36)"`
	Type             string          `gorm:"not null;index"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status           string          `gorm:"not null"`
	Reference        string          `gorm:"not null;default:''"`
	PaymentDate      time.Time       `gorm:"not null"`
}

type Notification struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	UserID     string `gorm:"type:varchar(36);not null;index:idx_notifications_key,priority:1"`
	Type       string `gorm:"not null;index:idx_notifications_key,priority:2"`
	Message    string `gorm:"not null"`
	RelatedID  string `gorm:"not null;default:'';index:idx_notifications_key,priority:3"`
	IsRead     bool   `gorm:"not null;default:false"`
	Attributes string `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

type ActivityLog struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);not null;index"`
	Action    string `gorm:"not null"`
	Details   string `gorm:"not null;default:''"`
	RelatedID string `gorm:"not null;default:''"`
	CreatedAt time.Time
}

type Verification struct {
	ID             string  `gorm:"primaryKey;type:varchar(36)"`
	UserID         string  `gorm:"type:varchar(36);not null;index"`
	DocumentType   string  `gorm:"not null"`
	DocumentNumber string  `gorm:"not null"`
	DocumentKey    string  `gorm:"not null;default:''"`
	Status         string  `gorm:"not null;index"`
	ReviewerID     *string `gorm:"type:varchar(36)"`
	ReviewNotes    string  `gorm:"not null;default:''"`
	SubmittedAt    time.Time
	ReviewedAt     *time.Time
}

type Bill struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)"`
	PropertyID  string          `gorm:"type:varchar(36);not null;index"`
	TenantID    string          `gorm:"type:varchar(36);not null;index"`
	OwnerID     string          `gorm:"type:varchar(36);not null;index"`
	Category    string          `gorm:"not null"`
	Description string          `gorm:"not null;default:''"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DueDate     time.Time       `gorm:"not null"`
	Status      string          `gorm:"not null"`
	PaymentID   *string         `gorm:"type:varchar(36)"`
	CreatedAt   time.Time
	PaidAt      *time.Time
}

type Dispute struct {
	ID            string  `gorm:"primaryKey;type:varchar(36)"`
	PropertyID    string  `gorm:"type:varchar(36);not null;index"`
	ApplicationID *string `gorm:"type:varchar(36)"`
	RaisedBy      string  `gorm:"type:varchar(36);not null;index"`
	AgainstUserID string  `gorm:"type:varchar(36);not null;index"`
	Reason        string  `gorm:"not null"`
	Status        string  `gorm:"not null;index"`
	Resolution    string  `gorm:"not null;default:''"`
	ResolvedBy    *string `gorm:"type:varchar(36)"`
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

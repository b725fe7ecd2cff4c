package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationStatusPending               ApplicationStatus = "PENDING"
	ApplicationStatusApproved              ApplicationStatus = "APPROVED"
	ApplicationStatusRejected              ApplicationStatus = "REJECTED"
	ApplicationStatusAgreementSent         ApplicationStatus = "AGREEMENT_SENT"
	ApplicationStatusDepositDue            ApplicationStatus = "DEPOSIT_DUE"
	ApplicationStatusMoveInReady           ApplicationStatus = "MOVE_IN_READY"
	ApplicationStatusCompleted             ApplicationStatus = "COMPLETED"
	ApplicationStatusRentDue               ApplicationStatus = "RENT_DUE"
	ApplicationStatusRentPaid              ApplicationStatus = "RENT_PAID"
	ApplicationStatusOfflinePaymentPending ApplicationStatus = "OFFLINE_PAYMENT_PENDING"
)

// RentCycleStatuses are the statuses that count as "this month's rent already exists".
var RentCycleStatuses = []ApplicationStatus{
	ApplicationStatusRentDue,
	ApplicationStatusRentPaid,
	ApplicationStatusOfflinePaymentPending,
}

// AgreementSignable reports whether the agreement tied to an application in this status
// may still collect signatures: AGREEMENT_SENT on the onboarding path, or a rent status
// once the platform fee opened the first period.
func (s ApplicationStatus) AgreementSignable() bool {
	switch s {
	case ApplicationStatusAgreementSent, ApplicationStatusRentDue, ApplicationStatusRentPaid, ApplicationStatusOfflinePaymentPending:
		return true
	}
	return false
}

type ApplicationKind string

const (
	ApplicationKindOnboarding ApplicationKind = "ONBOARDING"
	ApplicationKindRentCycle  ApplicationKind = "RENT_CYCLE"
)

// BillingPeriod identifies one calendar month of rent.
type BillingPeriod struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func PeriodOf(t time.Time) BillingPeriod {
	return BillingPeriod{Year: t.Year(), Month: int(t.Month())}
}

func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// After reports whether p is strictly later than o.
func (p BillingPeriod) After(o BillingPeriod) bool {
	if p.Year != o.Year {
		return p.Year > o.Year
	}
	return p.Month > o.Month
}

type OfflinePaymentDetails struct {
	TransactionID  string     `json:"transaction_id"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

type Application struct {
	ID              string                 `json:"id"`
	PropertyID      string                 `json:"property_id"`
	RenterID        string                 `json:"renter_id"`
	OwnerID         string                 `json:"owner_id"`
	Kind            ApplicationKind        `json:"kind"`
	SourceViewingID *string                `json:"source_viewing_id,omitempty"`
	AgreementID     *string                `json:"agreement_id,omitempty"`
	BillingPeriod   *BillingPeriod         `json:"billing_period,omitempty"`
	MoveInDate      *time.Time             `json:"move_in_date,omitempty"`
	Status          ApplicationStatus      `json:"status"`
	Amount          decimal.Decimal        `json:"amount"`
	DueDate         *time.Time             `json:"due_date,omitempty"`
	OfflinePayment  *OfflinePaymentDetails `json:"offline_payment,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func (a *Application) IsParticipant(userID string) bool {
	return a.RenterID == userID || a.OwnerID == userID
}

// ApplicationFilter selects applications for listing and existence checks.
type ApplicationFilter struct {
	UserID      string
	PropertyID  string
	RenterID    string
	AgreementID string
	Period      *BillingPeriod
	Statuses    []ApplicationStatus
	DueBefore   *time.Time
}

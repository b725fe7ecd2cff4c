package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ViewingStatus string

const (
	ViewingStatusRequested      ViewingStatus = "REQUESTED"
	ViewingStatusAccepted       ViewingStatus = "ACCEPTED"
	ViewingStatusDeclined       ViewingStatus = "DECLINED"
	ViewingStatusCompleted      ViewingStatus = "COMPLETED"
	ViewingStatusCancelled      ViewingStatus = "CANCELLED"
	ViewingStatusTenantRejected ViewingStatus = "TENANT_REJECTED"
)

// VerificationSnapshot is the tenant's background-check form as submitted with a
// viewing request. It is never edited after the viewing is created.
type VerificationSnapshot struct {
	FullName       string          `json:"full_name"`
	Occupation     string          `json:"occupation"`
	Employer       string          `json:"employer"`
	MonthlyIncome  decimal.Decimal `json:"monthly_income"`
	CurrentAddress string          `json:"current_address"`
	IDType         string          `json:"id_type"`
	IDNumber       string          `json:"id_number"`
	Occupants      int             `json:"occupants"`
	HasPets        bool            `json:"has_pets"`
	Notes          string          `json:"notes"`
}

type Viewing struct {
	ID               string               `json:"id"`
	PropertyID       string               `json:"property_id"`
	TenantID         string               `json:"tenant_id"`
	OwnerID          string               `json:"owner_id"`
	AdvanceAmount    decimal.Decimal      `json:"advance_amount"`
	AdvancePaymentID *string              `json:"advance_payment_id,omitempty"`
	Status           ViewingStatus        `json:"status"`
	ScheduledAt      time.Time            `json:"scheduled_at"`
	RequestedAt      time.Time            `json:"requested_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Verification     VerificationSnapshot `json:"verification"`
}

// Refundable reports whether leaving the viewing in status s returns the advance.
func (s ViewingStatus) Refundable() bool {
	switch s {
	case ViewingStatusDeclined, ViewingStatusCancelled, ViewingStatusTenantRejected:
		return true
	}
	return false
}

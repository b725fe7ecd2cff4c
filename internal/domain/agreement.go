package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Agreement struct {
	ID             string          `json:"id"`
	ApplicationID  string          `json:"application_id"`
	PropertyID     string          `json:"property_id"`
	TenantID       string          `json:"tenant_id"`
	OwnerID        string          `json:"owner_id"`
	RentAmount     decimal.Decimal `json:"rent_amount"`
	DepositAmount  decimal.Decimal `json:"deposit_amount"`
	StartDate      time.Time       `json:"start_date"`
	Terms          string          `json:"terms"`
	SignedByTenant bool            `json:"signed_by_tenant"`
	SignedByOwner  bool            `json:"signed_by_owner"`
	TenantSignedAt *time.Time      `json:"tenant_signed_at,omitempty"`
	OwnerSignedAt  *time.Time      `json:"owner_signed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Active reports whether both parties have signed.
func (a *Agreement) Active() bool {
	return a.SignedByTenant && a.SignedByOwner
}

func (a *Agreement) IsParticipant(userID string) bool {
	return a.TenantID == userID || a.OwnerID == userID
}

// AgreementTerms are the owner's final terms sent with FinalizeAgreement.
type AgreementTerms struct {
	RentAmount    decimal.Decimal
	DepositAmount decimal.Decimal
	StartDate     time.Time
	Text          string
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeViewingAdvance PaymentType = "VIEWING_ADVANCE"
	PaymentTypeRent           PaymentType = "RENT"
	PaymentTypeDeposit        PaymentType = "DEPOSIT"
	PaymentTypeRefund         PaymentType = "REFUND"
	PaymentTypeBill           PaymentType = "BILL"
	PaymentTypePlatformFee    PaymentType = "PLATFORM_FEE"
	PaymentTypeApplicationFee PaymentType = "APPLICATION_FEE"
)

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

type PaymentMethod string

const (
	PaymentMethodOnline  PaymentMethod = "online"
	PaymentMethodOffline PaymentMethod = "offline"
)

// DefaultServiceFeePercentage is withheld from rent on online payments.
var DefaultServiceFeePercentage = decimal.RequireFromString("2.5")

type Payment struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	PropertyID       string          `json:"property_id"`
	ApplicationID    *string         `json:"application_id,omitempty"`
	ViewingID        *string         `json:"viewing_id,omitempty"`
	BillID           *string         `json:"bill_id,omitempty"`
	RelatedPaymentID *string         `json:"related_payment_id,omitempty"`
	Type             PaymentType     `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Status           PaymentStatus   `json:"status"`
	Reference        string          `json:"reference,omitempty"`
	PaymentDate      time.Time       `json:"payment_date"`
}

// ServiceFee returns amount × percentage / 100 rounded to two decimals.
func ServiceFee(amount, percentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(percentage).Div(decimal.NewFromInt(100)).Round(2)
}

// CheckoutIntent is what the external checkout widget needs to collect a payment.
type CheckoutIntent struct {
	ApplicationID string          `json:"application_id"`
	Method        PaymentMethod   `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	PayerName     string          `json:"payer_name"`
	PayerEmail    string          `json:"payer_email"`
}

// PaymentSummary aggregates a user's ledger.
type PaymentSummary struct {
	TotalsByType map[PaymentType]decimal.Decimal `json:"totals_by_type"`
	Count        int                             `json:"count"`
	OwnerCredit  decimal.Decimal                 `json:"owner_credit"`
}

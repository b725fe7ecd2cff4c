package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillCategory string

const (
	BillCategoryElectricity BillCategory = "ELECTRICITY"
	BillCategoryWater       BillCategory = "WATER"
	BillCategoryMaintenance BillCategory = "MAINTENANCE"
	BillCategoryInternet    BillCategory = "INTERNET"
	BillCategoryOther       BillCategory = "OTHER"
)

type BillStatus string

const (
	BillStatusUnpaid BillStatus = "UNPAID"
	BillStatusPaid   BillStatus = "PAID"
)

type Bill struct {
	ID          string          `json:"id"`
	PropertyID  string          `json:"property_id"`
	TenantID    string          `json:"tenant_id"`
	OwnerID     string          `json:"owner_id"`
	Category    BillCategory    `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Status      BillStatus      `json:"status"`
	PaymentID   *string         `json:"payment_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

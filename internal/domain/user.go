package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserRole string

const (
	UserRoleRenter     UserRole = "RENTER"
	UserRoleOwner      UserRole = "OWNER"
	UserRoleSuperAdmin UserRole = "SUPER_ADMIN"
)

type KYCStatus string

const (
	KYCStatusNotVerified KYCStatus = "Not Verified"
	KYCStatusPending     KYCStatus = "Pending"
	KYCStatusVerified    KYCStatus = "Verified"
	KYCStatusRejected    KYCStatus = "Rejected"
)

type User struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	PasswordHash string          `json:"-"`
	Role         UserRole        `json:"role"`
	KYCStatus    KYCStatus       `json:"kyc_status"`
	OwnerCredit  decimal.Decimal `json:"owner_credit"`
	PushToken    string          `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == UserRoleSuperAdmin
}

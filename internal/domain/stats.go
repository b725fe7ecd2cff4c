package domain

import "github.com/shopspring/decimal"

// PlatformStats backs the super-admin dashboard.
type PlatformStats struct {
	UsersByRole              map[UserRole]int          `json:"users_by_role"`
	PropertiesByAvailability map[Availability]int      `json:"properties_by_availability"`
	ApplicationsByStatus     map[ApplicationStatus]int `json:"applications_by_status"`
	PlatformFeesCollected    decimal.Decimal           `json:"platform_fees_collected"`
	OpenDisputes             int                       `json:"open_disputes"`
}

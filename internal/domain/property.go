package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityRented    Availability = "rented"
)

type Property struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	Bedrooms        int             `json:"bedrooms"`
	Rent            decimal.Decimal `json:"rent"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	ViewingAdvance  decimal.Decimal `json:"viewing_advance"`
	Availability    Availability    `json:"availability"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PropertyFilter narrows a property search. Zero values mean "no filter".
type PropertyFilter struct {
	City          string
	MaxRent       decimal.Decimal
	MinBedrooms   int
	AvailableOnly bool
	OwnerID       string
	Page          int
	PageSize      int
}

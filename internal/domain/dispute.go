package domain

import "time"

type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "OPEN"
	DisputeStatusResolved DisputeStatus = "RESOLVED"
)

type Dispute struct {
	ID            string        `json:"id"`
	PropertyID    string        `json:"property_id"`
	ApplicationID *string       `json:"application_id,omitempty"`
	RaisedBy      string        `json:"raised_by"`
	AgainstUserID string        `json:"against_user_id"`
	Reason        string        `json:"reason"`
	Status        DisputeStatus `json:"status"`
	Resolution    string        `json:"resolution"`
	ResolvedBy    *string       `json:"resolved_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
}

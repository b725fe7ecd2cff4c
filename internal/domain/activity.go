package domain

import "time"

type ActivityLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	RelatedID string    `json:"related_id"`
	CreatedAt time.Time `json:"created_at"`
}

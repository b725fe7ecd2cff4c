package domain

import "time"

type Verification struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	DocumentType   string     `json:"document_type"`
	DocumentNumber string     `json:"document_number"`
	DocumentKey    string     `json:"document_key,omitempty"`
	Status         KYCStatus  `json:"status"`
	ReviewerID     *string    `json:"reviewer_id,omitempty"`
	ReviewNotes    string     `json:"review_notes"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
}

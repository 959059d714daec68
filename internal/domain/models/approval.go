package models

import (
	"time"
)

// Approval request states. Pending is the only non-terminal state;
// there is no re-review once approved or rejected.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ApprovalRequest is a pending account registration awaiting review.
// The password is stored already hashed; approval copies the fields
// into a real User row.
type ApprovalRequest struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Status       string     `json:"status" db:"status"`
	ReviewedBy   *string    `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewNotes  string     `json:"review_notes,omitempty" db:"review_notes"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

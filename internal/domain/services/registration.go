package services

import (
	"context"

	"dochub/internal/domain/models"
)

// RegistrationService runs the account registration approval workflow:
// Pending -> {Approved, Rejected}, terminal either way.
type RegistrationService interface {
	// Register files a pending approval request. Duplicate pending
	// requests and existing accounts are rejected up front.
	Register(ctx context.Context, req *RegisterRequest) (*models.ApprovalRequest, error)

	// ListRequests lists approval requests, optionally by status.
	ListRequests(ctx context.Context, caller Caller, status *string) ([]models.ApprovalRequest, error)

	// Review approves or rejects a pending request. Approval provisions
	// the user account and triggers a notification.
	Review(ctx context.Context, caller Caller, id string, req *ReviewRequest) (*models.ApprovalRequest, error)
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes,omitempty"`
}

// ApprovalNotifier delivers the review outcome to the applicant.
// Delivery is fire-and-forget; failures are logged, never surfaced.
type ApprovalNotifier interface {
	NotifyReviewed(email, displayName string, approved bool, notes string) error
}

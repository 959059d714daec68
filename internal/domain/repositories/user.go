package repositories

import (
	"context"

	"dochub/internal/domain/models"
)

// UserRepository defines data access operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// ApprovalRepository defines data access operations for registration
// approval requests.
type ApprovalRepository interface {
	Create(ctx context.Context, req *models.ApprovalRequest) error
	GetByID(ctx context.Context, id string) (*models.ApprovalRequest, error)

	// GetPendingByEmail returns the pending request for an email, or
	// domain.ErrNotFound when none exists.
	GetPendingByEmail(ctx context.Context, email string) (*models.ApprovalRequest, error)

	// List returns requests, optionally filtered by status.
	List(ctx context.Context, status *string) ([]models.ApprovalRequest, error)

	Update(ctx context.Context, req *models.ApprovalRequest) error
}

package repositories

import (
	"context"

	"dochub/internal/domain/models"
)

// VersionRepository defines data access operations for community
// versions (content partitions).
type VersionRepository interface {
	Create(ctx context.Context, version *models.CommunityVersion) error
	GetByID(ctx context.Context, id string) (*models.CommunityVersion, error)
	GetByName(ctx context.Context, name string) (*models.CommunityVersion, error)
	List(ctx context.Context) ([]models.CommunityVersion, error)
	Update(ctx context.Context, version *models.CommunityVersion) error
	Delete(ctx context.Context, id string) error

	// Latest returns the most recently created version, or
	// domain.ErrNotFound on a fresh install.
	Latest(ctx context.Context) (*models.CommunityVersion, error)

	Count(ctx context.Context) (int64, error)
}

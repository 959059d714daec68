package repositories

import (
	"context"
	"time"

	"dochub/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder regardless of trash state.
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	Update(ctx context.Context, folder *models.Folder) error

	// ListActive lists non-deleted folders within the query scope.
	ListActive(ctx context.Context, q ContentQuery) ([]models.Folder, error)

	// ListTrashed lists trashed folders within the query scope.
	ListTrashed(ctx context.Context, q ContentQuery) ([]models.Folder, error)

	// ListActiveChildren lists non-deleted folders whose parent is the
	// given folder.
	ListActiveChildren(ctx context.Context, parentID string) ([]models.Folder, error)

	// SoftDelete moves an active folder to the trash. Returns false
	// when the folder exists but is already trashed (a no-op).
	SoftDelete(ctx context.Context, id string, now time.Time) (bool, error)

	// Restore moves a trashed folder back to active. Returns
	// domain.ErrInvalidState when the folder is not currently trashed.
	Restore(ctx context.Context, id string) error

	// HardDelete permanently removes a folder row.
	HardDelete(ctx context.Context, id string) error

	// SoftDeleteChildren trashes every active child folder and returns
	// the number cascaded.
	SoftDeleteChildren(ctx context.Context, parentID string, now time.Time) (int64, error)

	// PurgeTrashed permanently removes trashed folders within scope.
	PurgeTrashed(ctx context.Context, vis Visibility, versionID *string) (int64, error)

	// RestoreTrashed recovers every trashed folder within scope.
	RestoreTrashed(ctx context.Context, vis Visibility, versionID *string) (int64, error)

	// CountActiveByVersion counts non-deleted folders referencing a
	// community version.
	CountActiveByVersion(ctx context.Context, versionID string) (int64, error)

	// ReassignVersion re-stamps the owner's folders from one version to
	// another and returns the number moved.
	ReassignVersion(ctx context.Context, ownerID, sourceID, targetID string) (int64, error)
}

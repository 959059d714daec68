package services

import (
	"context"

	"dochub/internal/domain/models"
)

// FolderService handles folder business logic, including the cascading
// trash transition.
type FolderService interface {
	CreateFolder(ctx context.Context, caller Caller, req *CreateFolderRequest) (*models.Folder, error)
	GetFolder(ctx context.Context, caller Caller, id string) (*models.Folder, error)
	UpdateFolder(ctx context.Context, caller Caller, id string, req *UpdateFolderRequest) (*models.Folder, error)

	// ListFolders lists active root folders, optionally scoped to one
	// version partition.
	ListFolders(ctx context.Context, caller Caller, versionID *string) ([]models.Folder, error)

	// DeleteFolder trashes a folder together with its active children
	// and notes, or hard-deletes when the schema predates the trash
	// migration.
	DeleteFolder(ctx context.Context, caller Caller, id string) (*TrashResult, error)

	// RecoverFolder moves a trashed folder back to active. Recovery is
	// per-item: previously cascaded children stay trashed.
	RecoverFolder(ctx context.Context, caller Caller, id string) (*models.Folder, error)

	// GetTrashFolders lists the caller's visible trashed folders.
	GetTrashFolders(ctx context.Context, caller Caller, versionID *string) ([]models.Folder, error)
}

type CreateFolderRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id,omitempty"`
	VersionID   *string `json:"version_id,omitempty"`
}

type UpdateFolderRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

package services

import (
	"context"

	"dochub/internal/domain/models"
)

// VersionService manages community versions, the named partitions that
// group folders and notes into content releases.
type VersionService interface {
	ListVersions(ctx context.Context, caller Caller) ([]models.CommunityVersion, error)
	CreateVersion(ctx context.Context, caller Caller, req *CreateVersionRequest) (*models.CommunityVersion, error)
	UpdateVersion(ctx context.Context, caller Caller, id string, req *UpdateVersionRequest) (*models.CommunityVersion, error)

	// DeleteVersion removes a version. It refuses to delete the last
	// remaining version or one still referenced by active content.
	DeleteVersion(ctx context.Context, caller Caller, id string) error

	// MigrateContent re-stamps all of the caller's folders and notes
	// from the source version to the target version atomically.
	MigrateContent(ctx context.Context, caller Caller, req *MigrateRequest) (*MigrateResult, error)
}

type CreateVersionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateVersionRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type MigrateRequest struct {
	SourceVersionID string `json:"source_version_id"`
	TargetVersionID string `json:"target_version_id"`
}

type MigrateResult struct {
	FoldersMoved int64 `json:"folders_moved"`
	NotesMoved   int64 `json:"notes_moved"`
}

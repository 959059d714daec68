package services

import (
	"context"

	"dochub/internal/domain/models"
)

// NoteService handles note business logic including the trash lifecycle.
type NoteService interface {
	CreateNote(ctx context.Context, caller Caller, req *CreateNoteRequest) (*models.Note, error)
	GetNote(ctx context.Context, caller Caller, id string) (*models.Note, error)
	UpdateNote(ctx context.Context, caller Caller, id string, req *UpdateNoteRequest) (*models.Note, error)

	// ListNotes lists active notes, optionally filtered to one folder
	// and one version partition.
	ListNotes(ctx context.Context, caller Caller, folderID, versionID *string) ([]models.Note, error)

	// SearchNotes lists active notes whose title or content contains
	// the term, within the caller's visibility.
	SearchNotes(ctx context.Context, caller Caller, term string, versionID *string) ([]models.Note, error)

	// MoveToTrash soft-deletes a note, or hard-deletes when the schema
	// predates the trash migration.
	MoveToTrash(ctx context.Context, caller Caller, id string) (*TrashResult, error)

	// RecoverNote moves a trashed note back to active.
	RecoverNote(ctx context.Context, caller Caller, id string) (*models.Note, error)

	// DeleteNote permanently removes a note (admin only).
	DeleteNote(ctx context.Context, caller Caller, id string) error

	// GetTrashNotes lists the caller's visible trashed notes.
	GetTrashNotes(ctx context.Context, caller Caller, versionID *string) ([]models.Note, error)

	// EmptyTrash permanently removes all visible trashed notes and
	// folders, optionally scoped to one version.
	EmptyTrash(ctx context.Context, caller Caller, versionID *string) (*EmptyTrashResult, error)

	// RecoverAll restores all visible trashed notes and folders,
	// optionally scoped to one version.
	RecoverAll(ctx context.Context, caller Caller, versionID *string) (*RecoverAllResult, error)

	// ListRevisions returns a note's append-only revision log.
	ListRevisions(ctx context.Context, caller Caller, noteID string) ([]models.NoteRevision, error)
}

type CreateNoteRequest struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	FolderID  *string `json:"folder_id,omitempty"`
	VersionID *string `json:"version_id,omitempty"`
}

type UpdateNoteRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	FolderID *string `json:"folder_id,omitempty"`
	// ClearFolder unfiles the note (folder_id sent as JSON null).
	ClearFolder bool `json:"-"`
}

// TrashResult reports what a trash transition actually did. Trashed is
// false when the schema lacked trash columns and the engine fell back to
// a permanent delete.
type TrashResult struct {
	Trashed         bool   `json:"trashed"`
	Message         string `json:"message"`
	CascadedFolders int64  `json:"cascaded_folders,omitempty"`
	CascadedNotes   int64  `json:"cascaded_notes,omitempty"`
}

// EmptyTrashResult reports per-category purge counts. Bulk operations
// are best-effort per category and must report partial counts.
type EmptyTrashResult struct {
	NotesPurged   int64 `json:"notes_purged"`
	FoldersPurged int64 `json:"folders_purged"`
}

// RecoverAllResult reports per-category recovery counts.
type RecoverAllResult struct {
	NotesRecovered   int64 `json:"notes_recovered"`
	FoldersRecovered int64 `json:"folders_recovered"`
}

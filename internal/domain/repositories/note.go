package repositories

import (
	"context"
	"time"

	"dochub/internal/domain/models"
)

// NoteRepository defines data access operations for notes and their
// revision log. Trash transitions are conditional updates on is_deleted
// so concurrent mutations surface as state errors instead of silent
// overwrites.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error

	// GetByID retrieves a note regardless of trash state.
	GetByID(ctx context.Context, id string) (*models.Note, error)

	Update(ctx context.Context, note *models.Note) error

	// ListActive lists non-deleted notes within the query scope.
	ListActive(ctx context.Context, q ContentQuery) ([]models.Note, error)

	// ListTrashed lists trashed notes within the query scope.
	ListTrashed(ctx context.Context, q ContentQuery) ([]models.Note, error)

	// Search lists active notes whose title or content contains term.
	Search(ctx context.Context, q ContentQuery, term string) ([]models.Note, error)

	// SoftDelete moves an active note to the trash. Returns false when
	// the note exists but is already trashed (a no-op, not an error).
	SoftDelete(ctx context.Context, id string, now time.Time) (bool, error)

	// Restore moves a trashed note back to active. Returns
	// domain.ErrInvalidState when the note is not currently trashed.
	Restore(ctx context.Context, id string) error

	// HardDelete permanently removes a note row.
	HardDelete(ctx context.Context, id string) error

	// SoftDeleteByFolder trashes every active note in a folder and
	// returns the number of notes cascaded.
	SoftDeleteByFolder(ctx context.Context, folderID string, now time.Time) (int64, error)

	// PurgeTrashed permanently removes trashed notes within scope and
	// returns the purge count.
	PurgeTrashed(ctx context.Context, vis Visibility, versionID *string) (int64, error)

	// RestoreTrashed recovers every trashed note within scope and
	// returns the recovery count.
	RestoreTrashed(ctx context.Context, vis Visibility, versionID *string) (int64, error)

	// CountActiveByVersion counts non-deleted notes referencing a
	// community version.
	CountActiveByVersion(ctx context.Context, versionID string) (int64, error)

	// ReassignVersion re-stamps the owner's notes from one version to
	// another and returns the number moved.
	ReassignVersion(ctx context.Context, ownerID, sourceID, targetID string) (int64, error)

	// AppendRevision records a revision-log entry.
	AppendRevision(ctx context.Context, rev *models.NoteRevision) error

	// ListRevisions returns a note's revision log, newest first.
	ListRevisions(ctx context.Context, noteID string) ([]models.NoteRevision, error)
}

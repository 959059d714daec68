package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dochub/internal/domain"
	"dochub/internal/domain/models"
	"dochub/internal/domain/repositories"
)

// PostgresNoteRepository implements the NoteRepository interface.
type PostgresNoteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	caps   repositories.Capabilities
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(config *RepositoryConfig) repositories.NoteRepository {
	return &PostgresNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
		caps:   config.Caps,
	}
}

// noteColumns returns the select list. On an unmigrated schema the trash
// columns are omitted so selects keep working.
func (r *PostgresNoteRepository) noteColumns() string {
	if r.caps.TrashColumns {
		return "id, title, content, folder_id, owner_id, version_id, revision, is_deleted, deleted_at, created_at, updated_at"
	}
	return "id, title, content, folder_id, owner_id, version_id, revision, created_at, updated_at"
}

func (r *PostgresNoteRepository) scanNote(row pgx.Row) (*models.Note, error) {
	var note models.Note
	var err error
	if r.caps.TrashColumns {
		err = row.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.FolderID,
			&note.OwnerID,
			&note.VersionID,
			&note.Revision,
			&note.IsDeleted,
			&note.DeletedAt,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
	} else {
		err = row.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.FolderID,
			&note.OwnerID,
			&note.VersionID,
			&note.Revision,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Create creates a new note.
func (r *PostgresNoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, content, folder_id, owner_id, version_id, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Notes)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		note.Title,
		note.Content,
		note.FolderID,
		note.OwnerID,
		note.VersionID,
		note.Revision,
		note.CreatedAt,
		note.UpdatedAt,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("note %q references a missing folder or version: %w", note.Title, domain.ErrValidation)
		}
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note by ID regardless of trash state.
func (r *PostgresNoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.noteColumns(), r.tables.Notes)

	note, err := r.scanNote(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return note, nil
}

// Update updates a note's mutable fields.
func (r *PostgresNoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content = $2, folder_id = $3, revision = $4, updated_at = $5
		WHERE id = $6
	`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		note.Title,
		note.Content,
		note.FolderID,
		note.Revision,
		note.UpdatedAt,
		note.ID,
	)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("note %s references a missing folder: %w", note.ID, domain.ErrValidation)
		}
		return fmt.Errorf("update note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}

	return nil
}

// buildScope appends visibility, version and folder filters to a WHERE
// clause, returning the clause fragment and the argument list.
func buildContentScope(q repositories.ContentQuery, args []interface{}, withFolder bool) (string, []interface{}) {
	clause := ""
	if !q.Visibility.All {
		args = append(args, q.Visibility.OwnerID)
		clause += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	if q.VersionID != nil {
		args = append(args, *q.VersionID)
		clause += fmt.Sprintf(" AND version_id = $%d", len(args))
	}
	if withFolder && q.FolderID != nil {
		args = append(args, *q.FolderID)
		clause += fmt.Sprintf(" AND folder_id = $%d", len(args))
	}
	return clause, args
}

func (r *PostgresNoteRepository) listNotes(ctx context.Context, query string, args ...interface{}) ([]models.Note, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		note, err := r.scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

// ListActive lists non-deleted notes within the query scope.
func (r *PostgresNoteRepository) ListActive(ctx context.Context, q repositories.ContentQuery) ([]models.Note, error) {
	var args []interface{}
	scope, args := buildContentScope(q, args, true)

	active := ""
	if r.caps.TrashColumns {
		active = " AND is_deleted = FALSE"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE TRUE%s%s
		ORDER BY updated_at DESC
	`, r.noteColumns(), r.tables.Notes, active, scope)

	return r.listNotes(ctx, query, args...)
}

// ListTrashed lists trashed notes within the query scope. On an
// unmigrated schema nothing can be trashed, so the result is empty.
func (r *PostgresNoteRepository) ListTrashed(ctx context.Context, q repositories.ContentQuery) ([]models.Note, error) {
	if !r.caps.TrashColumns {
		return nil, nil
	}

	var args []interface{}
	scope, args := buildContentScope(q, args, false)

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_deleted = TRUE%s
		ORDER BY deleted_at DESC
	`, r.noteColumns(), r.tables.Notes, scope)

	return r.listNotes(ctx, query, args...)
}

// Search lists active notes whose title or content contains term.
func (r *PostgresNoteRepository) Search(ctx context.Context, q repositories.ContentQuery, term string) ([]models.Note, error) {
	args := []interface{}{"%" + term + "%"}
	scope, args := buildContentScope(q, args, false)

	active := ""
	if r.caps.TrashColumns {
		active = " AND is_deleted = FALSE"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE (title ILIKE $1 OR content ILIKE $1)%s%s
		ORDER BY updated_at DESC
	`, r.noteColumns(), r.tables.Notes, active, scope)

	return r.listNotes(ctx, query, args...)
}

// SoftDelete moves an active note to the trash. The update is
// conditional on the prior state so a concurrent transition cannot be
// silently overwritten.
func (r *PostgresNoteRepository) SoftDelete(ctx context.Context, id string, now time.Time) (bool, error) {
	if !r.caps.TrashColumns {
		return false, &domain.SchemaUnavailableError{Operation: "move to trash"}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, now, id)
	if err != nil {
		return false, fmt.Errorf("trash note: %w", err)
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	// Nothing transitioned: already trashed (no-op) or missing.
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Restore moves a trashed note back to active.
func (r *PostgresNoteRepository) Restore(ctx context.Context, id string) error {
	if !r.caps.TrashColumns {
		return &domain.SchemaUnavailableError{Operation: "recover note"}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = FALSE, deleted_at = NULL, updated_at = $1
		WHERE id = $2 AND is_deleted = TRUE
	`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("recover note: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return &domain.InvalidStateError{Message: fmt.Sprintf("note %s is not in the trash", id)}
}

// HardDelete permanently removes a note row.
func (r *PostgresNoteRepository) HardDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SoftDeleteByFolder trashes every active note in a folder.
func (r *PostgresNoteRepository) SoftDeleteByFolder(ctx context.Context, folderID string, now time.Time) (int64, error) {
	if !r.caps.TrashColumns {
		return 0, &domain.SchemaUnavailableError{Operation: "cascade trash"}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
		WHERE folder_id = $2 AND is_deleted = FALSE
	`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, now, folderID)
	if err != nil {
		return 0, fmt.Errorf("cascade trash notes: %w", err)
	}

	return result.RowsAffected(), nil
}

// PurgeTrashed permanently removes trashed notes within scope.
func (r *PostgresNoteRepository) PurgeTrashed(ctx context.Context, vis repositories.Visibility, versionID *string) (int64, error) {
	if !r.caps.TrashColumns {
		return 0, nil
	}

	var args []interface{}
	scope, args := buildContentScope(repositories.ContentQuery{Visibility: vis, VersionID: versionID}, args, false)

	query := fmt.Sprintf(`DELETE FROM %s WHERE is_deleted = TRUE%s`, r.tables.Notes, scope)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("empty note trash: %w", err)
	}

	return result.RowsAffected(), nil
}

// RestoreTrashed recovers every trashed note within scope.
func (r *PostgresNoteRepository) RestoreTrashed(ctx context.Context, vis repositories.Visibility, versionID *string) (int64, error) {
	if !r.caps.TrashColumns {
		return 0, nil
	}

	var args []interface{}
	args = append(args, time.Now())
	scope, args := buildContentScope(repositories.ContentQuery{Visibility: vis, VersionID: versionID}, args, false)

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = FALSE, deleted_at = NULL, updated_at = $1
		WHERE is_deleted = TRUE%s
	`, r.tables.Notes, scope)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("recover trashed notes: %w", err)
	}

	return result.RowsAffected(), nil
}

// CountActiveByVersion counts non-deleted notes referencing a version.
func (r *PostgresNoteRepository) CountActiveByVersion(ctx context.Context, versionID string) (int64, error) {
	active := ""
	if r.caps.TrashColumns {
		active = " AND is_deleted = FALSE"
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE version_id = $1%s`, r.tables.Notes, active)

	var count int64
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, versionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes by version: %w", err)
	}

	return count, nil
}

// ReassignVersion re-stamps the owner's notes from one version to
// another.
func (r *PostgresNoteRepository) ReassignVersion(ctx context.Context, ownerID, sourceID, targetID string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET version_id = $1, updated_at = $2
		WHERE owner_id = $3 AND version_id = $4
	`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, targetID, time.Now(), ownerID, sourceID)
	if err != nil {
		return 0, fmt.Errorf("reassign note version: %w", err)
	}

	return result.RowsAffected(), nil
}

// AppendRevision records a revision-log entry.
func (r *PostgresNoteRepository) AppendRevision(ctx context.Context, rev *models.NoteRevision) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (note_id, title, content, revision, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.NoteRevisions)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		rev.NoteID,
		rev.Title,
		rev.Content,
		rev.Revision,
		rev.CreatedAt,
	).Scan(&rev.ID, &rev.CreatedAt)
	if err != nil {
		return fmt.Errorf("append note revision: %w", err)
	}

	return nil
}

// ListRevisions returns a note's revision log, newest first.
func (r *PostgresNoteRepository) ListRevisions(ctx context.Context, noteID string) ([]models.NoteRevision, error) {
	query := fmt.Sprintf(`
		SELECT id, note_id, title, content, revision, created_at
		FROM %s
		WHERE note_id = $1
		ORDER BY revision DESC
	`, r.tables.NoteRevisions)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("list note revisions: %w", err)
	}
	defer rows.Close()

	var revs []models.NoteRevision
	for rows.Next() {
		var rev models.NoteRevision
		err := rows.Scan(&rev.ID, &rev.NoteID, &rev.Title, &rev.Content, &rev.Revision, &rev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan note revision: %w", err)
		}
		revs = append(revs, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note revisions: %w", err)
	}

	return revs, nil
}

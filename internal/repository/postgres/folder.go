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

// PostgresFolderRepository implements the FolderRepository interface.
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	caps   repositories.Capabilities
}

// NewFolderRepository creates a new folder repository.
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		caps:   config.Caps,
	}
}

func (r *PostgresFolderRepository) folderColumns() string {
	if r.caps.TrashColumns {
		return "id, name, parent_id, description, owner_id, version_id, is_deleted, deleted_at, created_at, updated_at"
	}
	return "id, name, parent_id, description, owner_id, version_id, created_at, updated_at"
}

func (r *PostgresFolderRepository) scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	var err error
	if r.caps.TrashColumns {
		err = row.Scan(
			&folder.ID,
			&folder.Name,
			&folder.ParentID,
			&folder.Description,
			&folder.OwnerID,
			&folder.VersionID,
			&folder.IsDeleted,
			&folder.DeletedAt,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
	} else {
		err = row.Scan(
			&folder.ID,
			&folder.Name,
			&folder.ParentID,
			&folder.Description,
			&folder.OwnerID,
			&folder.VersionID,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
	}
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// Create creates a new folder.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, parent_id, description, owner_id, version_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.Description,
		folder.OwnerID,
		folder.VersionID,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder %q: %w", folder.Name, domain.ErrConflict)
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder %q references a missing parent or version: %w", folder.Name, domain.ErrValidation)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID regardless of trash state.
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.folderColumns(), r.tables.Folders)

	folder, err := r.scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// Update updates a folder's mutable fields.
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.Name,
		folder.Description,
		folder.UpdatedAt,
		folder.ID,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder %q: %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresFolderRepository) listFolders(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := r.scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// ListActive lists non-deleted folders within the query scope. With
// RootOnly set, only top-level folders (parent_id IS NULL) are returned.
func (r *PostgresFolderRepository) ListActive(ctx context.Context, q repositories.ContentQuery) ([]models.Folder, error) {
	var args []interface{}
	scope, args := buildContentScope(q, args, false)

	active := ""
	if r.caps.TrashColumns {
		active = " AND is_deleted = FALSE"
	}
	root := ""
	if q.RootOnly {
		root = " AND parent_id IS NULL"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE TRUE%s%s%s
		ORDER BY name ASC
	`, r.folderColumns(), r.tables.Folders, active, root, scope)

	return r.listFolders(ctx, query, args...)
}

// ListTrashed lists trashed folders within the query scope. Empty on an
// unmigrated schema, where nothing can be trashed.
func (r *PostgresFolderRepository) ListTrashed(ctx context.Context, q repositories.ContentQuery) ([]models.Folder, error) {
	if !r.caps.TrashColumns {
		return nil, nil
	}

	var args []interface{}
	scope, args := buildContentScope(q, args, false)

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_deleted = TRUE%s
		ORDER BY deleted_at DESC
	`, r.folderColumns(), r.tables.Folders, scope)

	return r.listFolders(ctx, query, args...)
}

// ListActiveChildren lists non-deleted folders under a parent.
func (r *PostgresFolderRepository) ListActiveChildren(ctx context.Context, parentID string) ([]models.Folder, error) {
	active := ""
	if r.caps.TrashColumns {
		active = " AND is_deleted = FALSE"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id = $1%s
		ORDER BY name ASC
	`, r.folderColumns(), r.tables.Folders, active)

	return r.listFolders(ctx, query, parentID)
}

// SoftDelete moves an active folder to the trash. Conditional on the
// prior state so concurrent transitions surface instead of racing.
func (r *PostgresFolderRepository) SoftDelete(ctx context.Context, id string, now time.Time) (bool, error) {
	if !r.caps.TrashColumns {
		return false, &domain.SchemaUnavailableError{Operation: "move to trash"}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, now, id)
	if err != nil {
		return false, fmt.Errorf("trash folder: %w", err)
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Restore moves a trashed folder back to active.
func (r *PostgresFolderRepository) Restore(ctx context.Context, id string) error {
	if !r.caps.TrashColumns {
		return &domain.SchemaUnavailableError{Operation: "recover folder"}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = FALSE, deleted_at = NULL, updated_at = $1
		WHERE id = $2 AND is_deleted = TRUE
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("recover folder: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return &domain.InvalidStateError{Message: fmt.Sprintf("folder %s is not in the trash", id)}
}

// HardDelete permanently removes a folder row.
func (r *PostgresFolderRepository) HardDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %s still has contents", id),
				ResourceType: "folder",
				ResourceID:   id,
			}
		}
		return fmt.Errorf("delete folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SoftDeleteChildren trashes every active child folder.
func (r *PostgresFolderRepository) SoftDeleteChildren(ctx context.Context, parentID string, now time.Time) (int64, error) {
	if !r.caps.TrashColumns {
		return 0, &domain.SchemaUnavailableError{Operation: "cascade trash"}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
		WHERE parent_id = $2 AND is_deleted = FALSE
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, now, parentID)
	if err != nil {
		return 0, fmt.Errorf("cascade trash folders: %w", err)
	}

	return result.RowsAffected(), nil
}

// PurgeTrashed permanently removes trashed folders within scope.
func (r *PostgresFolderRepository) PurgeTrashed(ctx context.Context, vis repositories.Visibility, versionID *string) (int64, error) {
	if !r.caps.TrashColumns {
		return 0, nil
	}

	var args []interface{}
	scope, args := buildContentScope(repositories.ContentQuery{Visibility: vis, VersionID: versionID}, args, false)

	query := fmt.Sprintf(`DELETE FROM %s WHERE is_deleted = TRUE%s`, r.tables.Folders, scope)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("empty folder trash: %w", err)
	}

	return result.RowsAffected(), nil
}

// RestoreTrashed recovers every trashed folder within scope.
func (r *PostgresFolderRepository) RestoreTrashed(ctx context.Context, vis repositories.Visibility, versionID *string) (int64, error) {
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
	`, r.tables.Folders, scope)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("recover trashed folders: %w", err)
	}

	return result.RowsAffected(), nil
}

// CountActiveByVersion counts non-deleted folders referencing a version.
func (r *PostgresFolderRepository) CountActiveByVersion(ctx context.Context, versionID string) (int64, error) {
	active := ""
	if r.caps.TrashColumns {
		active = " AND is_deleted = FALSE"
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE version_id = $1%s`, r.tables.Folders, active)

	var count int64
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, versionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count folders by version: %w", err)
	}

	return count, nil
}

// ReassignVersion re-stamps the owner's folders from one version to
// another.
func (r *PostgresFolderRepository) ReassignVersion(ctx context.Context, ownerID, sourceID, targetID string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET version_id = $1, updated_at = $2
		WHERE owner_id = $3 AND version_id = $4
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, targetID, time.Now(), ownerID, sourceID)
	if err != nil {
		return 0, fmt.Errorf("reassign folder version: %w", err)
	}

	return result.RowsAffected(), nil
}

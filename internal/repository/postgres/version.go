package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dochub/internal/domain"
	"dochub/internal/domain/models"
	"dochub/internal/domain/repositories"
)

// PostgresVersionRepository implements the VersionRepository interface.
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVersionRepository creates a new community version repository.
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const versionColumns = "id, name, description, created_by, created_at, updated_at"

func scanVersion(row pgx.Row) (*models.CommunityVersion, error) {
	var v models.CommunityVersion
	err := row.Scan(&v.ID, &v.Name, &v.Description, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create creates a new community version. Version names are unique
// display labels.
func (r *PostgresVersionRepository) Create(ctx context.Context, version *models.CommunityVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.CommunityVersions)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		version.Name,
		version.Description,
		version.CreatedBy,
		version.CreatedAt,
		version.UpdatedAt,
	).Scan(&version.ID, &version.CreatedAt, &version.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("version %q: %w", version.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create version: %w", err)
	}

	return nil
}

// GetByID retrieves a community version by ID.
func (r *PostgresVersionRepository) GetByID(ctx context.Context, id string) (*models.CommunityVersion, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, versionColumns, r.tables.CommunityVersions)

	version, err := scanVersion(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return version, nil
}

// GetByName retrieves a community version by its unique name.
func (r *PostgresVersionRepository) GetByName(ctx context.Context, name string) (*models.CommunityVersion, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1`, versionColumns, r.tables.CommunityVersions)

	version, err := scanVersion(GetExecutor(ctx, r.pool).QueryRow(ctx, query, name))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("version %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version by name: %w", err)
	}

	return version, nil
}

// List returns all community versions, newest first.
func (r *PostgresVersionRepository) List(ctx context.Context) ([]models.CommunityVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY created_at DESC
	`, versionColumns, r.tables.CommunityVersions)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.CommunityVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return versions, nil
}

// Update updates a community version's name and description.
func (r *PostgresVersionRepository) Update(ctx context.Context, version *models.CommunityVersion) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.CommunityVersions)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		version.Name,
		version.Description,
		version.UpdatedAt,
		version.ID,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("version %q: %w", version.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update version: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("version %s: %w", version.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a community version row. Reference guards live in the
// service layer, but a FK violation is still classified for safety.
func (r *PostgresVersionRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.CommunityVersions)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return &domain.InvalidStateError{
				Message: fmt.Sprintf("version %s is still referenced by content", id),
			}
		}
		return fmt.Errorf("delete version: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Latest returns the most recently created version.
func (r *PostgresVersionRepository) Latest(ctx context.Context) (*models.CommunityVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY created_at DESC
		LIMIT 1
	`, versionColumns, r.tables.CommunityVersions)

	version, err := scanVersion(GetExecutor(ctx, r.pool).QueryRow(ctx, query))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("no versions exist: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get latest version: %w", err)
	}

	return version, nil
}

// Count returns the number of community versions.
func (r *PostgresVersionRepository) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.CommunityVersions)

	var count int64
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}

	return count, nil
}

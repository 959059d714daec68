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

// PostgresApprovalRepository implements the ApprovalRepository interface.
type PostgresApprovalRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewApprovalRepository creates a new approval request repository.
func NewApprovalRepository(config *RepositoryConfig) repositories.ApprovalRepository {
	return &PostgresApprovalRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const approvalColumns = "id, email, display_name, password_hash, status, reviewed_by, review_notes, reviewed_at, created_at, updated_at"

func scanApproval(row pgx.Row) (*models.ApprovalRequest, error) {
	var a models.ApprovalRequest
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.DisplayName,
		&a.PasswordHash,
		&a.Status,
		&a.ReviewedBy,
		&a.ReviewNotes,
		&a.ReviewedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create files a new approval request.
func (r *PostgresApprovalRepository) Create(ctx context.Context, req *models.ApprovalRequest) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (email, display_name, password_hash, status, review_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.ApprovalRequests)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		req.Email,
		req.DisplayName,
		req.PasswordHash,
		req.Status,
		req.ReviewNotes,
		req.CreatedAt,
		req.UpdatedAt,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("request for %q: %w", req.Email, domain.ErrConflict)
		}
		return fmt.Errorf("create approval request: %w", err)
	}

	return nil
}

// GetByID retrieves an approval request by ID.
func (r *PostgresApprovalRepository) GetByID(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, approvalColumns, r.tables.ApprovalRequests)

	req, err := scanApproval(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("approval request %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get approval request: %w", err)
	}

	return req, nil
}

// GetPendingByEmail returns the pending request for an email.
func (r *PostgresApprovalRepository) GetPendingByEmail(ctx context.Context, email string) (*models.ApprovalRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE email = $1 AND status = $2
	`, approvalColumns, r.tables.ApprovalRequests)

	req, err := scanApproval(GetExecutor(ctx, r.pool).QueryRow(ctx, query, email, models.ApprovalPending))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("pending request for %q: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get pending request: %w", err)
	}

	return req, nil
}

// List returns approval requests, optionally filtered by status.
func (r *PostgresApprovalRepository) List(ctx context.Context, status *string) ([]models.ApprovalRequest, error) {
	var query string
	var args []interface{}

	if status == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			ORDER BY created_at DESC
		`, approvalColumns, r.tables.ApprovalRequests)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE status = $1
			ORDER BY created_at DESC
		`, approvalColumns, r.tables.ApprovalRequests)
		args = append(args, *status)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list approval requests: %w", err)
	}
	defer rows.Close()

	var reqs []models.ApprovalRequest
	for rows.Next() {
		req, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approval request: %w", err)
		}
		reqs = append(reqs, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approval requests: %w", err)
	}

	return reqs, nil
}

// Update records a review outcome.
func (r *PostgresApprovalRepository) Update(ctx context.Context, req *models.ApprovalRequest) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, reviewed_by = $2, review_notes = $3, reviewed_at = $4, updated_at = $5
		WHERE id = $6
	`, r.tables.ApprovalRequests)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		req.Status,
		req.ReviewedBy,
		req.ReviewNotes,
		req.ReviewedAt,
		req.UpdatedAt,
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("update approval request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("approval request %s: %w", req.ID, domain.ErrNotFound)
	}

	return nil
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"dochub/internal/domain/repositories"
)

// RepositoryConfig holds configuration shared by repository
// implementations.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Caps   repositories.Capabilities
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names.
type TableNames struct {
	Users             string
	Folders           string
	Notes             string
	NoteRevisions     string
	CommunityVersions string
	ApprovalRequests  string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:             fmt.Sprintf("%susers", prefix),
		Folders:           fmt.Sprintf("%sfolders", prefix),
		Notes:             fmt.Sprintf("%snotes", prefix),
		NoteRevisions:     fmt.Sprintf("%snote_versions", prefix),
		CommunityVersions: fmt.Sprintf("%scommunity_versions", prefix),
		ApprovalRequests:  fmt.Sprintf("%suser_approval_requests", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool and verifies
// connectivity. Table names are interpolated before statements are sent,
// so each environment prefix gets its own prepared statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in the context if present,
// otherwise the pool. Repositories automatically participate in an
// enclosing transaction this way.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

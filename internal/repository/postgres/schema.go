package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"dochub/internal/domain/repositories"
)

// DetectCapabilities probes the live schema for the trash columns with a
// cheap limited select, resolving the capability descriptor once at
// startup instead of re-probing on every call. An undefined-column error
// means the deployment predates the trash migration and every trash
// operation must take its degraded path; any other probe failure is
// logged and the columns are assumed present, since probe failures are
// expected during rolling migrations and must not be fatal.
func DetectCapabilities(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) repositories.Capabilities {
	caps := repositories.Capabilities{TrashColumns: true}

	query := fmt.Sprintf(`SELECT is_deleted, deleted_at FROM %s LIMIT 1`, tables.Notes)
	rows, err := pool.Query(ctx, query)
	if err == nil {
		rows.Close()
		err = rows.Err()
	}

	switch {
	case err == nil:
	case isPgUndefinedColumnError(err):
		caps.TrashColumns = false
		logger.Warn("trash columns absent, soft delete degraded to hard delete",
			"table", tables.Notes,
		)
	default:
		logger.Warn("schema capability probe failed, assuming trash columns present",
			"error", err,
		)
	}

	return caps
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func createFilesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexActiveList := pgx.Identifier{fmt.Sprintf("idx_%s_active_list", tableName)}.Sanitize()
	indexUser := pgx.Identifier{fmt.Sprintf("idx_%s_user_id", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			file_path TEXT NOT NULL UNIQUE,
			file_name TEXT NOT NULL,
			content_type TEXT NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			user_id TEXT NOT NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (created_at, file_path)
		WHERE (is_deleted = FALSE);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (user_id);
	`,
		quotedTable,
		indexActiveList, quotedTable,
		indexUser, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create files table: %w", err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/filekeep"
)

func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

type tableMigration struct {
	tableName string
	up        func(ctx context.Context, db *sql.DB) error
	down      func(ctx context.Context, db *sql.DB) error
}

func getTableMigrations(tables filekeep.Tables) []tableMigration {
	return []tableMigration{
		{
			tableName: tables.Files,
			up:        createFilesTable(tables.Files),
			down:      dropTable(tables.Files),
		},
	}
}

// Migrate creates every table in tables if it does not exist.
func Migrate(ctx context.Context, db *sql.DB, tables filekeep.Tables) error {
	for _, m := range getTableMigrations(tables) {
		if err := m.up(ctx, db); err != nil {
			return fmt.Errorf("migrate up %s: %w", m.tableName, err)
		}
	}
	return nil
}

// DropTables drops every table in tables, in reverse creation order.
func DropTables(ctx context.Context, db *sql.DB, tables filekeep.Tables) error {
	migrations := getTableMigrations(tables)
	for i := len(migrations) - 1; i >= 0; i-- {
		if err := migrations[i].down(ctx, db); err != nil {
			return fmt.Errorf("migrate down %s: %w", migrations[i].tableName, err)
		}
	}
	return nil
}

func createFilesTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)

		stmts := []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id TEXT NOT NULL PRIMARY KEY,
					file_path TEXT NOT NULL UNIQUE,
					file_name TEXT NOT NULL,
					content_type TEXT NOT NULL,
					size INTEGER NOT NULL DEFAULT 0,
					user_id TEXT NOT NULL,
					is_deleted INTEGER NOT NULL DEFAULT 0,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)
			`, quotedTable),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at, file_path) WHERE is_deleted = 0`,
				quoteIdentifier("idx_"+tableName+"_active_list"), quotedTable),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (user_id)`,
				quoteIdentifier("idx_"+tableName+"_user_id"), quotedTable),
		}

		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create files table: %w", err)
			}
		}
		return nil
	}
}

func dropTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tableName)))
		return err
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sagarc03/filekeep"
)

// DB is a SQLite metadata backend.
type DB struct {
	db     *sql.DB
	tables filekeep.Tables
}

// Connect opens a SQLite database. The pool is limited to a single connection
// so that writes are serialised and ":memory:" databases are shared.
func Connect(ctx context.Context, dsn string, tables filekeep.Tables) (*DB, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &DB{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate creates the files table and its indexes if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the files table matches the expected structure.
func (d *DB) Validate(ctx context.Context) error {
	if err := validateTableSchema(ctx, d.db, d.tables.Files, filesTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", d.tables.Files, err)
	}
	return nil
}

// GetRepo returns the FileRepo backed by this database.
func (d *DB) GetRepo() filekeep.FileRepo {
	return &Repo{db: d.db, tableName: d.tables.Files}
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

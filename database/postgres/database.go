package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/filekeep"
)

// DB is a PostgreSQL metadata backend.
type DB struct {
	pool   *pgxpool.Pool
	tables filekeep.Tables
}

// Connect opens a connection pool to PostgreSQL. It does not create or check
// any table; call Migrate and Validate for that.
func Connect(ctx context.Context, dsn string, tables filekeep.Tables) (*DB, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &DB{
		pool:   pool,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate creates the files table and its indexes if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	if err := createFilesTable(ctx, d.pool, d.tables.Files); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the files table matches the expected structure.
func (d *DB) Validate(ctx context.Context) error {
	if err := validateTableSchema(ctx, d.pool, d.tables.Files, filesTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", d.tables.Files, err)
	}
	return nil
}

// GetRepo returns the FileRepo backed by this database.
func (d *DB) GetRepo() filekeep.FileRepo {
	return &Repo{pool: d.pool, tableName: d.tables.Files}
}

// Close closes the connection pool.
func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

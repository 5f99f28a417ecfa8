package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filekeep"
	"github.com/sagarc03/filekeep/database/internal/repotest"
	"github.com/sagarc03/filekeep/database/postgres"
)

func TestConnect(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	t.Run("usable connection", func(t *testing.T) {
		db, err := postgres.Connect(ctx, getDSN(pool), filekeep.Tables{Files: "files"})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		assert.NoError(t, db.Ping(ctx))
	})

	t.Run("rejects invalid table name", func(t *testing.T) {
		_, err := postgres.Connect(ctx, getDSN(pool), filekeep.Tables{Files: "Files; DROP"})
		assert.Error(t, err)
	})
}

func TestDB_Migrate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	assert.NoError(t, db.Migrate(ctx), "migrate is idempotent")
	assert.NoError(t, db.Validate(ctx))
}

func TestDB_Validate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	dsn := getDSN(pool)
	ctx := context.Background()

	t.Run("table does not exist", func(t *testing.T) {
		db, err := postgres.Connect(ctx, dsn, filekeep.Tables{Files: "missing_" + getRandomString(t)})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("missing columns", func(t *testing.T) {
		tableName := "incomplete_" + getRandomString(t)
		_, err := pool.Exec(ctx, `CREATE TABLE `+tableName+` (id UUID PRIMARY KEY, file_path TEXT NOT NULL)`)
		require.NoError(t, err)
		defer func() { _ = dropTable(ctx, pool, tableName) }()

		db, err := postgres.Connect(ctx, dsn, filekeep.Tables{Files: tableName})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing columns")
		assert.Contains(t, err.Error(), "file_name")
	})

	t.Run("wrong column type", func(t *testing.T) {
		tableName := "wrongtype_" + getRandomString(t)
		_, err := pool.Exec(ctx, `
			CREATE TABLE `+tableName+` (
				id UUID PRIMARY KEY,
				file_path TEXT NOT NULL,
				file_name TEXT NOT NULL,
				content_type TEXT NOT NULL,
				size TEXT NOT NULL,
				user_id TEXT NOT NULL,
				is_deleted BOOLEAN NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)
		`)
		require.NoError(t, err)
		defer func() { _ = dropTable(ctx, pool, tableName) }()

		db, err := postgres.Connect(ctx, dsn, filekeep.Tables{Files: tableName})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "size: expected bigint, got text")
	})
}

func TestDB_Close(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, getDSN(pool), filekeep.Tables{Files: "close_test"})
	require.NoError(t, err)

	assert.NoError(t, db.Close())
	assert.Error(t, db.Ping(ctx), "ping should fail after close")
}

func TestRepo(t *testing.T) {
	repotest.Run(t, func(t *testing.T) filekeep.FileRepo {
		return setupTestDB(t).GetRepo()
	})
}

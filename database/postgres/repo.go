// Package postgres implements filekeep.FileRepo on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/filekeep"
	"github.com/sagarc03/filekeep/database/internal"
)

const recordColumns = `id, file_path, file_name, content_type, size, user_id, is_deleted, created_at, updated_at`

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables filekeep.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: tables.Files}, nil
}

func (r *Repo) table() string {
	return pgx.Identifier{r.tableName}.Sanitize()
}

func scanRecord(row pgx.Row) (filekeep.FileRecord, error) {
	var f filekeep.FileRecord
	err := row.Scan(
		&f.ID, &f.FilePath, &f.FileName, &f.ContentType, &f.Size,
		&f.UserID, &f.IsDeleted, &f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (filekeep.FileRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND is_deleted = FALSE
	`, recordColumns, r.table())

	f, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filekeep.FileRecord{}, fmt.Errorf("get: %w", filekeep.ErrNotFound)
		}
		return filekeep.FileRecord{}, fmt.Errorf("get: %w", err)
	}

	return f, nil
}

func (r *Repo) GetByPath(ctx context.Context, path string) (filekeep.FileRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE file_path = $1
	`, recordColumns, r.table())

	f, err := scanRecord(r.pool.QueryRow(ctx, query, path))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filekeep.FileRecord{}, fmt.Errorf("get by path: %w", filekeep.ErrNotFound)
		}
		return filekeep.FileRecord{}, fmt.Errorf("get by path: %w", err)
	}

	return f, nil
}

func (r *Repo) Create(ctx context.Context, nf filekeep.NewFile) (filekeep.FileRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (file_path, file_name, content_type, size, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, r.table(), recordColumns)

	f, err := scanRecord(r.pool.QueryRow(ctx, query,
		nf.FilePath, nf.FileName, nf.ContentType, nf.Size, nf.UserID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return filekeep.FileRecord{}, fmt.Errorf("create %s: %w", nf.FilePath, filekeep.ErrConflict)
		}
		return filekeep.FileRecord{}, fmt.Errorf("create: %w", err)
	}

	return f, nil
}

func (r *Repo) Update(ctx context.Context, path string, u filekeep.FileUpdate) (filekeep.FileRecord, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET file_name = $2,
			content_type = $3,
			updated_at = NOW()
		WHERE file_path = $1
		RETURNING %s
	`, r.table(), recordColumns)

	f, err := scanRecord(r.pool.QueryRow(ctx, query, path, u.FileName, u.ContentType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filekeep.FileRecord{}, fmt.Errorf("update: %w", filekeep.ErrNotFound)
		}
		return filekeep.FileRecord{}, fmt.Errorf("update: %w", err)
	}

	return f, nil
}

func (r *Repo) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, r.table())

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("mark deleted: %w", filekeep.ErrNotFound)
	}

	return nil
}

func (r *Repo) List(ctx context.Context, q filekeep.ListQuery) (filekeep.ListResult, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return filekeep.ListResult{}, fmt.Errorf("list: %w", err)
	}

	limit := internal.NormalizeLimit(q.Limit)
	escapedPrefix := internal.EscapeLikePattern(q.PathPrefix)

	var query string
	var args []any

	if q.Cursor == "" {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE is_deleted = FALSE AND file_path LIKE $1 || '%%' ESCAPE '\'
			ORDER BY created_at, file_path
			LIMIT $2
		`, recordColumns, r.table())
		args = []any{escapedPrefix, limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE is_deleted = FALSE AND file_path LIKE $1 || '%%' ESCAPE '\'
				AND (created_at, file_path) > ($2, $3)
			ORDER BY created_at, file_path
			LIMIT $4
		`, recordColumns, r.table())
		args = []any{escapedPrefix, cursor.CreatedAt, cursor.Path, limit + 1}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return filekeep.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]filekeep.FileRecord, 0, limit)
	for rows.Next() {
		f, err := scanRecord(rows)
		if err != nil {
			return filekeep.ListResult{}, fmt.Errorf("list: scan: %w", err)
		}
		items = append(items, f)
	}

	if err := rows.Err(); err != nil {
		return filekeep.ListResult{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		last := items[limit-1]
		nextCursor = internal.EncodeCursor(last.CreatedAt, last.FilePath)
		items = items[:limit]
	}

	return filekeep.ListResult{Items: items, NextCursor: nextCursor}, nil
}

var _ filekeep.FileRepo = (*Repo)(nil)

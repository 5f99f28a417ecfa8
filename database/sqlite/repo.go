// Package sqlite implements filekeep.FileRepo on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sagarc03/filekeep"
	"github.com/sagarc03/filekeep/database/internal"
)

// timeLayout is fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const recordColumns = `id, file_path, file_name, content_type, size, user_id, is_deleted, created_at, updated_at`

type Repo struct {
	db        *sql.DB
	tableName string
	now       func() time.Time
}

func NewRepo(db *sql.DB, tables filekeep.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: tables.Files}, nil
}

func (r *Repo) table() string {
	return quoteIdentifier(r.tableName)
}

func (r *Repo) timestamp() string {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	return formatTime(now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (filekeep.FileRecord, error) {
	var (
		f                    filekeep.FileRecord
		id                   string
		createdAt, updatedAt string
	)

	err := row.Scan(&id, &f.FilePath, &f.FileName, &f.ContentType, &f.Size,
		&f.UserID, &f.IsDeleted, &createdAt, &updatedAt)
	if err != nil {
		return filekeep.FileRecord{}, err
	}

	if f.ID, err = uuid.Parse(id); err != nil {
		return filekeep.FileRecord{}, fmt.Errorf("parse id: %w", err)
	}
	if f.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return filekeep.FileRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	if f.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return filekeep.FileRecord{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return f, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (filekeep.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE id = ? AND is_deleted = 0`, recordColumns, r.table())

	f, err := scanRecord(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filekeep.FileRecord{}, fmt.Errorf("get: %w", filekeep.ErrNotFound)
		}
		return filekeep.FileRecord{}, fmt.Errorf("get: %w", err)
	}

	return f, nil
}

func (r *Repo) GetByPath(ctx context.Context, path string) (filekeep.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE file_path = ?`, recordColumns, r.table())

	f, err := scanRecord(r.db.QueryRowContext(ctx, query, path))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filekeep.FileRecord{}, fmt.Errorf("get by path: %w", filekeep.ErrNotFound)
		}
		return filekeep.FileRecord{}, fmt.Errorf("get by path: %w", err)
	}

	return f, nil
}

func (r *Repo) Create(ctx context.Context, nf filekeep.NewFile) (filekeep.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, file_path, file_name, content_type, size, user_id, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
		RETURNING %s`, r.table(), recordColumns)

	now := r.timestamp()
	f, err := scanRecord(r.db.QueryRowContext(ctx, query,
		uuid.New().String(), nf.FilePath, nf.FileName, nf.ContentType, nf.Size, nf.UserID, now, now,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return filekeep.FileRecord{}, fmt.Errorf("create %s: %w", nf.FilePath, filekeep.ErrConflict)
		}
		return filekeep.FileRecord{}, fmt.Errorf("create: %w", err)
	}

	return f, nil
}

func (r *Repo) Update(ctx context.Context, path string, u filekeep.FileUpdate) (filekeep.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET file_name = ?, content_type = ?, updated_at = ?
		WHERE file_path = ?
		RETURNING %s`, r.table(), recordColumns)

	f, err := scanRecord(r.db.QueryRowContext(ctx, query, u.FileName, u.ContentType, r.timestamp(), path))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filekeep.FileRecord{}, fmt.Errorf("update: %w", filekeep.ErrNotFound)
		}
		return filekeep.FileRecord{}, fmt.Errorf("update: %w", err)
	}

	return f, nil
}

func (r *Repo) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`, r.table())

	result, err := r.db.ExecContext(ctx, query, r.timestamp(), id.String())
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark deleted: rows affected: %w", err)
	}
	if rows == 0 {
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
		query = fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`SELECT %s FROM %s
			WHERE is_deleted = 0 AND file_path LIKE ? || '%%' ESCAPE '\'
			ORDER BY created_at, file_path
			LIMIT ?`, recordColumns, r.table())
		args = []any{escapedPrefix, limit + 1}
	} else {
		query = fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`SELECT %s FROM %s
			WHERE is_deleted = 0 AND file_path LIKE ? || '%%' ESCAPE '\'
				AND (created_at > ? OR (created_at = ? AND file_path > ?))
			ORDER BY created_at, file_path
			LIMIT ?`, recordColumns, r.table())
		createdAt := formatTime(cursor.CreatedAt)
		args = []any{escapedPrefix, createdAt, createdAt, cursor.Path, limit + 1}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return filekeep.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

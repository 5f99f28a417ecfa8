// Package internal holds helpers shared by the metadata backends.
package internal

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sagarc03/filekeep"
)

// DefaultListLimit applies when a list query does not set a limit.
const DefaultListLimit = 100

// MaxListLimit caps the page size of a list query.
const MaxListLimit = 1000

// Cursor is the position after which the next page starts.
type Cursor struct {
	CreatedAt time.Time
	Path      string
}

// EncodeCursor encodes the last row of a page into an opaque token.
func EncodeCursor(createdAt time.Time, path string) string {
	data := createdAt.UTC().Format(time.RFC3339Nano) + "|" + path
	return base64.URLEncoding.EncodeToString([]byte(data))
}

// DecodeCursor reverses EncodeCursor. An empty token decodes to the zero
// Cursor. Malformed tokens wrap filekeep.ErrInvalidInput.
func DecodeCursor(cursor string) (Cursor, error) {
	if cursor == "" {
		return Cursor{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w: invalid encoding: %w", filekeep.ErrInvalidInput, err)
	}

	stamp, path, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return Cursor{}, fmt.Errorf("decode cursor: %w: invalid format", filekeep.ErrInvalidInput)
	}
	if path == "" {
		return Cursor{}, fmt.Errorf("decode cursor: %w: empty path", filekeep.ErrInvalidInput)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w: invalid timestamp: %w", filekeep.ErrInvalidInput, err)
	}

	return Cursor{CreatedAt: createdAt, Path: path}, nil
}

// EscapeLikePattern escapes %, _ and \ so a path prefix matches literally
// in a LIKE ... ESCAPE '\' clause.
func EscapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

// NormalizeLimit clamps a requested page size into [1, MaxListLimit].
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// Package filesystem provides the local disk storage backend. Objects live
// under a root directory whose top-level directories are the buckets. Writes
// are atomic using temp files.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sagarc03/filekeep"
)

const tmpPrefix = ".t"

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewStore creates a Store over root. The root sandboxes every operation and
// prevents path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// Open opens an object for reading. Returns filekeep.ErrNotFound if the
// object does not exist or is a directory.
func (s *Store) Open(ctx context.Context, path string) (io.ReadSeekCloser, filekeep.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, filekeep.ObjectInfo{}, err
	}

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, filekeep.ObjectInfo{}, fmt.Errorf("open %s: %w", path, filekeep.ErrNotFound)
		}
		return nil, filekeep.ObjectInfo{}, fmt.Errorf("open %s: %w: %w", path, filekeep.ErrStorage, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, filekeep.ObjectInfo{}, fmt.Errorf("stat %s: %w: %w", path, filekeep.ErrStorage, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, filekeep.ObjectInfo{}, fmt.Errorf("open %s: %w", path, filekeep.ErrNotFound)
	}

	return f, filekeep.ObjectInfo{
		Path:        path,
		Size:        info.Size(),
		ContentType: detectContentType(path),
		ModTime:     info.ModTime(),
	}, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically stores content at path, creating intermediate directories.
// With overwrite false an existing object is left alone and
// filekeep.ErrConflict is returned. The returned ETag is the SHA-256 of the
// content.
func (s *Store) Write(ctx context.Context, path string, content io.Reader, overwrite bool) (filekeep.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return filekeep.ObjectInfo{}, err
	}

	tmpFile := tmpFileName()
	t, err := s.root.Create(tmpFile)
	if err != nil {
		return filekeep.ObjectInfo{}, fmt.Errorf("could not open temp file: %w: %w", filekeep.ErrStorage, err)
	}

	committed := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !committed {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(h, t), &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return filekeep.ObjectInfo{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return filekeep.ObjectInfo{}, fmt.Errorf("could not sync written file: %w: %w", filekeep.ErrStorage, err)
	}

	if destDir := filepath.Dir(path); destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return filekeep.ObjectInfo{}, fmt.Errorf("could not create intermediate directories: %w: %w", filekeep.ErrStorage, err)
		}
	}

	if overwrite {
		if err := s.root.Rename(tmpFile, path); err != nil {
			return filekeep.ObjectInfo{}, fmt.Errorf("failed to rename file: %w: %w", filekeep.ErrStorage, err)
		}
		committed = true
	} else {
		// Link fails if path exists, which makes create-only atomic.
		if err := s.root.Link(tmpFile, path); err != nil {
			if errors.Is(err, os.ErrExist) {
				return filekeep.ObjectInfo{}, fmt.Errorf("write %s: %w: object already exists", path, filekeep.ErrConflict)
			}
			return filekeep.ObjectInfo{}, fmt.Errorf("failed to link file: %w: %w", filekeep.ErrStorage, err)
		}
	}

	info, err := s.root.Stat(path)
	if err != nil {
		return filekeep.ObjectInfo{}, fmt.Errorf("stat %s: %w: %w", path, filekeep.ErrStorage, err)
	}

	return filekeep.ObjectInfo{
		Path:        path,
		Size:        size,
		ETag:        hex.EncodeToString(h.Sum(nil)),
		ContentType: detectContentType(path),
		ModTime:     info.ModTime(),
	}, nil
}

// Delete removes an object. Returns filekeep.ErrNotFound if it does not exist.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", path, filekeep.ErrNotFound)
		}
		return fmt.Errorf("could not delete file: %w: %w", filekeep.ErrStorage, err)
	}
	return nil
}

// EnsureBucket creates the bucket directory if it does not exist.
func (s *Store) EnsureBucket(name string) error {
	if !isValidBucketName(name) {
		return fmt.Errorf("ensure bucket: %w: invalid bucket name %q", filekeep.ErrInvalidInput, name)
	}
	if err := s.root.MkdirAll(name, 0o755); err != nil {
		return fmt.Errorf("ensure bucket %s: %w: %w", name, filekeep.ErrStorage, err)
	}
	return nil
}

// Buckets lists the top-level directories of the root. Hidden entries are
// skipped.
func (s *Store) Buckets(ctx context.Context) ([]filekeep.BucketInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w: %w", filekeep.ErrStorage, err)
	}

	buckets := make([]filekeep.BucketInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("list buckets: %w: %w", filekeep.ErrStorage, err)
		}

		buckets = append(buckets, filekeep.BucketInfo{
			ID:        entry.Name(),
			Name:      entry.Name(),
			Public:    true,
			CreatedAt: info.ModTime().UTC(),
			UpdatedAt: info.ModTime().UTC(),
		})
	}

	return buckets, nil
}

func isValidBucketName(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".") && !strings.ContainsAny(name, `/\`) && filekeep.IsValidPath(name)
}

func detectContentType(path string) string {
	if contentType := mime.TypeByExtension(filepath.Ext(path)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}

package filekeep

import (
	"context"

	"github.com/google/uuid"
)

// FileRepo defines the interface for file metadata persistence.
//
// Lookups report a missing row as ErrNotFound. Every other error is a store
// failure (connectivity, constraint violation, decoding).
type FileRepo interface {
	// Get retrieves an active (not soft-deleted) record by its ID.
	//
	// Returns:
	//   - FileRecord: The record if found
	//   - error: ErrNotFound if no active record has this ID, or other database errors
	Get(ctx context.Context, id uuid.UUID) (FileRecord, error)

	// GetByPath retrieves a record by its file path regardless of its deleted flag.
	//
	// Returns:
	//   - FileRecord: The record if found
	//   - error: ErrNotFound if the path is unknown, or other database errors
	GetByPath(ctx context.Context, path string) (FileRecord, error)

	// Create inserts a new record with a generated ID and fresh timestamps.
	//
	// Returns:
	//   - FileRecord: The inserted record
	//   - error: ErrConflict if a record with the same path already exists, or other database errors
	Create(ctx context.Context, f NewFile) (FileRecord, error)

	// Update overwrites the file name and content type of the record stored
	// under path and refreshes its updated timestamp. ID, size, creation time
	// and the deleted flag are left alone.
	//
	// Returns:
	//   - FileRecord: The record after the update
	//   - error: ErrNotFound if the path is unknown, or other database errors
	Update(ctx context.Context, path string, u FileUpdate) (FileRecord, error)

	// MarkDeleted flags an active record as deleted and refreshes its updated timestamp.
	//
	// Returns:
	//   - error: ErrNotFound if no active record has this ID, or other database errors
	MarkDeleted(ctx context.Context, id uuid.UUID) error

	// List retrieves a page of active records ordered by creation time and path.
	//
	// Returns:
	//   - ListResult: Matching records and the cursor for the next page
	//   - error: Any database error
	List(ctx context.Context, q ListQuery) (ListResult, error)
}

// ObjectStorage defines the capabilities needed from the object storage provider.
// Implementations wrap provider failures with ErrStorage.
type ObjectStorage interface {
	// ListBuckets returns the buckets visible to the configured credential.
	ListBuckets(ctx context.Context) ([]BucketInfo, error)

	// CreateSignedUploadURL returns a time-limited URL granting write access to
	// a single object path without the caller's own credentials.
	CreateSignedUploadURL(ctx context.Context, path string, opts SignedUploadOptions) (SignedUpload, error)

	// PublicURL computes the public URL of an object. It never fails and does
	// not check that the object exists.
	PublicURL(path string) string

	// Remove deletes the given objects. Objects that do not exist are treated
	// as already removed.
	Remove(ctx context.Context, paths []string) error
}

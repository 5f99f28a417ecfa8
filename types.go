package filekeep

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// DefaultOwner is recorded as the owner of every new file. Ownership is not
// modelled beyond this placeholder.
const DefaultOwner = "system"

// FileRecord is a row of file metadata.
type FileRecord struct {
	ID          uuid.UUID `json:"id"`
	FilePath    string    `json:"filePath"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UserID      string    `json:"userId"`
	IsDeleted   bool      `json:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View projects the record onto the fields returned by GetFile.
func (r FileRecord) View() FileView {
	return FileView{
		ID:          r.ID,
		FileName:    r.FileName,
		FilePath:    r.FilePath,
		ContentType: r.ContentType,
		Size:        r.Size,
		CreatedAt:   r.CreatedAt,
	}
}

type FileView struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

type GetFileResult struct {
	File        FileView `json:"file"`
	DownloadURL string   `json:"downloadUrl"`
}

// NewFile holds the values for inserting a record.
type NewFile struct {
	FilePath    string
	FileName    string
	ContentType string
	Size        int64
	UserID      string
}

// FileUpdate holds the mutable fields overwritten by an upsert.
type FileUpdate struct {
	FileName    string
	ContentType string
}

type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	FilePath  string `json:"filePath"`
}

type BucketInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SignedUploadOptions struct {
	// Upsert allows a retried upload to overwrite an existing object.
	Upsert bool
}

type SignedUpload struct {
	SignedURL string
	Path      string
}

// ObjectInfo describes a stored object of the local backend.
type ObjectInfo struct {
	Path        string
	Size        int64
	ETag        string
	ContentType string
	ModTime     time.Time
}

type ListQuery struct {
	PathPrefix string
	Limit      int
	Cursor     string
}

type ListResult struct {
	Items      []FileRecord `json:"items"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// Tables holds configurable table names for metadata storage.
// This allows multi-tenant deployments to use different table names.
type Tables struct {
	Files string `mapstructure:"files"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Files == "" {
		return errors.New("validate tables: files table name cannot be empty")
	}

	if !IsValidTableName(t.Files) {
		return fmt.Errorf("validate tables: invalid files table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Files)
	}

	return nil
}

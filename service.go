package filekeep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultUploadPrefix is the directory new uploads are placed under.
const DefaultUploadPrefix = "uploads"

// FileService coordinates the metadata repo and the object storage provider.
type FileService struct {
	repo         FileRepo
	storage      ObjectStorage
	uploadPrefix string
	owner        string
	now          func() time.Time
}

// ServiceConfig holds configuration options for FileService.
type ServiceConfig struct {
	UploadPrefix string           // Directory for generated upload paths (default: uploads)
	Owner        string           // Owner recorded on new files (default: system)
	Clock        func() time.Time // Time source for upload paths (default: time.Now)
}

// NewFileService creates a FileService; repo and storage are required.
func NewFileService(repo FileRepo, storage ObjectStorage, cfg ServiceConfig) (*FileService, error) {
	if repo == nil {
		return nil, errors.New("new file service: repo is required")
	}
	if storage == nil {
		return nil, errors.New("new file service: storage is required")
	}

	s := &FileService{
		repo:         repo,
		storage:      storage,
		uploadPrefix: cfg.UploadPrefix,
		owner:        cfg.Owner,
		now:          cfg.Clock,
	}
	if s.uploadPrefix == "" {
		s.uploadPrefix = DefaultUploadPrefix
	}
	if s.owner == "" {
		s.owner = DefaultOwner
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// ListBuckets returns the buckets reported by the storage provider verbatim.
func (s *FileService) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	buckets, err := s.storage.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w: %w", ErrInternal, err)
	}
	return buckets, nil
}

// GetPresignedUploadURL builds a fresh storage path for fileName and asks the
// provider for a signed upload URL to it.
//
// The path is uploads/{epochMillis}_{fileName}. Uniqueness relies only on the
// clock and the raw file name: two calls for the same name within the same
// millisecond produce the same path. Uploads are signed with upsert enabled, so
// a retried upload overwrites.
//
// fileType is accepted for API compatibility but is not forwarded to the
// provider; clients set the content type when they upload.
func (s *FileService) GetPresignedUploadURL(ctx context.Context, fileName, fileType string) (PresignedUpload, error) {
	if fileName == "" {
		return PresignedUpload{}, fmt.Errorf("get presigned upload url: %w: file name cannot be empty", ErrInvalidInput)
	}

	filePath := UploadPath(s.uploadPrefix, s.now(), fileName)

	signed, err := s.storage.CreateSignedUploadURL(ctx, filePath, SignedUploadOptions{Upsert: true})
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("get presigned upload url: %w: %w", ErrInternal, err)
	}
	if signed.SignedURL == "" {
		return PresignedUpload{}, fmt.Errorf("get presigned upload url: %w: could not generate upload URL", ErrInternal)
	}

	return PresignedUpload{UploadURL: signed.SignedURL, FilePath: filePath}, nil
}

// SaveFileMetadata records metadata for an uploaded object, keyed by its path.
//
// If a record already exists for filePath (deleted or not) its name and content
// type are overwritten and its ID, size, creation time and deleted flag are
// kept. Otherwise a new record is inserted with size 0. A concurrent insert for
// the same path surfaces as ErrConflict from the repo and is resolved by
// updating the winning row.
func (s *FileService) SaveFileMetadata(ctx context.Context, filePath, fileName, mimeType string) (FileRecord, error) {
	if filePath == "" || fileName == "" || mimeType == "" {
		return FileRecord{}, fmt.Errorf("save file metadata: %w: file path, file name and mime type are required", ErrInvalidInput)
	}

	update := FileUpdate{FileName: fileName, ContentType: mimeType}

	_, err := s.repo.GetByPath(ctx, filePath)
	switch {
	case err == nil:
		return s.updateMetadata(ctx, filePath, update)
	case !errors.Is(err, ErrNotFound):
		return FileRecord{}, fmt.Errorf("save file metadata: %w: %w", ErrInternal, err)
	}

	record, err := s.repo.Create(ctx, NewFile{
		FilePath:    filePath,
		FileName:    fileName,
		ContentType: mimeType,
		Size:        0,
		UserID:      s.owner,
	})
	if errors.Is(err, ErrConflict) {
		return s.updateMetadata(ctx, filePath, update)
	}
	if err != nil {
		return FileRecord{}, fmt.Errorf("save file metadata: %w: %w", ErrInternal, err)
	}

	return record, nil
}

func (s *FileService) updateMetadata(ctx context.Context, filePath string, u FileUpdate) (FileRecord, error) {
	record, err := s.repo.Update(ctx, filePath, u)
	if err != nil {
		return FileRecord{}, fmt.Errorf("save file metadata: %w: %w", ErrInternal, err)
	}
	return record, nil
}

// GetFile returns an active record together with its public download URL.
// The URL is computed without checking that the object still exists.
func (s *FileService) GetFile(ctx context.Context, id uuid.UUID) (GetFileResult, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return GetFileResult{}, fmt.Errorf("get file %s: %w", id, ErrNotFound)
		}
		return GetFileResult{}, fmt.Errorf("get file %s: %w: %w", id, ErrInternal, err)
	}

	return GetFileResult{
		File:        record.View(),
		DownloadURL: s.storage.PublicURL(record.FilePath),
	}, nil
}

// DeleteFile removes the backing object and then soft-deletes the record.
//
// If the object cannot be removed the record is left untouched. If the record
// cannot be flagged after the object was removed, including when a concurrent
// delete flagged it first, the error is ErrInternal and nothing is rolled back.
func (s *FileService) DeleteFile(ctx context.Context, id uuid.UUID) error {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete file %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete file %s: %w: %w", id, ErrInternal, err)
	}

	if err := s.storage.Remove(ctx, []string{record.FilePath}); err != nil {
		return fmt.Errorf("delete file %s: %w: failed to delete file from storage: %w", id, ErrInternal, err)
	}

	if err := s.repo.MarkDeleted(ctx, id); err != nil {
		return fmt.Errorf("delete file %s: %w: %w", id, ErrInternal, err)
	}

	return nil
}

// ListFiles returns a page of active records.
func (s *FileService) ListFiles(ctx context.Context, q ListQuery) (ListResult, error) {
	result, err := s.repo.List(ctx, q)
	if err != nil {
		return ListResult{}, fmt.Errorf("list files: %w: %w", ErrInternal, err)
	}
	return result, nil
}

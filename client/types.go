package client

import (
	"github.com/sagarc03/filekeep"
)

// UploadOptions configures an upload.
type UploadOptions struct {
	LocalPath string
	// FileName is recorded as the file's name. Defaults to the base name of
	// LocalPath.
	FileName string
	// ContentType defaults to a guess from the file extension.
	ContentType string
}

// UploadResult is the outcome of uploading one file.
type UploadResult struct {
	LocalPath string              `json:"localPath"`
	Record    filekeep.FileRecord `json:"record"`
}

// DownloadResult describes a downloaded file.
type DownloadResult struct {
	File      filekeep.FileView `json:"file"`
	LocalPath string            `json:"localPath"`
	Size      int64             `json:"size"`
}

// DeleteResult is the outcome of deleting one file.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"`
}

// ListOptions configures a list operation.
type ListOptions struct {
	Prefix string
	Limit  int
	Cursor string
	All    bool // follow cursors until the last page
}

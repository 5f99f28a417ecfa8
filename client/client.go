package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/filekeep"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client talks to a filekeep server.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	cfg = cfg.WithDefaults()

	c := &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Buckets lists the storage buckets.
func (c *Client) Buckets(ctx context.Context) ([]filekeep.BucketInfo, error) {
	var buckets []filekeep.BucketInfo
	if err := c.doJSON(ctx, http.MethodGet, "/file/buckets", nil, http.StatusOK, &buckets); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return buckets, nil
}

// PresignUpload asks the server for an upload URL for fileName.
func (c *Client) PresignUpload(ctx context.Context, fileName, fileType string) (filekeep.PresignedUpload, error) {
	body := map[string]string{"fileName": fileName, "fileType": fileType}

	var upload filekeep.PresignedUpload
	if err := c.doJSON(ctx, http.MethodPost, "/file/presigned-url", body, http.StatusOK, &upload); err != nil {
		return filekeep.PresignedUpload{}, fmt.Errorf("presign upload: %w", err)
	}
	return upload, nil
}

// SaveMetadata records metadata for an uploaded object.
func (c *Client) SaveMetadata(ctx context.Context, filePath, fileName, mimeType string) (filekeep.FileRecord, error) {
	body := map[string]string{"filePath": filePath, "fileName": fileName, "mimeType": mimeType}

	var record filekeep.FileRecord
	if err := c.doJSON(ctx, http.MethodPost, "/file/metadata", body, http.StatusCreated, &record); err != nil {
		return filekeep.FileRecord{}, fmt.Errorf("save metadata: %w", err)
	}
	return record, nil
}

// Upload runs the whole upload flow: presign, send the bytes to the storage
// provider, then record the metadata.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (UploadResult, error) {
	if opts.LocalPath == "" {
		return UploadResult{}, fmt.Errorf("upload: %w", ErrEmptyPath)
	}

	file, err := os.Open(opts.LocalPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}

	fileName := opts.FileName
	if fileName == "" {
		fileName = filepath.Base(opts.LocalPath)
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(opts.LocalPath)
	}

	upload, err := c.PresignUpload(ctx, fileName, contentType)
	if err != nil {
		return UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, upload.UploadURL, file)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = info.Size()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload to storage: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return UploadResult{}, fmt.Errorf("upload to storage: %w", parseServerError(resp.StatusCode, body))
	}

	record, err := c.SaveMetadata(ctx, upload.FilePath, fileName, contentType)
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{LocalPath: opts.LocalPath, Record: record}, nil
}

// Get returns a file and its download URL.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (filekeep.GetFileResult, error) {
	var result filekeep.GetFileResult
	if err := c.doJSON(ctx, http.MethodGet, "/file/"+id.String(), nil, http.StatusOK, &result); err != nil {
		return filekeep.GetFileResult{}, fmt.Errorf("get file %s: %w", id, err)
	}
	return result, nil
}

// Download fetches a file through its download URL. If localPath is "-" the
// content is returned via the io.ReadCloser, which the caller must close.
// Otherwise the content is written to localPath (default: the file name) and
// the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, id uuid.UUID, localPath string) (*DownloadResult, io.ReadCloser, error) {
	file, err := c.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.DownloadURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("download: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("download: %w", parseServerError(resp.StatusCode, body))
	}

	result := &DownloadResult{File: file.File, Size: resp.ContentLength}

	if localPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if localPath == "" {
		localPath = filepath.Base(file.File.FileName)
	}
	result.LocalPath = localPath

	if dir := filepath.Dir(localPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create directory: %w", err)
		}
	}

	out, err := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return nil, nil, fmt.Errorf("create file: %w", err)
	}

	written, copyErr := io.Copy(out, resp.Body)
	if copyErr != nil {
		_ = out.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}
	if err := out.Close(); err != nil {
		return nil, nil, fmt.Errorf("close file: %w", err)
	}

	result.Size = written
	return result, nil, nil
}

// Delete deletes files by id. It continues past failures and reports one
// result per id.
func (c *Client) Delete(ctx context.Context, ids []string) ([]DeleteResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}

	results := make([]DeleteResult, 0, len(ids))
	for _, raw := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := DeleteResult{ID: raw}
		id, err := uuid.Parse(raw)
		if err != nil {
			result.Err = fmt.Errorf("invalid id: %w", err)
			results = append(results, result)
			continue
		}

		if err := c.doJSON(ctx, http.MethodDelete, "/file/"+id.String(), nil, http.StatusNoContent, nil); err != nil {
			result.Err = err
		} else {
			result.Deleted = true
		}
		results = append(results, result)
	}

	return results, nil
}

// HasDeleteErrors reports whether any delete failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// List lists active files. With opts.All every page is fetched.
func (c *Client) List(ctx context.Context, opts ListOptions) (filekeep.ListResult, error) {
	if !opts.All {
		return c.listPage(ctx, opts)
	}

	var all filekeep.ListResult
	for {
		page, err := c.listPage(ctx, opts)
		if err != nil {
			return all, err
		}
		all.Items = append(all.Items, page.Items...)
		if page.NextCursor == "" {
			return all, nil
		}
		opts.Cursor = page.NextCursor
	}
}

func (c *Client) listPage(ctx context.Context, opts ListOptions) (filekeep.ListResult, error) {
	query := url.Values{}
	if opts.Prefix != "" {
		query.Set("prefix", opts.Prefix)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	path := "/file"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result filekeep.ListResult
	if err := c.doJSON(ctx, http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return filekeep.ListResult{}, fmt.Errorf("list files: %w", err)
	}
	return result, nil
}

// doJSON sends in as a JSON body and decodes the response into out when the
// server answers with want.
func (c *Client) doJSON(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != want {
		return parseServerError(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// detectContentType returns MIME type based on file extension.
func detectContentType(path string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}

// parseServerError builds an APIError, keeping the server's code and message
// when the body is a JSON error.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Code = payload.Error
		apiErr.Message = payload.Message
	}
	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " " + e.Code + ": " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the file does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned when the server rejects the input (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrForbidden is returned when an upload URL is rejected (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrConflict is returned when a create-only upload hits an existing object (409).
	ErrConflict = &APIError{StatusCode: http.StatusConflict}
)

package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filekeep"
	filekeephttp "github.com/sagarc03/filekeep/http"
)

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ListBuckets(ctx context.Context) ([]filekeep.BucketInfo, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]filekeep.BucketInfo)
	return out, args.Error(1)
}

func (m *MockService) GetPresignedUploadURL(ctx context.Context, fileName, fileType string) (filekeep.PresignedUpload, error) {
	args := m.Called(ctx, fileName, fileType)
	return args.Get(0).(filekeep.PresignedUpload), args.Error(1)
}

func (m *MockService) SaveFileMetadata(ctx context.Context, filePath, fileName, mimeType string) (filekeep.FileRecord, error) {
	args := m.Called(ctx, filePath, fileName, mimeType)
	return args.Get(0).(filekeep.FileRecord), args.Error(1)
}

func (m *MockService) GetFile(ctx context.Context, id uuid.UUID) (filekeep.GetFileResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(filekeep.GetFileResult), args.Error(1)
}

func (m *MockService) DeleteFile(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) ListFiles(ctx context.Context, q filekeep.ListQuery) (filekeep.ListResult, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(filekeep.ListResult), args.Error(1)
}

func newRouter(t *testing.T) (http.Handler, *MockService) {
	t.Helper()
	service := new(MockService)
	t.Cleanup(func() { service.AssertExpectations(t) })
	return filekeephttp.NewHandler(&filekeephttp.HandlerConfig{}, service).Router(), service
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) filekeephttp.ErrorResponse {
	t.Helper()
	var body filekeephttp.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandler_ListBuckets(t *testing.T) {
	router, service := newRouter(t)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	service.On("ListBuckets", mock.Anything).Return([]filekeep.BucketInfo{
		{ID: "files", Name: "files", Public: true, CreatedAt: created, UpdatedAt: created},
	}, nil).Once()

	rec := serve(router, http.MethodGet, "/file/buckets", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"id":"files","name":"files","public":true,
		"created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z"}]`, rec.Body.String())
}

func TestHandler_ListBuckets_Empty(t *testing.T) {
	router, service := newRouter(t)
	service.On("ListBuckets", mock.Anything).Return(nil, nil).Once()

	rec := serve(router, http.MethodGet, "/file/buckets", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_ListBuckets_Failure(t *testing.T) {
	router, service := newRouter(t)
	service.On("ListBuckets", mock.Anything).
		Return(nil, fmt.Errorf("list buckets: %w: %w", filekeep.ErrInternal, errors.New("access denied"))).Once()

	rec := serve(router, http.MethodGet, "/file/buckets", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "internal_error", body.Error)
	assert.Contains(t, body.Message, "access denied")
}

func TestHandler_PresignedURL(t *testing.T) {
	router, service := newRouter(t)

	service.On("GetPresignedUploadURL", mock.Anything, "doc.pdf", "application/pdf").Return(filekeep.PresignedUpload{
		UploadURL: "https://storage.example.com/upload?sig=abc",
		FilePath:  "uploads/1700000000000_doc.pdf",
	}, nil).Once()

	rec := serve(router, http.MethodPost, "/file/presigned-url", `{"fileName":"doc.pdf","fileType":"application/pdf"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uploadUrl":"https://storage.example.com/upload?sig=abc","filePath":"uploads/1700000000000_doc.pdf"}`, rec.Body.String())
}

func TestHandler_PresignedURL_Validation(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{
			name:        "malformed json",
			body:        `{"fileName":`,
			wantMessage: "malformed request body",
		},
		{
			name:        "missing file name",
			body:        `{"fileType":"image/png"}`,
			wantMessage: "fileName is required",
		},
		{
			name:        "missing file type",
			body:        `{"fileName":"a.png"}`,
			wantMessage: "fileType is required",
		},
		{
			name:        "file name with slash",
			body:        `{"fileName":"../etc/passwd","fileType":"text/plain"}`,
			wantMessage: "fileName can only contain",
		},
		{
			name:        "file name with unicode",
			body:        `{"fileName":"résumé.pdf","fileType":"application/pdf"}`,
			wantMessage: "fileName can only contain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(t)

			rec := serve(router, http.MethodPost, "/file/presigned-url", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, "invalid_input", body.Error)
			assert.Contains(t, body.Message, tt.wantMessage)
		})
	}
}

func TestHandler_PresignedURL_AllowsSpaces(t *testing.T) {
	router, service := newRouter(t)

	service.On("GetPresignedUploadURL", mock.Anything, "my file-v1_final.txt", "text/plain").
		Return(filekeep.PresignedUpload{UploadURL: "u", FilePath: "uploads/1_my file-v1_final.txt"}, nil).Once()

	rec := serve(router, http.MethodPost, "/file/presigned-url", `{"fileName":"my file-v1_final.txt","fileType":"text/plain"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_SaveMetadata(t *testing.T) {
	router, service := newRouter(t)

	id := uuid.New()
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	service.On("SaveFileMetadata", mock.Anything, "uploads/1_a.pdf", "a.pdf", "application/pdf").Return(filekeep.FileRecord{
		ID:          id,
		FilePath:    "uploads/1_a.pdf",
		FileName:    "a.pdf",
		ContentType: "application/pdf",
		UserID:      filekeep.DefaultOwner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil).Once()

	rec := serve(router, http.MethodPost, "/file/metadata", `{"filePath":"uploads/1_a.pdf","fileName":"a.pdf","mimeType":"application/pdf"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var record filekeep.FileRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&record))
	assert.Equal(t, id, record.ID)
	assert.Equal(t, "system", record.UserID)
	assert.False(t, record.IsDeleted)
}

func TestHandler_SaveMetadata_DetachedContext(t *testing.T) {
	router, service := newRouter(t)

	service.On("SaveFileMetadata", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), "p", "n", "m").Return(filekeep.FileRecord{}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequestWithContext(ctx, http.MethodPost, "/file/metadata", strings.NewReader(`{"filePath":"p","fileName":"n","mimeType":"m"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, "a disconnected client does not abort the save")
}

func TestHandler_SaveMetadata_MissingField(t *testing.T) {
	router, _ := newRouter(t)

	rec := serve(router, http.MethodPost, "/file/metadata", `{"filePath":"uploads/1_a.pdf","fileName":"a.pdf"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "mimeType is required")
}

func TestHandler_GetFile(t *testing.T) {
	router, service := newRouter(t)

	id := uuid.New()
	service.On("GetFile", mock.Anything, id).Return(filekeep.GetFileResult{
		File: filekeep.FileView{
			ID:          id,
			FileName:    "a.pdf",
			FilePath:    "uploads/1_a.pdf",
			ContentType: "application/pdf",
			CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		DownloadURL: "https://cdn.example.com/files/uploads/1_a.pdf",
	}, nil).Once()

	rec := serve(router, http.MethodGet, "/file/"+id.String(), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"file": {
			"id": "`+id.String()+`",
			"fileName": "a.pdf",
			"filePath": "uploads/1_a.pdf",
			"contentType": "application/pdf",
			"size": 0,
			"createdAt": "2024-01-01T00:00:00Z"
		},
		"downloadUrl": "https://cdn.example.com/files/uploads/1_a.pdf"
	}`, rec.Body.String())
}

func TestHandler_GetFile_NotFound(t *testing.T) {
	router, service := newRouter(t)

	id := uuid.New()
	service.On("GetFile", mock.Anything, id).Return(filekeep.GetFileResult{}, fmt.Errorf("get file %s: %w", id, filekeep.ErrNotFound)).Once()

	rec := serve(router, http.MethodGet, "/file/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)
}

func TestHandler_GetFile_InvalidID(t *testing.T) {
	router, _ := newRouter(t)

	rec := serve(router, http.MethodGet, "/file/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "id must be a UUID")
}

func TestHandler_DeleteFile(t *testing.T) {
	router, service := newRouter(t)

	id := uuid.New()
	service.On("DeleteFile", mock.Anything, id).Return(nil).Once()

	rec := serve(router, http.MethodDelete, "/file/"+id.String(), "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandler_DeleteFile_Errors(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "not found",
			err:      fmt.Errorf("delete file %s: %w", id, filekeep.ErrNotFound),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "storage failure",
			err:      fmt.Errorf("delete file %s: %w: failed to delete file from storage: %w", id, filekeep.ErrInternal, filekeep.ErrStorage),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t)
			service.On("DeleteFile", mock.Anything, id).Return(tt.err).Once()

			rec := serve(router, http.MethodDelete, "/file/"+id.String(), "")

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandler_DeleteFile_InvalidID(t *testing.T) {
	router, _ := newRouter(t)

	rec := serve(router, http.MethodDelete, "/file/123", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListFiles(t *testing.T) {
	router, service := newRouter(t)

	service.On("ListFiles", mock.Anything, filekeep.ListQuery{PathPrefix: "uploads/", Limit: 50, Cursor: "abc"}).
		Return(filekeep.ListResult{
			Items:      []filekeep.FileRecord{{FilePath: "uploads/1_a.txt"}},
			NextCursor: "next",
		}, nil).Once()

	rec := serve(router, http.MethodGet, "/file?prefix=uploads/&limit=50&cursor=abc", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var result filekeep.ListResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "uploads/1_a.txt", result.Items[0].FilePath)
	assert.Equal(t, "next", result.NextCursor)
}

func TestHandler_ListFiles_Limits(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantLimit int
	}{
		{name: "default", target: "/file", wantLimit: 100},
		{name: "trailing slash", target: "/file/", wantLimit: 100},
		{name: "capped", target: "/file?limit=9999", wantLimit: 1000},
		{name: "raised to one", target: "/file?limit=0", wantLimit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t)
			service.On("ListFiles", mock.Anything, mock.MatchedBy(func(q filekeep.ListQuery) bool {
				return q.Limit == tt.wantLimit
			})).Return(filekeep.ListResult{}, nil).Once()

			rec := serve(router, http.MethodGet, tt.target, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
		})
	}
}

func TestHandler_ListFiles_InvalidLimit(t *testing.T) {
	router, _ := newRouter(t)

	rec := serve(router, http.MethodGet, "/file?limit=abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListFiles_InvalidCursor(t *testing.T) {
	router, service := newRouter(t)
	service.On("ListFiles", mock.Anything, mock.Anything).
		Return(filekeep.ListResult{}, fmt.Errorf("list files: %w: %w", filekeep.ErrInternal, fmt.Errorf("decode cursor: %w: invalid encoding", filekeep.ErrInvalidInput))).Once()

	rec := serve(router, http.MethodGet, "/file?cursor=!!!", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Healthz(t *testing.T) {
	router, _ := newRouter(t)

	rec := serve(router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandler_ObjectsDisabledWithoutStore(t *testing.T) {
	router, _ := newRouter(t)

	rec := serve(router, http.MethodGet, "/objects/files/a.txt", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CORS(t *testing.T) {
	service := new(MockService)
	router := filekeephttp.NewHandler(&filekeephttp.HandlerConfig{
		CORS: filekeephttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://app.example.com"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		},
	}, service).Router()

	req := httptest.NewRequest(http.MethodOptions, "/file/buckets", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

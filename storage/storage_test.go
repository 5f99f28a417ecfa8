package storage_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filekeep"
	"github.com/sagarc03/filekeep/storage"
)

func localConfig(t *testing.T) storage.Config {
	t.Helper()
	return storage.Config{
		Provider:   storage.ProviderLocal,
		Bucket:     "files",
		Endpoint:   "http://localhost:8080",
		AccessKey:  "LOCALKEY",
		Credential: "localsecret",
		Path:       filepath.Join(t.TempDir(), "data"),
		UploadTTL:  15 * time.Minute,
	}
}

func TestOpen_Local(t *testing.T) {
	p, err := storage.Open(context.Background(), localConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.True(t, p.Local())
	require.NotNil(t, p.Verifier)

	signed, err := p.CreateSignedUploadURL(context.Background(), "uploads/1_a.txt", filekeep.SignedUploadOptions{Upsert: true})
	require.NoError(t, err)

	u, err := url.Parse(signed.SignedURL)
	require.NoError(t, err)
	assert.Equal(t, "/objects/files/uploads/1_a.txt", u.Path)

	req := httptest.NewRequest(http.MethodPut, u.RequestURI(), nil)
	assert.NoError(t, p.Verifier.Verify(req), "upload URL verifies with the provider's own keys")
}

func TestOpen_S3(t *testing.T) {
	p, err := storage.Open(context.Background(), storage.Config{
		Provider:   storage.ProviderS3,
		Bucket:     "files",
		Endpoint:   "http://localhost:9000",
		Region:     "us-east-1",
		AccessKey:  "minio",
		Credential: "minio123",
		UploadTTL:  time.Hour,
	})
	require.NoError(t, err)

	assert.False(t, p.Local())
	assert.Equal(t, "http://localhost:9000/files/uploads/1_a.txt", p.PublicURL("uploads/1_a.txt"))
	assert.NoError(t, p.Close())
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*storage.Config)
		wantErr string
	}{
		{
			name:    "missing credential",
			mutate:  func(c *storage.Config) { c.Credential = "" },
			wantErr: "credential is required",
		},
		{
			name:    "missing bucket",
			mutate:  func(c *storage.Config) { c.Bucket = "" },
			wantErr: "bucket is required",
		},
		{
			name:    "local without endpoint",
			mutate:  func(c *storage.Config) { c.Endpoint = "" },
			wantErr: "endpoint is required",
		},
		{
			name: "s3 without endpoint",
			mutate: func(c *storage.Config) {
				c.Provider = storage.ProviderS3
				c.Endpoint = ""
			},
			wantErr: "endpoint is required",
		},
		{
			name:    "local without access key",
			mutate:  func(c *storage.Config) { c.AccessKey = "" },
			wantErr: "signing key",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *storage.Config) { c.Provider = "azure" },
			wantErr: "unsupported provider: azure",
		},
		{
			name: "gcs with bad credential",
			mutate: func(c *storage.Config) {
				c.Provider = storage.ProviderGCS
				c.Credential = `{"client_email":""}`
			},
			wantErr: "client_email and private_key are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := localConfig(t)
			tt.mutate(&cfg)

			_, err := storage.Open(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

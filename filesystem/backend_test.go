package filesystem_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filekeep"
	"github.com/sagarc03/filekeep/filesystem"
	"github.com/sagarc03/filekeep/keybackend"
)

var signingKey = keybackend.KeyPair{AccessKey: "LOCALKEY", SecretKey: "localsecret"}

func newTestBackend(t *testing.T) (*filesystem.Backend, *filesystem.Store, *keybackend.Keyring, string) {
	t.Helper()
	store, dir := newTestStore(t)

	keys, err := keybackend.NewKeyring(keybackend.KeysConfig{Signing: signingKey})
	require.NoError(t, err)

	backend, err := filesystem.NewBackend(store, keys, filesystem.BackendConfig{
		Bucket:    "files",
		Endpoint:  "http://localhost:8080/",
		UploadTTL: 2 * time.Hour,
	})
	require.NoError(t, err)
	return backend, store, keys, dir
}

func TestNewBackend(t *testing.T) {
	store, dir := newTestStore(t)
	keys, err := keybackend.NewKeyring(keybackend.KeysConfig{Signing: signingKey})
	require.NoError(t, err)

	t.Run("creates bucket directory", func(t *testing.T) {
		_, err := filesystem.NewBackend(store, keys, filesystem.BackendConfig{
			Bucket: "files", Endpoint: "http://localhost:8080", UploadTTL: time.Minute,
		})
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(dir, "files"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	tests := []struct {
		name string
		cfg  filesystem.BackendConfig
	}{
		{"relative endpoint", filesystem.BackendConfig{Bucket: "files", Endpoint: "localhost:8080", UploadTTL: time.Minute}},
		{"empty endpoint", filesystem.BackendConfig{Bucket: "files", UploadTTL: time.Minute}},
		{"bucket with slash", filesystem.BackendConfig{Bucket: "a/b", Endpoint: "http://x", UploadTTL: time.Minute}},
		{"zero ttl", filesystem.BackendConfig{Bucket: "files", Endpoint: "http://x"}},
		{"ttl above maximum", filesystem.BackendConfig{Bucket: "files", Endpoint: "http://x", UploadTTL: 8 * 24 * time.Hour}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := filesystem.NewBackend(store, keys, tt.cfg)
			assert.Error(t, err)
		})
	}

	_, err = filesystem.NewBackend(store, nil, filesystem.BackendConfig{Bucket: "files", Endpoint: "http://x", UploadTTL: time.Minute})
	assert.Error(t, err, "keyring is required")
}

func TestBackend_CreateSignedUploadURL(t *testing.T) {
	backend, _, keys, _ := newTestBackend(t)
	verifier := filekeep.NewSignatureVerifier(keys)
	ctx := context.Background()

	t.Run("upsert signs PUT", func(t *testing.T) {
		signed, err := backend.CreateSignedUploadURL(ctx, "uploads/1700000000000_my doc.pdf", filekeep.SignedUploadOptions{Upsert: true})
		require.NoError(t, err)
		assert.Equal(t, "uploads/1700000000000_my doc.pdf", signed.Path)

		u, err := url.Parse(signed.SignedURL)
		require.NoError(t, err)
		assert.Equal(t, "localhost:8080", u.Host)
		assert.Equal(t, "/objects/files/uploads/1700000000000_my doc.pdf", u.Path)
		assert.Equal(t, "LOCALKEY", u.Query().Get("X-Stowry-Credential"))
		assert.Equal(t, "7200", u.Query().Get("X-Stowry-Expires"))

		assert.NoError(t, verifier.Verify(httptest.NewRequest(http.MethodPut, signed.SignedURL, nil)))
		assert.ErrorIs(t, verifier.Verify(httptest.NewRequest(http.MethodPost, signed.SignedURL, nil)), filekeep.ErrUnauthorized)
	})

	t.Run("create only signs POST", func(t *testing.T) {
		signed, err := backend.CreateSignedUploadURL(ctx, "uploads/1_a.txt", filekeep.SignedUploadOptions{})
		require.NoError(t, err)

		assert.NoError(t, verifier.Verify(httptest.NewRequest(http.MethodPost, signed.SignedURL, nil)))
		assert.ErrorIs(t, verifier.Verify(httptest.NewRequest(http.MethodPut, signed.SignedURL, nil)), filekeep.ErrUnauthorized)
	})

	t.Run("double dots inside a name", func(t *testing.T) {
		signed, err := backend.CreateSignedUploadURL(ctx, "uploads/1700000000000_a..b.pdf", filekeep.SignedUploadOptions{Upsert: true})
		require.NoError(t, err)
		assert.Equal(t, "uploads/1700000000000_a..b.pdf", signed.Path)

		u, err := url.Parse(signed.SignedURL)
		require.NoError(t, err)
		assert.Equal(t, "/objects/files/uploads/1700000000000_a..b.pdf", u.Path)

		assert.NoError(t, verifier.Verify(httptest.NewRequest(http.MethodPut, signed.SignedURL, nil)))
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := backend.CreateSignedUploadURL(ctx, "../escape.txt", filekeep.SignedUploadOptions{Upsert: true})
		assert.ErrorIs(t, err, filekeep.ErrInvalidInput)
	})
}

func TestBackend_PublicURL(t *testing.T) {
	backend, _, _, _ := newTestBackend(t)

	assert.Equal(t, "http://localhost:8080/objects/files/uploads/1_a.txt", backend.PublicURL("uploads/1_a.txt"))
	assert.Equal(t, "http://localhost:8080/objects/files/uploads/1_a%20b.txt", backend.PublicURL("uploads/1_a b.txt"))
	assert.Equal(t, "http://localhost:8080/objects/files/uploads/never-uploaded.txt", backend.PublicURL("uploads/never-uploaded.txt"),
		"url is computed without checking existence")
}

func TestBackend_Remove(t *testing.T) {
	backend, store, _, dir := newTestBackend(t)
	ctx := context.Background()

	_, err := store.Write(ctx, "files/uploads/1_a.txt", bytes.NewReader([]byte("a")), true)
	require.NoError(t, err)

	require.NoError(t, backend.Remove(ctx, []string{"uploads/1_a.txt", "uploads/missing.txt"}))

	_, statErr := os.Stat(filepath.Join(dir, "files", "uploads", "1_a.txt"))
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, backend.Remove(ctx, []string{"uploads/1_a.txt"}), "removing twice succeeds")
}

func TestBackend_ListBuckets(t *testing.T) {
	backend, _, _, _ := newTestBackend(t)

	buckets, err := backend.ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "files", buckets[0].Name)
}

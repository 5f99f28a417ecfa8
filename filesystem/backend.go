package filesystem

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sagarc03/filekeep"
	"github.com/sagarc03/filekeep/keybackend"
)

// ObjectsPrefix is the URL path under which the local backend serves objects.
const ObjectsPrefix = "/objects"

// BackendConfig configures the local storage backend.
type BackendConfig struct {
	// Bucket is the directory uploads are placed in.
	Bucket string
	// Endpoint is the public base URL of this server, e.g. http://localhost:8080.
	Endpoint string
	// UploadTTL is how long a signed upload URL stays valid.
	UploadTTL time.Duration
	// Clock is the time source for signing (default: time.Now).
	Clock func() time.Time
}

// Backend implements filekeep.ObjectStorage on a Store. Upload URLs point back
// at this server and carry a native signature.
type Backend struct {
	store    *Store
	keys     *keybackend.Keyring
	bucket   string
	endpoint *url.URL
	ttl      time.Duration
	now      func() time.Time
}

func NewBackend(store *Store, keys *keybackend.Keyring, cfg BackendConfig) (*Backend, error) {
	if keys == nil {
		return nil, errors.New("new local backend: keyring is required")
	}

	endpoint, err := url.Parse(strings.TrimSuffix(cfg.Endpoint, "/"))
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("new local backend: invalid endpoint %q", cfg.Endpoint)
	}

	if err := store.EnsureBucket(cfg.Bucket); err != nil {
		return nil, fmt.Errorf("new local backend: %w", err)
	}

	ttl := cfg.UploadTTL
	if ttl <= 0 || ttl > filekeep.MaxExpiresSeconds*time.Second {
		return nil, fmt.Errorf("new local backend: upload ttl must be between 1s and %ds", filekeep.MaxExpiresSeconds)
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Backend{
		store:    store,
		keys:     keys,
		bucket:   cfg.Bucket,
		endpoint: endpoint,
		ttl:      ttl,
		now:      now,
	}, nil
}

func (b *Backend) objectURLPath(path string) string {
	return ObjectsPrefix + "/" + b.bucket + "/" + path
}

func (b *Backend) urlFor(path string) *url.URL {
	u := *b.endpoint
	u.Path = b.endpoint.Path + b.objectURLPath(path)
	u.RawPath = ""
	return &u
}

func (b *Backend) ListBuckets(ctx context.Context) ([]filekeep.BucketInfo, error) {
	return b.store.Buckets(ctx)
}

// CreateSignedUploadURL signs a PUT to the object when upserts are allowed and
// a POST otherwise. POST refuses to overwrite an existing object.
func (b *Backend) CreateSignedUploadURL(_ context.Context, path string, opts filekeep.SignedUploadOptions) (filekeep.SignedUpload, error) {
	if !filekeep.IsValidPath(path) {
		return filekeep.SignedUpload{}, fmt.Errorf("sign upload: %w: invalid path %q", filekeep.ErrInvalidInput, path)
	}

	method := http.MethodPost
	if opts.Upsert {
		method = http.MethodPut
	}

	signing := b.keys.SigningKey()
	u := b.urlFor(path)
	u.RawQuery = filekeep.PresignQuery(
		signing.AccessKey, signing.SecretKey, method, b.endpoint.Path+b.objectURLPath(path), b.now(), b.ttl,
	).Encode()

	return filekeep.SignedUpload{SignedURL: u.String(), Path: path}, nil
}

func (b *Backend) PublicURL(path string) string {
	return b.urlFor(path).String()
}

// Remove deletes every path from the bucket. Missing objects are skipped.
func (b *Backend) Remove(ctx context.Context, paths []string) error {
	var errs []error
	for _, p := range paths {
		err := b.store.Delete(ctx, b.bucket+"/"+p)
		if err != nil && !errors.Is(err, filekeep.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("remove: %w", errors.Join(errs...))
	}
	return nil
}

var _ filekeep.ObjectStorage = (*Backend)(nil)

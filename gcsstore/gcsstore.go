// Package gcsstore implements filekeep.ObjectStorage on Google Cloud Storage.
package gcsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/sagarc03/filekeep"
)

// PublicBaseURL is where GCS serves publicly readable objects.
const PublicBaseURL = "https://storage.googleapis.com"

// API is the subset of GCS operations used by Store.
type API interface {
	ListBuckets(ctx context.Context) ([]filekeep.BucketInfo, error)
	DeleteObject(ctx context.Context, bucket, name string) error
}

// SignFunc signs a URL for an object. storage.SignedURL satisfies it.
type SignFunc func(bucket, name string, opts *storage.SignedURLOptions) (string, error)

// Config configures a GCS store.
type Config struct {
	Bucket    string
	ProjectID string
	// Credential is a service account JSON key, inline or as a file path.
	Credential string
	UploadTTL  time.Duration
}

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	ProjectID   string `json:"project_id"`
}

// ParseServiceAccount reads the signing identity out of a service account
// key. credential may be the JSON itself or a path to it. Literal \n sequences
// in the private key are turned into newlines.
func ParseServiceAccount(credential string) (email, privateKey, projectID string, raw []byte, err error) {
	raw = []byte(credential)
	if !strings.HasPrefix(strings.TrimSpace(credential), "{") {
		raw, err = os.ReadFile(credential) //nolint:gosec // path is from trusted config
		if err != nil {
			return "", "", "", nil, fmt.Errorf("read service account: %w", err)
		}
	}

	var sa serviceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return "", "", "", nil, fmt.Errorf("parse service account: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return "", "", "", nil, errors.New("parse service account: client_email and private_key are required")
	}

	return sa.ClientEmail, strings.ReplaceAll(sa.PrivateKey, `\n`, "\n"), sa.ProjectID, raw, nil
}

type Store struct {
	api        API
	sign       SignFunc
	bucket     string
	accessID   string
	privateKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// New creates a GCS client authenticated with the service account key in
// cfg.Credential. The same key signs upload URLs.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("new gcs store: bucket is required")
	}

	email, key, projectID, raw, err := ParseServiceAccount(cfg.Credential)
	if err != nil {
		return nil, fmt.Errorf("new gcs store: %w", err)
	}
	if cfg.ProjectID != "" {
		projectID = cfg.ProjectID
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("new gcs store: %w", err)
	}

	api := &clientAPI{client: client, projectID: projectID}
	return NewWithAPI(api, storage.SignedURL, cfg.Bucket, email, key, cfg.UploadTTL), nil
}

// NewWithAPI builds a Store from an existing API and signer.
func NewWithAPI(api API, sign SignFunc, bucket, accessID, privateKey string, ttl time.Duration) *Store {
	return &Store{
		api:        api,
		sign:       sign,
		bucket:     bucket,
		accessID:   accessID,
		privateKey: []byte(privateKey),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *Store) ListBuckets(ctx context.Context) ([]filekeep.BucketInfo, error) {
	buckets, err := s.api.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w: %w", filekeep.ErrStorage, err)
	}
	return buckets, nil
}

// CreateSignedUploadURL signs a V4 PUT. Without upsert the URL requires
// x-goog-if-generation-match: 0, which GCS only accepts for new objects.
func (s *Store) CreateSignedUploadURL(_ context.Context, path string, opts filekeep.SignedUploadOptions) (filekeep.SignedUpload, error) {
	signOpts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodPut,
		Expires:        s.now().Add(s.ttl),
		GoogleAccessID: s.accessID,
		PrivateKey:     s.privateKey,
	}
	if !opts.Upsert {
		signOpts.Headers = []string{"x-goog-if-generation-match:0"}
	}

	signed, err := s.sign(s.bucket, path, signOpts)
	if err != nil {
		return filekeep.SignedUpload{}, fmt.Errorf("sign upload %s: %w: %w", path, filekeep.ErrStorage, err)
	}

	return filekeep.SignedUpload{SignedURL: signed, Path: path}, nil
}

func (s *Store) PublicURL(path string) string {
	u := url.URL{Path: "/" + s.bucket + "/" + path}
	return PublicBaseURL + u.EscapedPath()
}

// Remove deletes each object. Objects that do not exist are skipped.
func (s *Store) Remove(ctx context.Context, paths []string) error {
	var errs []error
	for _, p := range paths {
		err := s.api.DeleteObject(ctx, s.bucket, p)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("remove: %w: %w", filekeep.ErrStorage, errors.Join(errs...))
	}
	return nil
}

type clientAPI struct {
	client    *storage.Client
	projectID string
}

func (c *clientAPI) ListBuckets(ctx context.Context) ([]filekeep.BucketInfo, error) {
	if c.projectID == "" {
		return nil, errors.New("project id is required to list buckets")
	}

	var buckets []filekeep.BucketInfo
	it := c.client.Buckets(ctx, c.projectID)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, filekeep.BucketInfo{
			ID:        attrs.Name,
			Name:      attrs.Name,
			CreatedAt: attrs.Created,
			UpdatedAt: attrs.Updated,
		})
	}
	return buckets, nil
}

func (c *clientAPI) DeleteObject(ctx context.Context, bucket, name string) error {
	return c.client.Bucket(bucket).Object(name).Delete(ctx)
}

var _ filekeep.ObjectStorage = (*Store)(nil)

// Package s3store implements filekeep.ObjectStorage on Amazon S3 and
// S3-compatible services.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sagarc03/filekeep"
)

// maxDeleteBatch is the largest number of keys a DeleteObjects call accepts.
const maxDeleteBatch = 1000

// API is the subset of the S3 client used by Store.
type API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Presigner is the subset of the S3 presign client used by Store.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Config configures an S3 store.
type Config struct {
	// Endpoint is the base URL of an S3-compatible service. Empty means AWS.
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UploadTTL time.Duration
}

type Store struct {
	api       API
	presigner Presigner
	bucket    string
	baseURL   string
	ttl       time.Duration
}

// New builds an S3 client with static credentials. When an endpoint is set,
// path-style addressing is used so that the bucket is the first path segment.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("new s3 store: bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("new s3 store: access key and secret key are required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("new s3 store: load config: %w", err)
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := endpoint
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
	}

	return NewWithClient(client, s3.NewPresignClient(client), cfg.Bucket, baseURL, cfg.UploadTTL), nil
}

// NewWithClient builds a Store from existing clients. baseURL is the
// path-style public base, without the bucket.
func NewWithClient(api API, presigner Presigner, bucket, baseURL string, ttl time.Duration) *Store {
	return &Store{
		api:       api,
		presigner: presigner,
		bucket:    bucket,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		ttl:       ttl,
	}
}

func (s *Store) ListBuckets(ctx context.Context) ([]filekeep.BucketInfo, error) {
	out, err := s.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w: %w", filekeep.ErrStorage, err)
	}

	buckets := make([]filekeep.BucketInfo, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)
		created := aws.ToTime(b.CreationDate)
		buckets = append(buckets, filekeep.BucketInfo{
			ID:        name,
			Name:      name,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return buckets, nil
}

// CreateSignedUploadURL presigns a PutObject. Without upsert the request
// carries If-None-Match: *, so S3 rejects it when the key already exists.
func (s *Store) CreateSignedUploadURL(ctx context.Context, path string, opts filekeep.SignedUploadOptions) (filekeep.SignedUpload, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}
	if !opts.Upsert {
		input.IfNoneMatch = aws.String("*")
	}

	req, err := s.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return filekeep.SignedUpload{}, fmt.Errorf("sign upload %s: %w: %w", path, filekeep.ErrStorage, err)
	}

	return filekeep.SignedUpload{SignedURL: req.URL, Path: path}, nil
}

func (s *Store) PublicURL(path string) string {
	return s.baseURL + "/" + url.PathEscape(s.bucket) + "/" + escapeKey(path)
}

// Remove deletes objects in batches. S3 reports missing keys as deleted.
func (s *Store) Remove(ctx context.Context, paths []string) error {
	for start := 0; start < len(paths); start += maxDeleteBatch {
		batch := paths[start:min(start+maxDeleteBatch, len(paths))]

		objects := make([]types.ObjectIdentifier, 0, len(batch))
		for _, p := range batch {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(p)})
		}

		out, err := s.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("remove: %w: %w", filekeep.ErrStorage, err)
		}

		if len(out.Errors) > 0 {
			errs := make([]error, 0, len(out.Errors))
			for _, e := range out.Errors {
				if aws.ToString(e.Code) == "NoSuchKey" {
					continue
				}
				errs = append(errs, fmt.Errorf("%s: %s: %s", aws.ToString(e.Key), aws.ToString(e.Code), aws.ToString(e.Message)))
			}
			if len(errs) > 0 {
				return fmt.Errorf("remove: %w: %w", filekeep.ErrStorage, errors.Join(errs...))
			}
		}
	}
	return nil
}

// escapeKey escapes each segment of an object key and keeps the slashes.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

var _ filekeep.ObjectStorage = (*Store)(nil)

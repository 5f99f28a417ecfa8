package s3store_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filekeep"
	"github.com/sagarc03/filekeep/s3store"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListBucketsOutput)
	return out, args.Error(1)
}

func (m *MockAPI) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectsOutput)
	return out, args.Error(1)
}

type MockPresigner struct {
	mock.Mock
}

func (m *MockPresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*v4.PresignedHTTPRequest)
	return out, args.Error(1)
}

func newMockStore() (*s3store.Store, *MockAPI, *MockPresigner) {
	api := new(MockAPI)
	presigner := new(MockPresigner)
	return s3store.NewWithClient(api, presigner, "files", "https://project.storage.example/storage/v1/s3", time.Hour), api, presigner
}

func TestStore_ListBuckets(t *testing.T) {
	t.Run("maps buckets", func(t *testing.T) {
		store, api, _ := newMockStore()
		ctx := context.Background()
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		api.On("ListBuckets", ctx, mock.Anything).Return(&s3.ListBucketsOutput{
			Buckets: []types.Bucket{{Name: aws.String("files"), CreationDate: aws.Time(created)}},
		}, nil)

		buckets, err := store.ListBuckets(ctx)
		require.NoError(t, err)
		assert.Equal(t, []filekeep.BucketInfo{{ID: "files", Name: "files", CreatedAt: created, UpdatedAt: created}}, buckets)
	})

	t.Run("provider error", func(t *testing.T) {
		store, api, _ := newMockStore()
		ctx := context.Background()

		api.On("ListBuckets", ctx, mock.Anything).Return(nil, errors.New("AccessDenied"))

		_, err := store.ListBuckets(ctx)
		assert.ErrorIs(t, err, filekeep.ErrStorage)
		assert.Contains(t, err.Error(), "AccessDenied")
	})
}

func TestStore_CreateSignedUploadURL(t *testing.T) {
	t.Run("upsert presigns plain put", func(t *testing.T) {
		store, _, presigner := newMockStore()
		ctx := context.Background()

		presigner.On("PresignPutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return aws.ToString(in.Bucket) == "files" && aws.ToString(in.Key) == "uploads/1_a.txt" && in.IfNoneMatch == nil
		})).Return(&v4.PresignedHTTPRequest{URL: "https://signed.example/put"}, nil)

		signed, err := store.CreateSignedUploadURL(ctx, "uploads/1_a.txt", filekeep.SignedUploadOptions{Upsert: true})
		require.NoError(t, err)
		assert.Equal(t, "https://signed.example/put", signed.SignedURL)
		assert.Equal(t, "uploads/1_a.txt", signed.Path)
	})

	t.Run("create only requires absent key", func(t *testing.T) {
		store, _, presigner := newMockStore()
		ctx := context.Background()

		presigner.On("PresignPutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return aws.ToString(in.IfNoneMatch) == "*"
		})).Return(&v4.PresignedHTTPRequest{URL: "https://signed.example/put"}, nil)

		_, err := store.CreateSignedUploadURL(ctx, "uploads/1_a.txt", filekeep.SignedUploadOptions{})
		require.NoError(t, err)
		presigner.AssertExpectations(t)
	})

	t.Run("presign error", func(t *testing.T) {
		store, _, presigner := newMockStore()
		ctx := context.Background()

		presigner.On("PresignPutObject", ctx, mock.Anything).Return(nil, errors.New("no credentials"))

		_, err := store.CreateSignedUploadURL(ctx, "uploads/1_a.txt", filekeep.SignedUploadOptions{Upsert: true})
		assert.ErrorIs(t, err, filekeep.ErrStorage)
	})
}

func TestStore_PublicURL(t *testing.T) {
	store, _, _ := newMockStore()

	assert.Equal(t, "https://project.storage.example/storage/v1/s3/files/uploads/1_a.txt", store.PublicURL("uploads/1_a.txt"))
	assert.Equal(t, "https://project.storage.example/storage/v1/s3/files/uploads/1_my%20file.txt", store.PublicURL("uploads/1_my file.txt"))
}

func TestStore_Remove(t *testing.T) {
	t.Run("single path", func(t *testing.T) {
		store, api, _ := newMockStore()
		ctx := context.Background()

		api.On("DeleteObjects", ctx, mock.MatchedBy(func(in *s3.DeleteObjectsInput) bool {
			return aws.ToString(in.Bucket) == "files" &&
				len(in.Delete.Objects) == 1 &&
				aws.ToString(in.Delete.Objects[0].Key) == "uploads/1_a.txt"
		})).Return(&s3.DeleteObjectsOutput{}, nil)

		require.NoError(t, store.Remove(ctx, []string{"uploads/1_a.txt"}))
		api.AssertExpectations(t)
	})

	t.Run("batches large removals", func(t *testing.T) {
		store, api, _ := newMockStore()
		ctx := context.Background()

		paths := make([]string, 1500)
		for i := range paths {
			paths[i] = fmt.Sprintf("uploads/%d.txt", i)
		}

		api.On("DeleteObjects", ctx, mock.Anything).Return(&s3.DeleteObjectsOutput{}, nil)

		require.NoError(t, store.Remove(ctx, paths))
		api.AssertNumberOfCalls(t, "DeleteObjects", 2)
	})

	t.Run("missing keys are ignored", func(t *testing.T) {
		store, api, _ := newMockStore()
		ctx := context.Background()

		api.On("DeleteObjects", ctx, mock.Anything).Return(&s3.DeleteObjectsOutput{
			Errors: []types.Error{{Key: aws.String("uploads/1_a.txt"), Code: aws.String("NoSuchKey")}},
		}, nil)

		assert.NoError(t, store.Remove(ctx, []string{"uploads/1_a.txt"}))
	})

	t.Run("per key failure", func(t *testing.T) {
		store, api, _ := newMockStore()
		ctx := context.Background()

		api.On("DeleteObjects", ctx, mock.Anything).Return(&s3.DeleteObjectsOutput{
			Errors: []types.Error{{Key: aws.String("uploads/1_a.txt"), Code: aws.String("AccessDenied"), Message: aws.String("denied")}},
		}, nil)

		err := store.Remove(ctx, []string{"uploads/1_a.txt"})
		assert.ErrorIs(t, err, filekeep.ErrStorage)
		assert.Contains(t, err.Error(), "AccessDenied")
	})

	t.Run("request failure", func(t *testing.T) {
		store, api, _ := newMockStore()
		ctx := context.Background()

		api.On("DeleteObjects", ctx, mock.Anything).Return(nil, errors.New("timeout"))

		assert.ErrorIs(t, store.Remove(ctx, []string{"uploads/1_a.txt"}), filekeep.ErrStorage)
	})
}

func TestNew_PresignsPathStyleURL(t *testing.T) {
	ctx := context.Background()

	store, err := s3store.New(ctx, s3store.Config{
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "files",
		UploadTTL: 2 * time.Hour,
	})
	require.NoError(t, err)

	signed, err := store.CreateSignedUploadURL(ctx, "uploads/1700000000000_doc.pdf", filekeep.SignedUploadOptions{Upsert: true})
	require.NoError(t, err)

	u, err := url.Parse(signed.SignedURL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/files/uploads/1700000000000_doc.pdf", u.Path)
	assert.Equal(t, "7200", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	assert.Equal(t, "http://localhost:9000/files/uploads/1_a.txt", store.PublicURL("uploads/1_a.txt"))
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := s3store.New(context.Background(), s3store.Config{Bucket: "files", Region: "us-east-1"})
	assert.Error(t, err)

	_, err = s3store.New(context.Background(), s3store.Config{AccessKey: "a", SecretKey: "b", Region: "us-east-1"})
	assert.Error(t, err)
}

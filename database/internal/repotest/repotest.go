// Package repotest holds the behaviour every filekeep.FileRepo backend must
// share. Backends call Run from their own tests.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filekeep"
)

// Factory returns an empty repo and registers its own cleanup on t.
type Factory func(t *testing.T) filekeep.FileRepo

func newFile(path, name string) filekeep.NewFile {
	return filekeep.NewFile{
		FilePath:    path,
		FileName:    name,
		ContentType: "text/plain",
		Size:        0,
		UserID:      filekeep.DefaultOwner,
	}
}

// Run exercises newRepo against the FileRepo contract.
func Run(t *testing.T, newRepo Factory) {
	t.Run("Create", func(t *testing.T) { testCreate(t, newRepo) })
	t.Run("Get", func(t *testing.T) { testGet(t, newRepo) })
	t.Run("GetByPath", func(t *testing.T) { testGetByPath(t, newRepo) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newRepo) })
	t.Run("MarkDeleted", func(t *testing.T) { testMarkDeleted(t, newRepo) })
	t.Run("List", func(t *testing.T) { testList(t, newRepo) })
}

func testCreate(t *testing.T, newRepo Factory) {
	t.Run("assigns id and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		before := time.Now().Add(-time.Second)
		f, err := repo.Create(ctx, newFile("uploads/1_a.txt", "a.txt"))
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, f.ID)
		assert.Equal(t, "uploads/1_a.txt", f.FilePath)
		assert.Equal(t, "a.txt", f.FileName)
		assert.Equal(t, "text/plain", f.ContentType)
		assert.Equal(t, int64(0), f.Size)
		assert.Equal(t, filekeep.DefaultOwner, f.UserID)
		assert.False(t, f.IsDeleted)
		assert.True(t, f.CreatedAt.After(before), "created_at %v", f.CreatedAt)
		assert.False(t, f.UpdatedAt.Before(f.CreatedAt))
	})

	t.Run("distinct paths get distinct ids", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a, err := repo.Create(ctx, newFile("uploads/1_a.txt", "a.txt"))
		require.NoError(t, err)
		b, err := repo.Create(ctx, newFile("uploads/2_b.txt", "b.txt"))
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("duplicate path conflicts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Create(ctx, newFile("uploads/1_a.txt", "a.txt"))
		require.NoError(t, err)

		_, err = repo.Create(ctx, newFile("uploads/1_a.txt", "other.txt"))
		assert.ErrorIs(t, err, filekeep.ErrConflict)
	})
}

func testGet(t *testing.T, newRepo Factory) {
	t.Run("active record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, newFile("uploads/1_a.txt", "a.txt"))
		require.NoError(t, err)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.FilePath, got.FilePath)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Get(context.Background(), uuid.New())
		assert.ErrorIs(t, err, filekeep.ErrNotFound)
	})

	t.Run("deleted record is hidden", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, newFile("uploads/1_a.txt", "a.txt"))
		require.NoError(t, err)
		require.NoError(t, repo.MarkDeleted(ctx, created.ID))

		_, err = repo.Get(ctx, created.ID)
		assert.ErrorIs(t, err, filekeep.ErrNotFound)
	})
}

func testGetByPath(t *testing.T, newRepo Factory) {
	t.Run("finds active and deleted records", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, newFile("uploads/1_a.txt", "a.txt"))
		require.NoError(t, err)

		got, err := repo.GetByPath(ctx, "uploads/1_a.txt")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)

		require.NoError(t, repo.MarkDeleted(ctx, created.ID))

		got, err = repo.GetByPath(ctx, "uploads/1_a.txt")
		require.NoError(t, err)
		assert.True(t, got.IsDeleted)
	})

	t.Run("unknown path", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByPath(context.Background(), "uploads/missing.txt")
		assert.ErrorIs(t, err, filekeep.ErrNotFound)
	})
}

func testUpdate(t *testing.T, newRepo Factory) {
	t.Run("overwrites name and type only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		nf := newFile("uploads/1_a.txt", "a.txt")
		nf.Size = 42
		created, err := repo.Create(ctx, nf)
		require.NoError(t, err)

		updated, err := repo.Update(ctx, "uploads/1_a.txt", filekeep.FileUpdate{
			FileName:    "b.txt",
			ContentType: "application/json",
		})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "b.txt", updated.FileName)
		assert.Equal(t, "application/json", updated.ContentType)
		assert.Equal(t, int64(42), updated.Size)
		assert.Equal(t, created.UserID, updated.UserID)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("deleted record stays deleted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, newFile("uploads/1_a.txt", "a.txt"))
		require.NoError(t, err)
		require.NoError(t, repo.MarkDeleted(ctx, created.ID))

		updated, err := repo.Update(ctx, "uploads/1_a.txt", filekeep.FileUpdate{FileName: "c.txt", ContentType: "text/plain"})
		require.NoError(t, err)
		assert.True(t, updated.IsDeleted)
		assert.Equal(t, "c.txt", updated.FileName)

		_, err = repo.Get(ctx, created.ID)
		assert.ErrorIs(t, err, filekeep.ErrNotFound)
	})

	t.Run("unknown path", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(context.Background(), "uploads/missing.txt", filekeep.FileUpdate{FileName: "x", ContentType: "y"})
		assert.ErrorIs(t, err, filekeep.ErrNotFound)
	})
}

func testMarkDeleted(t *testing.T, newRepo Factory) {
	t.Run("second delete is not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, newFile("uploads/1_a.txt", "a.txt"))
		require.NoError(t, err)

		require.NoError(t, repo.MarkDeleted(ctx, created.ID))
		assert.ErrorIs(t, repo.MarkDeleted(ctx, created.ID), filekeep.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.MarkDeleted(context.Background(), uuid.New())
		assert.ErrorIs(t, err, filekeep.ErrNotFound)
	})
}

func testList(t *testing.T, newRepo Factory) {
	t.Run("pages through active records in order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var want []string
		for i := range 5 {
			path := fmt.Sprintf("uploads/%d_f.txt", i)
			_, err := repo.Create(ctx, newFile(path, "f.txt"))
			require.NoError(t, err)
			want = append(want, path)
		}

		var got []string
		cursor := ""
		for range 10 {
			page, err := repo.List(ctx, filekeep.ListQuery{Limit: 2, Cursor: cursor})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(page.Items), 2)
			for _, item := range page.Items {
				got = append(got, item.FilePath)
			}
			if page.NextCursor == "" {
				break
			}
			cursor = page.NextCursor
		}

		assert.ElementsMatch(t, want, got)
		assert.Len(t, got, len(want), "no record repeated across pages")
	})

	t.Run("skips deleted and filters by literal prefix", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		keep, err := repo.Create(ctx, newFile("uploads/1_keep.txt", "keep.txt"))
		require.NoError(t, err)
		gone, err := repo.Create(ctx, newFile("uploads/2_gone.txt", "gone.txt"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newFile("other/3_x.txt", "x.txt"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newFile("uploadsX/4_y.txt", "y.txt"))
		require.NoError(t, err)
		require.NoError(t, repo.MarkDeleted(ctx, gone.ID))

		page, err := repo.List(ctx, filekeep.ListQuery{PathPrefix: "uploads/"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, keep.ID, page.Items[0].ID)
		assert.Empty(t, page.NextCursor)

		page, err = repo.List(ctx, filekeep.ListQuery{PathPrefix: "upload_"})
		require.NoError(t, err)
		assert.Empty(t, page.Items, "underscore must not act as a wildcard")
	})

	t.Run("invalid cursor", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.List(context.Background(), filekeep.ListQuery{Cursor: "!!!"})
		assert.ErrorIs(t, err, filekeep.ErrInvalidInput)
	})
}

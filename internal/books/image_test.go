package books

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://mybucket.storage.googleapis.com/cover_images/5/a.png", PublicURL("mybucket", "cover_images/5/a.png"))
	assert.Equal(t, "https://mybucket.storage.googleapis.com/cover_images/5/my%20cover.png", PublicURL("mybucket", "cover_images/5/my cover.png"))
}

func TestUploadImage(t *testing.T) {
	t.Run("requires a saved book", func(t *testing.T) {
		repo, _, _, calls := newTestRepository()
		b := &Book{CoverImage: &CoverImage{Filename: "a.png", ContentType: "image/png", Data: []byte("x")}}
		assert.True(t, errors.Is(repo.UploadImage(context.Background(), b), ErrNotPersisted))
		assert.Empty(t, *calls)
	})

	t.Run("requires a cover image", func(t *testing.T) {
		repo, _, _, _ := newTestRepository()
		assert.True(t, errors.Is(repo.UploadImage(context.Background(), &Book{ID: 1}), ErrNoCoverImage))
	})
}

func TestDeleteImage(t *testing.T) {
	tests := []struct {
		name      string
		imageURL  string
		wantCalls []call
		wantURL   string
	}{
		{
			name:      "managed bucket",
			imageURL:  "https://mybucket.storage.googleapis.com/cover_images/5/a.png",
			wantCalls: []call{{op: "delete_file", path: "cover_images/5/a.png"}},
		},
		{
			name:      "literal space in stored url",
			imageURL:  "https://mybucket.storage.googleapis.com/cover_images/5/my cover.png",
			wantCalls: []call{{op: "delete_file", path: "cover_images/5/my cover.png"}},
		},
		{
			name:     "other bucket",
			imageURL: "https://otherbucket.storage.googleapis.com/cover_images/5/a.png",
			wantURL:  "https://otherbucket.storage.googleapis.com/cover_images/5/a.png",
		},
		{
			name: "no image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, _, calls := newTestRepository()
			b := &Book{ID: 5, ImageURL: tt.imageURL}

			require.NoError(t, repo.DeleteImage(context.Background(), b))
			if tt.wantCalls == nil {
				assert.Empty(t, *calls)
			} else {
				assert.Equal(t, tt.wantCalls, *calls)
			}
			assert.Equal(t, tt.wantURL, b.ImageURL)
		})
	}
}

func TestUpdateImageDeletesThenUploads(t *testing.T) {
	repo, _, _, calls := newTestRepository()
	b := &Book{
		ID:         5,
		ImageURL:   "https://mybucket.storage.googleapis.com/cover_images/5/a.png",
		CoverImage: &CoverImage{Filename: "b.png", ContentType: "image/png", Data: []byte("new")},
	}

	require.NoError(t, repo.UpdateImage(context.Background(), b))
	assert.Equal(t, []call{
		{op: "delete_file", path: "cover_images/5/a.png"},
		{op: "create_file", path: "cover_images/5/b.png"},
		{op: "save"},
	}, *calls)
	assert.Equal(t, "https://mybucket.storage.googleapis.com/cover_images/5/b.png", b.ImageURL)
}

func TestUpdateImageWithoutExistingImage(t *testing.T) {
	repo, _, _, calls := newTestRepository()
	b := &Book{ID: 2, CoverImage: &CoverImage{Filename: "c.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}}

	require.NoError(t, repo.UpdateImage(context.Background(), b))
	assert.Equal(t, []string{"create_file", "save"}, ops(*calls))
}

func TestRemoveImage(t *testing.T) {
	repo, store, _, calls := newTestRepository()
	b := &Book{ID: 5, Description: "d", ImageURL: "https://mybucket.storage.googleapis.com/cover_images/5/a.png"}

	require.NoError(t, repo.RemoveImage(context.Background(), b))
	assert.Equal(t, []string{"delete_file", "save"}, ops(*calls))
	assert.Empty(t, b.ImageURL)
	assert.Equal(t, map[string]any{AttrDescription: "d"}, store.rows[5])

	assert.True(t, errors.Is(repo.RemoveImage(context.Background(), b), ErrNoImage))
}

func TestUpdateImageUploadFailureClearsStoredURL(t *testing.T) {
	repo, store, bucket, calls := newTestRepository()
	oldURL := "https://mybucket.storage.googleapis.com/cover_images/5/a.png"
	store.rows[5] = map[string]any{AttrDescription: "d", AttrImageURL: oldURL}
	bucket.objects["cover_images/5/a.png"] = []byte("old")
	bucket.createErr = ErrUnavailable

	b := &Book{
		ID:          5,
		Description: "d",
		ImageURL:    oldURL,
		CoverImage:  &CoverImage{Filename: "b.png", ContentType: "image/png", Data: []byte("new")},
	}

	err := repo.UpdateImage(context.Background(), b)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, []call{
		{op: "delete_file", path: "cover_images/5/a.png"},
		{op: "create_file", path: "cover_images/5/b.png"},
		{op: "save"},
	}, *calls)
	assert.Empty(t, b.ImageURL)
	assert.Equal(t, map[string]any{AttrDescription: "d"}, store.rows[5])
	assert.Empty(t, bucket.objects)
}

func TestUpdateImageUploadFailureWithoutPriorImage(t *testing.T) {
	repo, _, bucket, calls := newTestRepository()
	bucket.createErr = ErrUnavailable
	b := &Book{ID: 2, CoverImage: &CoverImage{Filename: "c.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}}

	require.ErrorIs(t, repo.UpdateImage(context.Background(), b), ErrUnavailable)
	assert.Equal(t, []string{"create_file"}, ops(*calls))
}

func TestUploadImageRejectsInvalidCoverImage(t *testing.T) {
	tests := []struct {
		name string
		img  CoverImage
	}{
		{"path in file name", CoverImage{Filename: "../x.png", ContentType: "image/png", Data: []byte("x")}},
		{"not an image", CoverImage{Filename: "x.txt", ContentType: "text/plain", Data: []byte("x")}},
		{"empty", CoverImage{Filename: "x.png", ContentType: "image/png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, _, calls := newTestRepository()
			img := tt.img
			b := &Book{ID: 3, CoverImage: &img}

			err := repo.UploadImage(context.Background(), b)
			var fieldErrs FieldErrors
			require.True(t, errors.As(err, &fieldErrs))
			assert.Equal(t, "cover_image", fieldErrs[0].Field)
			assert.Empty(t, *calls)
		})
	}
}

package books

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// CoverImagePath is the object path a book's cover image is stored at.
func CoverImagePath(id int64, filename string) string {
	return "cover_images/" + strconv.FormatInt(id, 10) + "/" + filename
}

// PublicHost is the host a bucket's public objects are served from.
func PublicHost(bucket string) string {
	return bucket + ".storage.googleapis.com"
}

// PublicURL is the public address of the object at path in bucket.
func PublicURL(bucket, path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "https://" + PublicHost(bucket) + "/" + strings.Join(segments, "/")
}

// UploadImage stores the attached cover image as a public object, points
// ImageURL at it and saves the book.
func (r *Repository) UploadImage(ctx context.Context, b *Book) error {
	if b.CoverImage == nil {
		return ErrNoCoverImage
	}
	if !b.Persisted() {
		return ErrNotPersisted
	}
	if errs := b.CoverImage.validate(); len(errs) > 0 {
		return errs
	}

	img := b.CoverImage
	path := CoverImagePath(b.ID, img.Filename)
	file, err := r.bucket.CreateFile(ctx, bytes.NewReader(img.Data), path, img.ContentType, ACLPublicRead)
	if err != nil {
		return fmt.Errorf("failed to upload cover image: %w", err)
	}

	b.ImageURL = file.PublicURL
	b.CoverImage = nil
	slog.Info("Cover image uploaded", "book_id", b.ID, "path", path, "url", file.PublicURL)

	return r.write(ctx, b)
}

// DeleteImage removes the object ImageURL points at. URLs outside the
// configured bucket are left alone. ImageURL is cleared once the object is gone.
func (r *Repository) DeleteImage(ctx context.Context, b *Book) error {
	if b.ImageURL == "" {
		return nil
	}

	u, err := url.Parse(normalizeURL(b.ImageURL))
	if err != nil {
		return fmt.Errorf("failed to parse image url %q: %w", b.ImageURL, err)
	}

	host := PublicHost(r.bucket.Name())
	if u.Host != host {
		slog.Warn("Image is outside the managed bucket, not deleting", "book_id", b.ID, "url", b.ImageURL, "bucket_host", host)
		return nil
	}

	path := strings.TrimPrefix(u.Path, "/")
	if err := r.bucket.DeleteFile(ctx, path); err != nil {
		return fmt.Errorf("failed to delete cover image %s: %w", path, err)
	}

	b.ImageURL = ""
	slog.Info("Cover image deleted", "book_id", b.ID, "path", path)
	return nil
}

// UpdateImage replaces the current image with the attached cover image. The
// old object is deleted before the new one is uploaded. If the upload fails
// after the delete, the book is saved without an image URL.
func (r *Repository) UpdateImage(ctx context.Context, b *Book) error {
	if b.CoverImage == nil {
		return ErrNoCoverImage
	}
	hadImage := b.ImageURL != ""
	if err := r.DeleteImage(ctx, b); err != nil {
		return err
	}

	err := r.UploadImage(ctx, b)
	if err != nil && hadImage && b.ImageURL == "" {
		slog.Warn("Cover image upload failed after delete, clearing image url", "book_id", b.ID, "err", err)
		if werr := r.write(ctx, b); werr != nil {
			return errors.Join(err, werr)
		}
	}
	return err
}

// RemoveImage deletes the image and saves the book without an image URL.
func (r *Repository) RemoveImage(ctx context.Context, b *Book) error {
	if b.ImageURL == "" {
		return ErrNoImage
	}
	if err := r.DeleteImage(ctx, b); err != nil {
		return err
	}
	b.ImageURL = ""
	return r.write(ctx, b)
}

// Package gcs implements books.ObjectStore on the Cloud Storage JSON API.
package gcs

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/gcperr"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

// Client hands out bucket handles sharing one storage service.
type Client struct {
	service *storage.Service
}

// New creates the storage service once for the life of the process.
func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}
	return &Client{service: service}, nil
}

func (c *Client) Bucket(name string) books.Bucket {
	return &Bucket{service: c.service, name: name}
}

// Bucket is a handle on one Cloud Storage bucket.
type Bucket struct {
	service *storage.Service
	name    string
}

func (b *Bucket) Name() string {
	return b.name
}

func (b *Bucket) CreateFile(ctx context.Context, data io.Reader, path, contentType string, acl books.ACL) (*books.File, error) {
	obj := &storage.Object{
		Name:        path,
		ContentType: contentType,
	}

	call := b.service.Objects.Insert(b.name, obj).
		Media(data, googleapi.ContentType(contentType)).
		Context(ctx)
	if acl != "" {
		call = call.PredefinedAcl(string(acl))
	}

	created, err := call.Do()
	if err != nil {
		return nil, gcperr.Classify(err)
	}

	slog.Debug("Object created", "bucket", b.name, "path", created.Name, "size", created.Size)
	return &books.File{
		Path:        created.Name,
		ContentType: created.ContentType,
		PublicURL:   books.PublicURL(b.name, created.Name),
	}, nil
}

func (b *Bucket) DeleteFile(ctx context.Context, path string) error {
	if err := b.service.Objects.Delete(b.name, path).Context(ctx).Do(); err != nil {
		return gcperr.Classify(err)
	}
	return nil
}

package books

import (
	"context"
	"io"
)

// DocumentStore persists entities keyed by kind and integer id.
type DocumentStore interface {
	// RunQuery returns up to limit entities of kind, starting at cursor, and the
	// cursor positioned after the last returned entity. A limit of zero means no limit.
	RunQuery(ctx context.Context, kind string, limit int, cursor string) ([]Entity, string, error)
	// Lookup returns (nil, nil) when no entity exists for key.
	Lookup(ctx context.Context, key Key) (*Entity, error)
	// Save writes the entity and returns its key. An incomplete key is allocated an id.
	Save(ctx context.Context, e Entity) (Key, error)
	Delete(ctx context.Context, key Key) error
}

// ACL is a predefined access rule applied to a newly created object.
type ACL string

// ACLPublicRead makes an object readable by anyone through its public URL.
const ACLPublicRead ACL = "publicRead"

// File describes an object created in a bucket.
type File struct {
	Path        string
	ContentType string
	PublicURL   string
}

// Bucket is a handle on a single object-store bucket.
type Bucket interface {
	Name() string
	CreateFile(ctx context.Context, data io.Reader, path, contentType string, acl ACL) (*File, error)
	DeleteFile(ctx context.Context, path string) error
}

// ObjectStore hands out bucket handles.
type ObjectStore interface {
	Bucket(name string) Bucket
}

// TextAnnotation is a single piece of text detected in an image.
type TextAnnotation struct {
	Description string `json:"description"`
}

// TextResponse holds the annotations detected for one image.
type TextResponse struct {
	TextAnnotations []TextAnnotation `json:"textAnnotations"`
}

// TextDetector runs OCR against a publicly reachable image.
type TextDetector interface {
	DetectText(ctx context.Context, imageURL string, maxResults int) ([]TextResponse, error)
}

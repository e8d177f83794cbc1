package memstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
)

// Object is a stored blob with its metadata.
type Object struct {
	Data        []byte
	ContentType string
	ACL         books.ACL
}

// Objects is an ObjectStore whose buckets live in memory.
type Objects struct {
	buckets map[string]*Bucket
	mu      sync.Mutex
}

func NewObjects() *Objects {
	return &Objects{buckets: make(map[string]*Bucket)}
}

// Bucket returns the named bucket, creating it on first use.
func (o *Objects) Bucket(name string) books.Bucket {
	return o.bucket(name)
}

func (o *Objects) bucket(name string) *Bucket {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.buckets[name]
	if !ok {
		b = &Bucket{name: name, objects: make(map[string]Object)}
		o.buckets[name] = b
	}
	return b
}

// Bucket holds objects by path. Public URLs use the same form as Cloud Storage.
type Bucket struct {
	name    string
	objects map[string]Object
	mu      sync.RWMutex
}

func (b *Bucket) Name() string {
	return b.name
}

func (b *Bucket) CreateFile(ctx context.Context, data io.Reader, path, contentType string, acl books.ACL) (*books.File, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = Object{Data: body, ContentType: contentType, ACL: acl}

	return &books.File{
		Path:        path,
		ContentType: contentType,
		PublicURL:   books.PublicURL(b.name, path),
	}, nil
}

func (b *Bucket) DeleteFile(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.objects[path]; !exists {
		return fmt.Errorf("object %s: %w", path, books.ErrNotFound)
	}
	delete(b.objects, path)
	return nil
}

// Get returns the object stored at path.
func (b *Bucket) Get(path string) (Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, exists := b.objects[path]
	return obj, exists
}

// Paths returns a copy of the stored object paths.
func (b *Bucket) Paths() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	paths := make([]string, 0, len(b.objects))
	for p := range b.objects {
		paths = append(paths, p)
	}
	return paths
}

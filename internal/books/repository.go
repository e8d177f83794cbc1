package books

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultPageSize is used by Query when no limit is given.
const DefaultPageSize = 10

// Repository reads and writes books through the injected collaborators.
type Repository struct {
	store    DocumentStore
	bucket   Bucket
	detector TextDetector
	pageSize int
}

// NewRepository creates a repository. detector may be nil if Analyze is never called.
func NewRepository(store DocumentStore, bucket Bucket, detector TextDetector) *Repository {
	return &Repository{
		store:    store,
		bucket:   bucket,
		detector: detector,
		pageSize: DefaultPageSize,
	}
}

// WithPageSize overrides the default page size used by Query.
func (r *Repository) WithPageSize(n int) *Repository {
	if n > 0 {
		r.pageSize = n
	}
	return r
}

// BucketName returns the name of the bucket cover images are stored in.
func (r *Repository) BucketName() string {
	return r.bucket.Name()
}

// QueryOptions controls a single page of Query.
type QueryOptions struct {
	Limit  int
	Cursor string
}

// Page is one page of books. Cursor is set only when the page was full,
// meaning more books may follow.
type Page struct {
	Books  []*Book `json:"books"`
	Cursor string  `json:"cursor,omitempty"`
}

// Query lists books one page at a time.
func (r *Repository) Query(ctx context.Context, opts QueryOptions) (*Page, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = r.pageSize
	}

	entities, next, err := r.store.RunQuery(ctx, Kind, limit, opts.Cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}

	page := &Page{Books: make([]*Book, 0, len(entities))}
	for _, e := range entities {
		page.Books = append(page.Books, FromEntity(e))
	}
	if len(page.Books) == limit {
		page.Cursor = next
	}

	slog.Debug("Queried books", "limit", limit, "count", len(page.Books), "more", page.Cursor != "")
	return page, nil
}

// FindByID looks up a single book. The bool is false when no book has that id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Book, bool, error) {
	e, err := r.store.Lookup(ctx, Key{Kind: Kind, ID: id})
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up book %d: %w", id, err)
	}
	if e == nil {
		return nil, false, nil
	}
	return FromEntity(*e), true, nil
}

// Save validates and writes the book, assigning its id on first save. It
// returns false without touching any remote state when validation fails.
// An attached cover image is uploaded afterwards, which writes the entity a
// second time with the new image URL.
func (r *Repository) Save(ctx context.Context, b *Book) (bool, error) {
	if errs := b.Validate(); len(errs) > 0 {
		slog.Debug("Book failed validation", "book_id", b.ID, "errors", errs.Error())
		return false, nil
	}

	if err := r.write(ctx, b); err != nil {
		return false, err
	}

	if b.CoverImage != nil {
		if err := r.UploadImage(ctx, b); err != nil {
			return false, err
		}
	}

	return true, nil
}

// Update applies attrs and saves the whole book again.
func (r *Repository) Update(ctx context.Context, b *Book, attrs map[string]string) (bool, error) {
	if err := b.Apply(attrs); err != nil {
		return false, err
	}
	return r.Save(ctx, b)
}

// Destroy deletes the book's image, if any, and then the book itself. A
// failure after the image is gone leaves the entity without an image.
func (r *Repository) Destroy(ctx context.Context, b *Book) error {
	if !b.Persisted() {
		return ErrNotPersisted
	}

	if b.ImageURL != "" {
		if err := r.DeleteImage(ctx, b); err != nil {
			return err
		}
	}

	if err := r.store.Delete(ctx, Key{Kind: Kind, ID: b.ID}); err != nil {
		return fmt.Errorf("failed to delete book %d: %w", b.ID, err)
	}

	slog.Info("Book deleted", "book_id", b.ID)
	return nil
}

// write persists the entity without validation and records the assigned id.
func (r *Repository) write(ctx context.Context, b *Book) error {
	key, err := r.store.Save(ctx, ToEntity(b))
	if err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}
	if b.ID == 0 {
		b.ID = key.ID
	}
	slog.Info("Book saved", "book_id", b.ID)
	return nil
}

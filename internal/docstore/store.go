// Package docstore implements books.DocumentStore on Cloud Datastore.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"cloud.google.com/go/datastore"
	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/gcperr"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// maxIndexedStringBytes is the largest string Datastore will index.
const maxIndexedStringBytes = 1500

// Store reads and writes entities in one Datastore namespace.
type Store struct {
	client    *datastore.Client
	namespace string
}

// New connects to Datastore. The client is created once and shared by every call.
func New(ctx context.Context, projectID, namespace string, opts ...option.ClientOption) (*Store, error) {
	client, err := datastore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	slog.Debug("Datastore client created", "project", projectID, "namespace", namespace)
	return &Store{client: client, namespace: namespace}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) RunQuery(ctx context.Context, kind string, limit int, cursor string) ([]books.Entity, string, error) {
	q := datastore.NewQuery(kind).Namespace(s.namespace)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if cursor != "" {
		c, err := datastore.DecodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", books.ErrInvalidCursor, err)
		}
		q = q.Start(c)
	}

	var entities []books.Entity
	it := s.client.Run(ctx, q)
	for {
		var props datastore.PropertyList
		key, err := it.Next(&props)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, "", gcperr.Classify(err)
		}
		entities = append(entities, books.Entity{
			Key:        books.Key{Kind: key.Kind, ID: key.ID},
			Properties: fromProperties(props),
		})
	}

	next, err := it.Cursor()
	if err != nil {
		return nil, "", gcperr.Classify(err)
	}
	return entities, next.String(), nil
}

func (s *Store) Lookup(ctx context.Context, key books.Key) (*books.Entity, error) {
	var props datastore.PropertyList
	err := s.client.Get(ctx, s.key(key), &props)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return nil, nil
	}
	if err != nil {
		return nil, gcperr.Classify(err)
	}
	return &books.Entity{Key: key, Properties: fromProperties(props)}, nil
}

func (s *Store) Save(ctx context.Context, e books.Entity) (books.Key, error) {
	props := toProperties(e.Properties)
	key, err := s.client.Put(ctx, s.key(e.Key), &props)
	if err != nil {
		return books.Key{}, gcperr.Classify(err)
	}
	return books.Key{Kind: key.Kind, ID: key.ID}, nil
}

func (s *Store) Delete(ctx context.Context, key books.Key) error {
	if err := s.client.Delete(ctx, s.key(key)); err != nil {
		return gcperr.Classify(err)
	}
	return nil
}

func (s *Store) key(k books.Key) *datastore.Key {
	var key *datastore.Key
	if k.Incomplete() {
		key = datastore.IncompleteKey(k.Kind, nil)
	} else {
		key = datastore.IDKey(k.Kind, k.ID, nil)
	}
	key.Namespace = s.namespace
	return key
}

// toProperties orders properties by name and leaves long strings unindexed.
func toProperties(m map[string]any) datastore.PropertyList {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make(datastore.PropertyList, 0, len(m))
	for _, name := range names {
		p := datastore.Property{Name: name, Value: m[name]}
		if s, ok := m[name].(string); ok && len(s) > maxIndexedStringBytes {
			p.NoIndex = true
		}
		props = append(props, p)
	}
	return props
}

func fromProperties(props datastore.PropertyList) map[string]any {
	m := make(map[string]any, len(props))
	for _, p := range props {
		m[p.Name] = p.Value
	}
	return m
}

// Package memstore keeps entities and objects in process memory. It backs
// the "memory" backend and tests.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
)

// Store is a DocumentStore over per-kind maps. Ids are allocated sequentially
// and queries return entities in id order.
type Store struct {
	kinds  map[string]map[int64]map[string]any
	nextID int64
	mu     sync.RWMutex
}

func New() *Store {
	return &Store{
		kinds:  make(map[string]map[int64]map[string]any),
		nextID: 1,
	}
}

func (s *Store) RunQuery(ctx context.Context, kind string, limit int, cursor string) ([]books.Entity, string, error) {
	pos, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", books.ErrInvalidCursor, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.kinds[kind]
	ids := slices.Sorted(maps.Keys(rows))

	result := []books.Entity{}
	for _, id := range ids {
		if id <= pos.AfterID {
			continue
		}
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, books.Entity{
			Key:        books.Key{Kind: kind, ID: id},
			Properties: maps.Clone(rows[id]),
		})
	}

	next := pos
	if len(result) > 0 {
		next.AfterID = result[len(result)-1].Key.ID
	}
	return result, encodeCursor(next), nil
}

func (s *Store) Lookup(ctx context.Context, key books.Key) (*books.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	props, exists := s.kinds[key.Kind][key.ID]
	if !exists {
		return nil, nil
	}
	return &books.Entity{Key: key, Properties: maps.Clone(props)}, nil
}

func (s *Store) Save(ctx context.Context, e books.Entity) (books.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.Key
	if key.Incomplete() {
		key.ID = s.nextID
		s.nextID++
	} else if key.ID >= s.nextID {
		s.nextID = key.ID + 1
	}

	rows, ok := s.kinds[key.Kind]
	if !ok {
		rows = make(map[int64]map[string]any)
		s.kinds[key.Kind] = rows
	}
	rows[key.ID] = maps.Clone(e.Properties)
	return key, nil
}

func (s *Store) Delete(ctx context.Context, key books.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kinds[key.Kind], key.ID)
	return nil
}

// Len returns the number of entities stored under kind.
func (s *Store) Len(kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.kinds[kind])
}

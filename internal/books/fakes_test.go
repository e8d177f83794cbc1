package books

import (
	"context"
	"io"
	"sort"
	"strconv"
)

// call records one remote operation in the order it was issued.
type call struct {
	op   string
	path string
}

// fakeStore is a DocumentStore over a map. Cursors are the offset into the id-ordered rows.
type fakeStore struct {
	rows   map[int64]map[string]any
	nextID int64
	calls  *[]call
	err    error
}

func newFakeStore(calls *[]call) *fakeStore {
	return &fakeStore{rows: map[int64]map[string]any{}, nextID: 1, calls: calls}
}

func (s *fakeStore) RunQuery(_ context.Context, kind string, limit int, cursor string) ([]Entity, string, error) {
	*s.calls = append(*s.calls, call{op: "query"})
	if s.err != nil {
		return nil, "", s.err
	}
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
		start = n
	}
	var out []Entity
	i := start
	for ; i < len(ids) && (limit == 0 || len(out) < limit); i++ {
		out = append(out, Entity{Key: Key{Kind: kind, ID: ids[i]}, Properties: s.rows[ids[i]]})
	}
	return out, strconv.Itoa(i), nil
}

func (s *fakeStore) Lookup(_ context.Context, key Key) (*Entity, error) {
	*s.calls = append(*s.calls, call{op: "lookup"})
	if s.err != nil {
		return nil, s.err
	}
	props, ok := s.rows[key.ID]
	if !ok {
		return nil, nil
	}
	return &Entity{Key: key, Properties: props}, nil
}

func (s *fakeStore) Save(_ context.Context, e Entity) (Key, error) {
	*s.calls = append(*s.calls, call{op: "save"})
	if s.err != nil {
		return Key{}, s.err
	}
	key := e.Key
	if key.Incomplete() {
		key.ID = s.nextID
		s.nextID++
	}
	s.rows[key.ID] = e.Properties
	return key, nil
}

func (s *fakeStore) Delete(_ context.Context, key Key) error {
	*s.calls = append(*s.calls, call{op: "delete"})
	if s.err != nil {
		return s.err
	}
	delete(s.rows, key.ID)
	return nil
}

type fakeBucket struct {
	name    string
	objects map[string][]byte
	calls   *[]call
	err     error

	// createErr fails CreateFile only.
	createErr error
}

func newFakeBucket(name string, calls *[]call) *fakeBucket {
	return &fakeBucket{name: name, objects: map[string][]byte{}, calls: calls}
}

func (b *fakeBucket) Name() string { return b.name }

func (b *fakeBucket) CreateFile(_ context.Context, data io.Reader, path, contentType string, _ ACL) (*File, error) {
	*b.calls = append(*b.calls, call{op: "create_file", path: path})
	if b.err != nil {
		return nil, b.err
	}
	if b.createErr != nil {
		return nil, b.createErr
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}
	b.objects[path] = body
	return &File{Path: path, ContentType: contentType, PublicURL: PublicURL(b.name, path)}, nil
}

func (b *fakeBucket) DeleteFile(_ context.Context, path string) error {
	*b.calls = append(*b.calls, call{op: "delete_file", path: path})
	if b.err != nil {
		return b.err
	}
	delete(b.objects, path)
	return nil
}

type fakeDetector struct {
	responses  []TextResponse
	err        error
	imageURL   string
	maxResults int
}

func (d *fakeDetector) DetectText(_ context.Context, imageURL string, maxResults int) ([]TextResponse, error) {
	d.imageURL = imageURL
	d.maxResults = maxResults
	return d.responses, d.err
}

func ops(calls []call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.op
	}
	return out
}

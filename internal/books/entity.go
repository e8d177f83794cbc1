package books

// Key identifies an entity. A zero ID is an incomplete key that the store
// completes on save.
type Key struct {
	Kind string
	ID   int64
}

// Incomplete reports whether the key still needs an id.
func (k Key) Incomplete() bool {
	return k.ID == 0
}

// Entity is a keyed bag of properties as held by the document store.
type Entity struct {
	Key        Key
	Properties map[string]any
}

// ToEntity maps a book to an entity. Only non-empty fields become properties.
func ToEntity(b *Book) Entity {
	e := Entity{
		Key:        Key{Kind: Kind, ID: b.ID},
		Properties: make(map[string]any, 2),
	}
	if b.ImageURL != "" {
		e.Properties[AttrImageURL] = b.ImageURL
	}
	if b.Description != "" {
		e.Properties[AttrDescription] = b.Description
	}
	return e
}

// FromEntity maps an entity to a book. Properties without a matching settable
// attribute, or with a non-string value, are ignored.
func FromEntity(e Entity) *Book {
	b := &Book{ID: e.Key.ID}
	for name, value := range e.Properties {
		set, ok := setters[name]
		if !ok {
			continue
		}
		if s, ok := value.(string); ok {
			set(b, s)
		}
	}
	return b
}

package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		book  Book
		props []string
	}{
		{
			name:  "all fields",
			book:  Book{ID: 7, Description: "a novel", ImageURL: "https://b.storage.googleapis.com/cover_images/7/x.png"},
			props: []string{AttrDescription, AttrImageURL},
		},
		{
			name:  "description only",
			book:  Book{ID: 8, Description: "x"},
			props: []string{AttrDescription},
		},
		{
			name: "no fields",
			book: Book{ID: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ToEntity(&tt.book)
			assert.Equal(t, Key{Kind: Kind, ID: tt.book.ID}, e.Key)

			var names []string
			for _, name := range SettableAttributes() {
				if _, ok := e.Properties[name]; ok {
					names = append(names, name)
				}
			}
			assert.Equal(t, tt.props, names)

			assert.Equal(t, &tt.book, FromEntity(e))
		})
	}
}

func TestToEntityNewBookHasIncompleteKey(t *testing.T) {
	e := ToEntity(&Book{Description: "x"})
	assert.True(t, e.Key.Incomplete())
}

func TestFromEntityIgnoresUnknownProperties(t *testing.T) {
	e := Entity{
		Key: Key{Kind: Kind, ID: 4},
		Properties: map[string]any{
			AttrDescription: "kept",
			"title":         "not a book field",
			"published":     int64(1999),
			AttrImageURL:    int64(12),
		},
	}

	assert.Equal(t, &Book{ID: 4, Description: "kept"}, FromEntity(e))
}

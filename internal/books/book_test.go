package books

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		book   Book
		fields []string
	}{
		{
			name: "empty book is valid",
			book: Book{},
		},
		{
			name: "public image url",
			book: Book{ImageURL: "https://mybucket.storage.googleapis.com/cover_images/1/a b.png"},
		},
		{
			name:   "relative image url",
			book:   Book{ImageURL: "cover_images/1/a.png"},
			fields: []string{AttrImageURL},
		},
		{
			name:   "non http scheme",
			book:   Book{ImageURL: "gs://mybucket/cover_images/1/a.png"},
			fields: []string{AttrImageURL},
		},
		{
			name:   "description too long",
			book:   Book{Description: strings.Repeat("x", MaxDescriptionBytes+1)},
			fields: []string{AttrDescription},
		},
		{
			name: "valid cover image",
			book: Book{CoverImage: &CoverImage{Filename: "a.png", ContentType: "image/png", Data: []byte{1}}},
		},
		{
			name:   "cover image with path in name and wrong type",
			book:   Book{CoverImage: &CoverImage{Filename: "../a.png", ContentType: "text/plain", Data: []byte{1}}},
			fields: []string{"cover_image", "cover_image"},
		},
		{
			name:   "empty cover image",
			book:   Book{CoverImage: &CoverImage{Filename: "a.png", ContentType: "image/png"}},
			fields: []string{"cover_image"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.book.Validate()
			var got []string
			for _, e := range errs {
				got = append(got, e.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestApply(t *testing.T) {
	t.Run("known attributes", func(t *testing.T) {
		b := &Book{ID: 3}
		err := b.Apply(map[string]string{AttrDescription: "d", AttrImageURL: "https://x.storage.googleapis.com/a"})
		require.NoError(t, err)
		assert.Equal(t, &Book{ID: 3, Description: "d", ImageURL: "https://x.storage.googleapis.com/a"}, b)
	})

	t.Run("unknown attribute rejects the whole update", func(t *testing.T) {
		b := &Book{Description: "before"}
		err := b.Apply(map[string]string{AttrDescription: "after", "id": "9"})
		assert.True(t, errors.Is(err, ErrUnknownAttribute))
		assert.Equal(t, "before", b.Description)
		assert.Zero(t, b.ID)
	})
}

func TestSettableAttributes(t *testing.T) {
	assert.Equal(t, []string{AttrDescription, AttrImageURL}, SettableAttributes())
}

func TestFieldErrorsError(t *testing.T) {
	errs := FieldErrors{{Field: "a", Message: "is bad"}, {Field: "b", Message: "is worse"}}
	assert.Equal(t, "validation failed: a is bad; b is worse", errs.Error())
}

package books

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Kind is the document store kind books are saved under.
const Kind = "Book"

// Settable attribute names. They double as the entity property names.
const (
	AttrDescription = "description"
	AttrImageURL    = "image_url"
)

// MaxDescriptionBytes keeps a description well inside the 1 MiB entity limit.
const MaxDescriptionBytes = 1000 * 1000

// Book is a catalogued book with an optional cover image.
type Book struct {
	ID          int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url,omitempty"`

	// CoverImage is only set while a new image is waiting to be uploaded.
	CoverImage *CoverImage `json:"-" yaml:"-"`
}

// CoverImage is an uploaded image file that has not been stored yet.
type CoverImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Persisted reports whether the book has been assigned an id by the store.
func (b *Book) Persisted() bool {
	return b.ID != 0
}

var setters = map[string]func(*Book, string){
	AttrDescription: func(b *Book, v string) { b.Description = v },
	AttrImageURL:    func(b *Book, v string) { b.ImageURL = v },
}

// SettableAttributes returns the attribute names accepted by Apply, sorted.
func SettableAttributes() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply assigns attrs onto the book. Nothing is assigned if any name is not settable.
func (b *Book) Apply(attrs map[string]string) error {
	for name := range attrs {
		if _, ok := setters[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
		}
	}
	for name, value := range attrs {
		setters[name](b, value)
	}
	return nil
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Message
}

// FieldErrors is the result of Validate. It is empty when the book is valid.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks the book before it is written.
func (b *Book) Validate() FieldErrors {
	var errs FieldErrors

	if len(b.Description) > MaxDescriptionBytes {
		errs = append(errs, FieldError{AttrDescription, fmt.Sprintf("is longer than %d bytes", MaxDescriptionBytes)})
	}

	if b.ImageURL != "" {
		u, err := url.Parse(normalizeURL(b.ImageURL))
		switch {
		case err != nil:
			errs = append(errs, FieldError{AttrImageURL, "is not a valid URL"})
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, FieldError{AttrImageURL, "must be an http or https URL"})
		case u.Host == "":
			errs = append(errs, FieldError{AttrImageURL, "must include a host"})
		}
	}

	if b.CoverImage != nil {
		errs = append(errs, b.CoverImage.validate()...)
	}

	return errs
}

func (img *CoverImage) validate() FieldErrors {
	var errs FieldErrors
	if img.Filename == "" || strings.ContainsAny(img.Filename, `/\`) {
		errs = append(errs, FieldError{"cover_image", "must have a plain file name"})
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		errs = append(errs, FieldError{"cover_image", "must have an image content type"})
	}
	if len(img.Data) == 0 {
		errs = append(errs, FieldError{"cover_image", "is empty"})
	}
	return errs
}

// normalizeURL percent-encodes literal spaces so stored URLs with spaces still parse.
func normalizeURL(raw string) string {
	return strings.ReplaceAll(raw, " ", "%20")
}

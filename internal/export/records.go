// Package export writes books to JSONL, YAML or Parquet files and reads them back.
package export

import (
	"github.com/lehigh-university-libraries/bookshelf/internal/books"
)

// Record is the flat, file-friendly form of a book.
type Record struct {
	ID          int64  `json:"id" yaml:"id" parquet:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" parquet:"description"`
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url,omitempty" parquet:"image_url"`
}

// FromBook converts a book to a record.
func FromBook(b *books.Book) Record {
	return Record{ID: b.ID, Description: b.Description, ImageURL: b.ImageURL}
}

// Formats supported by NewWriter and Load.
const (
	FormatJSONL   = "jsonl"
	FormatYAML    = "yaml"
	FormatParquet = "parquet"
)

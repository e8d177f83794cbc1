package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Writer receives records in batches. Close must be called to flush the file.
type Writer interface {
	Write(records []Record) error
	Close() error
}

// NewWriter returns a writer for format on w.
func NewWriter(w io.Writer, format string) (Writer, error) {
	switch format {
	case FormatJSONL:
		return &jsonlWriter{enc: json.NewEncoder(w)}, nil
	case FormatYAML:
		return &yamlWriter{w: w}, nil
	case FormatParquet:
		return &parquetWriter{pw: parquet.NewGenericWriter[Record](w)}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s (supported: jsonl, yaml, parquet)", format)
	}
}

type jsonlWriter struct {
	enc *json.Encoder
}

func (j *jsonlWriter) Write(records []Record) error {
	for _, r := range records {
		if err := j.enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", r.ID, err)
		}
	}
	return nil
}

func (j *jsonlWriter) Close() error { return nil }

// yamlWriter buffers everything so the file is a single document.
type yamlWriter struct {
	w       io.Writer
	records []Record
}

type yamlDocument struct {
	Books []Record `yaml:"books"`
}

func (y *yamlWriter) Write(records []Record) error {
	y.records = append(y.records, records...)
	return nil
}

func (y *yamlWriter) Close() error {
	enc := yaml.NewEncoder(y.w)
	if err := enc.Encode(yamlDocument{Books: y.records}); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

type parquetWriter struct {
	pw *parquet.GenericWriter[Record]
}

func (p *parquetWriter) Write(records []Record) error {
	if _, err := p.pw.Write(records); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	return nil
}

func (p *parquetWriter) Close() error {
	return p.pw.Close()
}

// Export walks every page of books in the repository into w.
func Export(ctx context.Context, repo *books.Repository, w Writer, pageSize int) (int, error) {
	total := 0
	cursor := ""
	for {
		page, err := repo.Query(ctx, books.QueryOptions{Limit: pageSize, Cursor: cursor})
		if err != nil {
			return total, err
		}

		records := make([]Record, 0, len(page.Books))
		for _, b := range page.Books {
			records = append(records, FromBook(b))
		}
		if err := w.Write(records); err != nil {
			return total, err
		}
		total += len(records)
		slog.Debug("Exported page", "books", len(records), "total", total)

		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}

	if err := w.Close(); err != nil {
		return total, fmt.Errorf("failed to finish export: %w", err)
	}
	return total, nil
}

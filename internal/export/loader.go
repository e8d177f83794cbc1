package export

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/parquet-go/parquet-go"
)

// Load reads records from a JSONL or Parquet file
func Load(path string) ([]Record, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".parquet":
		return loadParquet(path)
	case ".jsonl", ".json":
		return loadJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func loadJSONL(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)

	// Descriptions can be long OCR dumps
	const maxCapacity = 2 * 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading import file: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)
	return records, nil
}

func loadParquet(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	var records []Record
	rows := make([]Record, 128)
	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return records, nil
}

// Import saves each record as a new book. Image URLs outside the repository's
// bucket are dropped so every stored URL stays deletable.
func Import(ctx context.Context, repo *books.Repository, records []Record) (int, error) {
	host := books.PublicHost(repo.BucketName())
	imported := 0

	for i, r := range records {
		b := &books.Book{Description: r.Description}
		if r.ImageURL != "" {
			if u, err := url.Parse(strings.ReplaceAll(r.ImageURL, " ", "%20")); err == nil && u.Host == host {
				b.ImageURL = r.ImageURL
			} else {
				slog.Warn("Dropping image url outside the bucket", "row", i, "url", r.ImageURL)
			}
		}

		ok, err := repo.Save(ctx, b)
		if err != nil {
			return imported, fmt.Errorf("failed to import row %d: %w", i, err)
		}
		if !ok {
			slog.Warn("Skipping invalid row", "row", i, "errors", b.Validate().Error())
			continue
		}
		imported++
	}

	return imported, nil
}

package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
)

// MaxImageBytes caps how much of an image is read.
const MaxImageBytes = 10 * 1024 * 1024

// Fetcher loads cover images from URLs or local files
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads src as a cover image. src is fetched when it is an http(s) URL
// and read from disk otherwise.
func (f *Fetcher) Load(ctx context.Context, src string) (*books.CoverImage, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return f.Fetch(ctx, src)
	}
	return ReadFile(src)
}

// Fetch downloads an image over HTTP
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (*books.CoverImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	filename := "image.jpg"
	if u, err := url.Parse(imageURL); err == nil {
		if base := path.Base(u.Path); base != "/" && base != "." {
			filename = base
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}

	slog.Debug("Downloaded image", "url", imageURL, "bytes", len(data), "content_type", contentType)
	return &books.CoverImage{Filename: filename, ContentType: contentType, Data: data}, nil
}

// ReadFile reads an image from disk and sniffs its content type
func ReadFile(name string) (*books.CoverImage, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := readLimited(file)
	if err != nil {
		return nil, err
	}

	return &books.CoverImage{
		Filename:    filepath.Base(name),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// ReadUpload reads an uploaded multipart file, trusting the declared type only
// when it names an image.
func ReadUpload(r io.Reader, filename, declaredType string) (*books.CoverImage, error) {
	data, err := readLimited(r)
	if err != nil {
		return nil, err
	}
	contentType := declaredType
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	return &books.CoverImage{Filename: filepath.Base(filename), ContentType: contentType, Data: data}, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image too large (max %d bytes)", MaxImageBytes)
	}
	return data, nil
}

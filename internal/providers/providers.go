package providers

import (
	"context"
	"strings"
)

// Config represents one transcription request to a vision-capable LLM provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Image       []byte
	ImageType   string // MIME type, e.g. "image/png"
}

// Provider defines the interface for an LLM provider that can read images
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// ImageFormat returns the subtype of an image MIME type ("image/png" -> "png")
func ImageFormat(mimeType string) string {
	format := strings.TrimPrefix(mimeType, "image/")
	if i := strings.IndexByte(format, ';'); i >= 0 {
		format = format[:i]
	}
	if format == "" || format == mimeType {
		return "jpeg"
	}
	return format
}

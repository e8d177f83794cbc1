package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/images"
	"github.com/lehigh-university-libraries/bookshelf/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vision "google.golang.org/api/vision/v1"
)

type stubProvider struct {
	text string
	got  providers.Config
}

func (p *stubProvider) ExtractText(_ context.Context, config providers.Config) (string, error) {
	p.got = config
	return p.text, nil
}

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "words", text: " FN Jane\nLN Doe \n", want: []string{"FN Jane\nLN Doe", "FN", "Jane", "LN", "Doe"}},
		{name: "blank", text: "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := books.FlattenText([]books.TextResponse{annotate(tt.text)})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromVision(t *testing.T) {
	resp := &vision.BatchAnnotateImagesResponse{
		Responses: []*vision.AnnotateImageResponse{{
			TextAnnotations: []*vision.EntityAnnotation{
				{Description: "FN Jane"},
				{Description: "FN"},
				{Description: "Jane"},
			},
		}},
	}

	got, err := fromVision(resp)
	require.NoError(t, err)
	assert.Equal(t, []string{"FN Jane", "FN", "Jane"}, books.FlattenText(got))
}

func TestFromVisionImageError(t *testing.T) {
	resp := &vision.BatchAnnotateImagesResponse{
		Responses: []*vision.AnnotateImageResponse{{
			Error: &vision.Status{Code: 7, Message: "We're not allowed to access the URL"},
		}},
	}

	_, err := fromVision(resp)
	assert.True(t, errors.Is(err, books.ErrPermissionDenied))
}

func TestDetectTextWithLLM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n"))
	}))
	defer server.Close()

	llm := &stubProvider{text: "FN Jane LN Doe"}
	s := NewLLMService(ProviderOllama, "llava", llm, images.NewFetcher())

	got, err := s.DetectText(context.Background(), server.URL+"/cover.png", 1)
	require.NoError(t, err)

	tokens := books.FlattenText(got)
	first, ok := books.TryExtractField(tokens, books.FirstNameLabel)
	assert.True(t, ok)
	assert.Equal(t, "Jane", first)
	assert.Equal(t, "image/png", llm.got.ImageType)
	assert.Equal(t, "llava", llm.got.Model)
}

func TestNewServiceRejectsUnknownProvider(t *testing.T) {
	_, err := NewService(context.Background(), Config{Provider: "tesseract"})
	assert.ErrorContains(t, err, "unsupported OCR provider")
}

func TestNewServiceDefaultsModel(t *testing.T) {
	s, err := NewService(context.Background(), Config{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel(ProviderOllama), s.model)
	assert.Equal(t, ProviderOllama, s.Provider())
}

// Package ocr detects text in cover images, either with Cloud Vision or by
// asking a vision-capable LLM for a verbatim transcription.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/gcperr"
	"github.com/lehigh-university-libraries/bookshelf/internal/gemini"
	"github.com/lehigh-university-libraries/bookshelf/internal/images"
	"github.com/lehigh-university-libraries/bookshelf/internal/ollama"
	"github.com/lehigh-university-libraries/bookshelf/internal/openai"
	"github.com/lehigh-university-libraries/bookshelf/internal/providers"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Provider names.
const (
	ProviderVision = "vision"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config selects and configures the OCR provider.
type Config struct {
	Provider     string
	Model        string
	OllamaURL    string
	OpenAIAPIKey string
	OpenAIURL    string
	GeminiAPIKey string
}

// Service implements books.TextDetector.
type Service struct {
	provider string
	model    string
	vision   *vision.Service
	llm      providers.Provider
	fetcher  *images.Fetcher
}

// NewService creates the OCR service for cfg.Provider. opts are passed to the
// Cloud Vision client.
func NewService(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Service, error) {
	s := &Service{
		provider: cfg.Provider,
		model:    cfg.Model,
		fetcher:  images.NewFetcher(),
	}
	if s.provider == "" {
		s.provider = ProviderVision
	}
	if s.model == "" {
		s.model = DefaultModel(s.provider)
	}

	switch s.provider {
	case ProviderVision:
		svc, err := vision.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create vision service: %w", err)
		}
		s.vision = svc
	case ProviderGemini:
		s.llm = gemini.New(cfg.GeminiAPIKey)
	case ProviderOllama:
		s.llm = ollama.New(cfg.OllamaURL)
	case ProviderOpenAI:
		s.llm = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIURL)
	default:
		return nil, fmt.Errorf("unsupported OCR provider: %s", s.provider)
	}

	return s, nil
}

// NewLLMService builds a service around an already constructed LLM provider.
func NewLLMService(name, model string, llm providers.Provider, fetcher *images.Fetcher) *Service {
	return &Service{provider: name, model: model, llm: llm, fetcher: fetcher}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-1.5-flash"
	case ProviderOllama:
		return "mistral-small3.2:24b"
	case ProviderOpenAI:
		return "gpt-4o"
	default:
		return ""
	}
}

// Provider returns the configured provider name.
func (s *Service) Provider() string {
	return s.provider
}

// DetectText returns the text found in the image at imageURL.
func (s *Service) DetectText(ctx context.Context, imageURL string, maxResults int) ([]books.TextResponse, error) {
	if s.vision != nil {
		return s.detectWithVision(ctx, imageURL, maxResults)
	}
	return s.detectWithLLM(ctx, imageURL)
}

func (s *Service) detectWithVision(ctx context.Context, imageURL string, maxResults int) ([]books.TextResponse, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{
				Source: &vision.ImageSource{ImageUri: imageURL},
			},
			Features: []*vision.Feature{{
				Type:       "TEXT_DETECTION",
				MaxResults: int64(maxResults),
			}},
		}},
	}

	resp, err := s.vision.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, gcperr.Classify(err)
	}

	responses, err := fromVision(resp)
	if err != nil {
		return nil, err
	}
	slog.Info("Extracted OCR text", "provider", ProviderVision, "responses", len(responses))
	return responses, nil
}

// fromVision converts an annotate response, failing on any per-image error.
func fromVision(resp *vision.BatchAnnotateImagesResponse) ([]books.TextResponse, error) {
	responses := make([]books.TextResponse, 0, len(resp.Responses))
	for _, r := range resp.Responses {
		if r.Error != nil && r.Error.Code != 0 {
			return nil, gcperr.Classify(status.Error(codes.Code(r.Error.Code), r.Error.Message))
		}
		tr := books.TextResponse{}
		for _, a := range r.TextAnnotations {
			tr.TextAnnotations = append(tr.TextAnnotations, books.TextAnnotation{Description: a.Description})
		}
		responses = append(responses, tr)
	}
	return responses, nil
}

func (s *Service) detectWithLLM(ctx context.Context, imageURL string) ([]books.TextResponse, error) {
	img, err := s.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	text, err := s.llm.ExtractText(ctx, providers.Config{
		Model:       s.model,
		Temperature: 0.0, // Zero temperature for exact OCR
		Prompt:      transcriptionPrompt,
		Image:       img.Data,
		ImageType:   img.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract text with %s: %w", s.provider, err)
	}

	slog.Info("Extracted OCR text", "provider", s.provider, "model", s.model, "length", len(text))
	return []books.TextResponse{annotate(text)}, nil
}

// annotate shapes free text like a Vision response: the whole text first,
// then each word.
func annotate(text string) books.TextResponse {
	text = strings.TrimSpace(text)
	if text == "" {
		return books.TextResponse{}
	}
	words := strings.Fields(text)
	tr := books.TextResponse{TextAnnotations: make([]books.TextAnnotation, 0, len(words)+1)}
	tr.TextAnnotations = append(tr.TextAnnotations, books.TextAnnotation{Description: text})
	for _, w := range words {
		tr.TextAnnotations = append(tr.TextAnnotations, books.TextAnnotation{Description: w})
	}
	return tr
}

const transcriptionPrompt = `You are performing OCR (Optical Character Recognition) on a book cover image.

Your task is to extract ALL visible text from the image exactly as it appears, preserving:
- Line breaks
- Capitalization
- Punctuation
- Order of text elements

Labels such as "FN" and "LN" must be transcribed as they appear, each followed by the text printed next to it.

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:" or "The image contains:".`

package books

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Labels printed on a cover ahead of the author's names.
const (
	FirstNameLabel = "FN"
	LastNameLabel  = "LN"
)

// Analysis is the outcome of running OCR over a book's image.
type Analysis struct {
	Text      []string `json:"text"`
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
}

// FlattenText returns every annotation description in response order.
func FlattenText(responses []TextResponse) []string {
	var text []string
	for _, resp := range responses {
		for _, a := range resp.TextAnnotations {
			text = append(text, a.Description)
		}
	}
	return text
}

// TryExtractField returns the token following the first occurrence of label.
// It reports false when the label is missing or is the last token.
func TryExtractField(tokens []string, label string) (string, bool) {
	i := slices.Index(tokens, label)
	if i < 0 || i+1 >= len(tokens) {
		return "", false
	}
	return tokens[i+1], true
}

// Analyze runs OCR on the book's image, stores the detected text as the
// description and saves the book. The labelled names are returned but not stored.
func (r *Repository) Analyze(ctx context.Context, b *Book) (*Analysis, error) {
	if b.ImageURL == "" {
		return nil, ErrNoImage
	}
	if r.detector == nil {
		return nil, fmt.Errorf("no text detector configured")
	}

	responses, err := r.detector.DetectText(ctx, b.ImageURL, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to detect text: %w", err)
	}

	text := FlattenText(responses)
	a := &Analysis{Text: text}
	if v, ok := TryExtractField(text, FirstNameLabel); ok {
		a.FirstName = &v
	}
	if v, ok := TryExtractField(text, LastNameLabel); ok {
		a.LastName = &v
	}
	slog.Info("Analyzed cover image", "book_id", b.ID, "annotations", len(text), "first_name_found", a.FirstName != nil, "last_name_found", a.LastName != nil)

	b.Description = strings.Join(text, "\n")
	ok, err := r.Save(ctx, b)
	if err != nil {
		return a, err
	}
	if !ok {
		return a, b.Validate()
	}
	return a, nil
}

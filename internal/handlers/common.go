package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/images"
)

type Handler struct {
	repo    *books.Repository
	fetcher *images.Fetcher
}

func New(repo *books.Repository, fetcher *images.Fetcher) *Handler {
	if fetcher == nil {
		fetcher = images.NewFetcher()
	}
	return &Handler{
		repo:    repo,
		fetcher: fetcher,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "code", code)
	}
	http.Error(w, message, code)
}

func (h *Handler) writeValidationError(w http.ResponseWriter, errs books.FieldErrors) {
	h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
}

// writeRepoError maps repository errors to status codes.
func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	var fieldErrs books.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		h.writeValidationError(w, fieldErrs)
	case errors.Is(err, books.ErrNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, books.ErrUnknownAttribute),
		errors.Is(err, books.ErrInvalidCursor),
		errors.Is(err, books.ErrNoImage),
		errors.Is(err, books.ErrNoCoverImage):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, books.ErrPermissionDenied):
		h.writeError(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, books.ErrUnavailable):
		h.writeError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Book helpers
func (h *Handler) getBookOrError(w http.ResponseWriter, r *http.Request, rawID string) (*books.Book, bool) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, "Invalid book id", http.StatusBadRequest)
		return nil, false
	}

	book, found, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err)
		return nil, false
	}
	if !found {
		h.writeError(w, "Book not found", http.StatusNotFound)
		return nil, false
	}
	return book, true
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/images"
)

// Room for the form fields next to a full size image.
const maxFormBytes = images.MaxImageBytes + 1<<20

func (h *Handler) HandleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listBooks(w, r)
	case "POST":
		h.createBook(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	opts := books.QueryOptions{Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		opts.Limit = limit
	}

	page, err := h.repo.Query(r.Context(), opts)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	book := &books.Book{}

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var request struct {
			Description   string `json:"description"`
			ImageURL      string `json:"image_url"`
			CoverImageURL string `json:"cover_image_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		book.Description = request.Description
		book.ImageURL = request.ImageURL

		if request.CoverImageURL != "" {
			img, err := h.fetcher.Fetch(r.Context(), request.CoverImageURL)
			if err != nil {
				h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
				return
			}
			book.CoverImage = img
		}
	} else {
		img, ok := h.readCoverImage(w, r)
		if !ok {
			return
		}
		book.Description = r.FormValue("description")
		book.CoverImage = img
	}

	saved, err := h.repo.Save(r.Context(), book)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if !saved {
		h.writeValidationError(w, book.Validate())
		return
	}
	h.writeJSON(w, http.StatusCreated, book)
}

func (h *Handler) HandleBookDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/books/"), "/")
	rawID, action, _ := strings.Cut(rest, "/")

	switch action {
	case "":
	case "image":
		h.handleBookImage(w, r, rawID)
		return
	case "analyze":
		h.handleAnalyze(w, r, rawID)
		return
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET", "PUT", "DELETE":
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	book, ok := h.getBookOrError(w, r, rawID)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, http.StatusOK, book)
	case "PUT":
		var attrs map[string]string
		if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		saved, err := h.repo.Update(r.Context(), book, attrs)
		if err != nil {
			h.writeRepoError(w, err)
			return
		}
		if !saved {
			h.writeValidationError(w, book.Validate())
			return
		}
		h.writeJSON(w, http.StatusOK, book)
	case "DELETE":
		if err := h.repo.Destroy(r.Context(), book); err != nil {
			h.writeRepoError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleBookImage(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != "PUT" && r.Method != "DELETE" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	book, ok := h.getBookOrError(w, r, rawID)
	if !ok {
		return
	}

	switch r.Method {
	case "PUT":
		img, ok := h.readCoverImage(w, r)
		if !ok {
			return
		}
		if img == nil {
			h.writeError(w, "cover_image is required", http.StatusBadRequest)
			return
		}
		book.CoverImage = img
		if errs := book.Validate(); len(errs) > 0 {
			h.writeValidationError(w, errs)
			return
		}
		if err := h.repo.UpdateImage(r.Context(), book); err != nil {
			h.writeRepoError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, book)
	case "DELETE":
		if err := h.repo.RemoveImage(r.Context(), book); err != nil {
			h.writeRepoError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, book)
	}
}

type analyzeResponse struct {
	Book      *books.Book `json:"book"`
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	book, ok := h.getBookOrError(w, r, rawID)
	if !ok {
		return
	}

	analysis, err := h.repo.Analyze(r.Context(), book)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, analyzeResponse{
		Book:      book,
		FirstName: analysis.FirstName,
		LastName:  analysis.LastName,
	})
}

// readCoverImage returns the multipart cover_image file, or nil when none was sent.
func (h *Handler) readCoverImage(w http.ResponseWriter, r *http.Request) (*books.CoverImage, bool) {
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.writeError(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	file, header, err := r.FormFile("cover_image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	img, err := images.ReadUpload(file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return img, true
}

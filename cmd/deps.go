package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/config"
	"github.com/lehigh-university-libraries/bookshelf/internal/docstore"
	"github.com/lehigh-university-libraries/bookshelf/internal/gcs"
	"github.com/lehigh-university-libraries/bookshelf/internal/memstore"
	"github.com/lehigh-university-libraries/bookshelf/internal/ocr"
	"google.golang.org/api/option"
)

// newRepository builds the repository and its collaborators for cfg. The
// returned func releases any client connections.
func newRepository(ctx context.Context, cfg *config.Config) (*books.Repository, func(), error) {
	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var detector books.TextDetector
	svc, err := ocr.NewService(ctx, ocr.Config{
		Provider:     cfg.OCR.Provider,
		Model:        cfg.OCR.Model,
		OllamaURL:    cfg.OCR.OllamaURL,
		OpenAIAPIKey: cfg.OCR.OpenAIAPIKey,
		GeminiAPIKey: cfg.OCR.GeminiAPIKey,
	}, clientOpts...)
	switch {
	case err == nil:
		detector = svc
	case cfg.Backend == config.BackendMemory:
		slog.Warn("OCR disabled", "provider", cfg.OCR.Provider, "err", err)
	default:
		return nil, nil, err
	}

	switch cfg.Backend {
	case config.BackendMemory:
		slog.Info("Using in-memory backend, data is lost on exit", "bucket", cfg.Bucket)
		repo := books.NewRepository(memstore.New(), memstore.NewObjects().Bucket(cfg.Bucket), detector)
		return repo.WithPageSize(cfg.PageSize), func() {}, nil
	case config.BackendGCP:
		store, err := docstore.New(ctx, cfg.ProjectID, cfg.Namespace, clientOpts...)
		if err != nil {
			return nil, nil, err
		}
		objects, err := gcs.New(ctx, clientOpts...)
		if err != nil {
			return nil, nil, errors.Join(err, store.Close())
		}
		slog.Debug("Using Google Cloud backend", "project", cfg.ProjectID, "namespace", cfg.Namespace, "bucket", cfg.Bucket)

		repo := books.NewRepository(store, objects.Bucket(cfg.Bucket), detector)
		cleanup := func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close datastore client", "err", err)
			}
		}
		return repo.WithPageSize(cfg.PageSize), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

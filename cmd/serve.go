package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/bookshelf/internal/handlers"
	"github.com/lehigh-university-libraries/bookshelf/internal/images"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the books HTTP API",
		Long: `Starts the Bookshelf JSON API on the specified port.

Books are listed, created, updated and deleted under /api/books. Cover images
are uploaded as multipart form files and can be analyzed with the configured
OCR provider.`,
		Example: `  # Start server on the configured port (PORT, default 8080)
  bookshelf serve

  # Start server on custom port with the in-memory backend
  bookshelf serve --port 3000 --backend memory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = opts.cfg.Port
			}

			repo, cleanup, err := newRepository(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			handler := handlers.New(repo, images.NewFetcher())

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/books", handler.HandleBooks)
			mux.HandleFunc("/api/books/", handler.HandleBookDetail)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Bookshelf API available", "addr", addr, "url", "http://localhost"+addr+"/api/books")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from PORT or config)")

	return cmd
}

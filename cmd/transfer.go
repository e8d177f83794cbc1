package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every book to a JSONL, YAML or Parquet file",
		Example: `  # Export to parquet
  bookshelf export --format parquet --out books.parquet

  # Format is taken from the file extension when --format is omitted
  bookshelf export --out books.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
				if format == "yml" {
					format = export.FormatYAML
				}
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			w, err := export.NewWriter(f, format)
			if err != nil {
				return err
			}

			repo, cleanup, err := newRepository(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := export.Export(cmd.Context(), repo, w, opts.cfg.PageSize)
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close output file: %w", err)
			}

			slog.Info("Export complete", "books", n, "format", format, "path", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: jsonl, yaml or parquet")
	cmd.Flags().StringVar(&out, "out", "", "Output file path (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create books from a JSONL or Parquet file",
		Long: `Creates a new book for every row of a JSONL or Parquet file written by export.

Ids are not preserved. Image URLs that do not point into the configured bucket
are dropped from the imported book.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := export.Load(args[0])
			if err != nil {
				return err
			}
			slog.Info("Loaded records", "count", len(records), "path", args[0])

			repo, cleanup, err := newRepository(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := export.Import(cmd.Context(), repo, records)
			if err != nil {
				return err
			}
			slog.Info("Import complete", "imported", n, "skipped", len(records)-n, "bucket", books.PublicHost(repo.BucketName()))
			return nil
		},
	}

	return cmd
}

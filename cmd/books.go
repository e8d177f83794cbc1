package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/images"
	"github.com/spf13/cobra"
)

type booksOptions struct {
	*rootOptions
	output string
}

func newBooksCmd(root *rootOptions) *cobra.Command {
	opts := &booksOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "books",
		Short: "Manage books from the command line",
		Long: `List, create, update and delete books, and manage their cover images.

Results are printed as JSON, or as YAML with --output yaml.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "Output format (json or yaml)")

	cmd.AddCommand(newBooksListCmd(opts))
	cmd.AddCommand(newBooksGetCmd(opts))
	cmd.AddCommand(newBooksCreateCmd(opts))
	cmd.AddCommand(newBooksUpdateCmd(opts))
	cmd.AddCommand(newBooksDeleteCmd(opts))
	cmd.AddCommand(newBooksUploadImageCmd(opts))
	cmd.AddCommand(newBooksDeleteImageCmd(opts))
	cmd.AddCommand(newBooksAnalyzeCmd(opts))

	return cmd
}

// withRepository runs fn with a repository built from the loaded config.
func (o *booksOptions) withRepository(ctx context.Context, fn func(*books.Repository) error) error {
	repo, cleanup, err := newRepository(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(repo)
}

// findBook loads the book named by rawID.
func findBook(ctx context.Context, repo *books.Repository, rawID string) (*books.Book, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid book id %q", rawID)
	}
	book, found, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("book %d: %w", id, books.ErrNotFound)
	}
	return book, nil
}

func newBooksListCmd(opts *booksOptions) *cobra.Command {
	var limit int
	var cursor string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of books",
		Example: `  # First page
  bookshelf books list --limit 20

  # Next page, using the cursor printed by the previous call
  bookshelf books list --limit 20 --cursor <cursor>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRepository(cmd.Context(), func(repo *books.Repository) error {
				page, err := repo.Query(cmd.Context(), books.QueryOptions{Limit: limit, Cursor: cursor})
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), opts.output, page)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (default from config)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Cursor returned by the previous page")

	return cmd
}

func newBooksGetCmd(opts *booksOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a single book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRepository(cmd.Context(), func(repo *books.Repository) error {
				book, err := findBook(cmd.Context(), repo, args[0])
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), opts.output, book)
			})
		},
	}
}

func newBooksCreateCmd(opts *booksOptions) *cobra.Command {
	var description string
	var image string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a book, optionally uploading a cover image",
		Example: `  # Create a book with a cover image from disk
  bookshelf books create --description "First edition" --image ./cover.jpg

  # Fetch the cover image from a URL
  bookshelf books create --image https://example.com/cover.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			book := &books.Book{Description: description}
			if image != "" {
				img, err := images.NewFetcher().Load(cmd.Context(), image)
				if err != nil {
					return err
				}
				book.CoverImage = img
			}

			return opts.withRepository(cmd.Context(), func(repo *books.Repository) error {
				ok, err := repo.Save(cmd.Context(), book)
				if err != nil {
					return err
				}
				if !ok {
					return book.Validate()
				}
				return printResult(cmd.OutOrStdout(), opts.output, book)
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Book description")
	cmd.Flags().StringVar(&image, "image", "", "Cover image file or http(s) URL")

	return cmd
}

func newBooksUpdateCmd(opts *booksOptions) *cobra.Command {
	var attrs map[string]string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Set attributes on a book",
		Long: fmt.Sprintf(`Set attributes on a book and save it.

Settable attributes: %v`, books.SettableAttributes()),
		Example: `  bookshelf books update 42 --set description="Second printing"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(attrs) == 0 {
				return fmt.Errorf("nothing to update: pass at least one --set name=value")
			}
			return opts.withRepository(cmd.Context(), func(repo *books.Repository) error {
				book, err := findBook(cmd.Context(), repo, args[0])
				if err != nil {
					return err
				}
				ok, err := repo.Update(cmd.Context(), book, attrs)
				if err != nil {
					return err
				}
				if !ok {
					return book.Validate()
				}
				return printResult(cmd.OutOrStdout(), opts.output, book)
			})
		},
	}

	cmd.Flags().StringToStringVar(&attrs, "set", nil, "Attribute to set as name=value (repeatable)")

	return cmd
}

func newBooksDeleteCmd(opts *booksOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a book and its cover image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRepository(cmd.Context(), func(repo *books.Repository) error {
				book, err := findBook(cmd.Context(), repo, args[0])
				if err != nil {
					return err
				}
				if err := repo.Destroy(cmd.Context(), book); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted book %d\n", book.ID)
				return nil
			})
		},
	}
}

func newBooksUploadImageCmd(opts *booksOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image ID FILE|URL",
		Short: "Replace a book's cover image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := images.NewFetcher().Load(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return opts.withRepository(cmd.Context(), func(repo *books.Repository) error {
				book, err := findBook(cmd.Context(), repo, args[0])
				if err != nil {
					return err
				}
				book.CoverImage = img
				if errs := book.Validate(); len(errs) > 0 {
					return errs
				}
				if err := repo.UpdateImage(cmd.Context(), book); err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), opts.output, book)
			})
		},
	}
}

func newBooksDeleteImageCmd(opts *booksOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-image ID",
		Short: "Remove a book's cover image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRepository(cmd.Context(), func(repo *books.Repository) error {
				book, err := findBook(cmd.Context(), repo, args[0])
				if err != nil {
					return err
				}
				if err := repo.RemoveImage(cmd.Context(), book); err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), opts.output, book)
			})
		},
	}
}

type analyzeResult struct {
	Book      *books.Book `json:"book" yaml:"book"`
	FirstName *string     `json:"first_name" yaml:"first_name"`
	LastName  *string     `json:"last_name" yaml:"last_name"`
}

func newBooksAnalyzeCmd(opts *booksOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze ID",
		Short: "Read the text on a book's cover image into its description",
		Long: `Runs OCR on the book's cover image and saves the detected text as the
book's description. Names following the FN and LN labels are printed when found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRepository(cmd.Context(), func(repo *books.Repository) error {
				book, err := findBook(cmd.Context(), repo, args[0])
				if err != nil {
					return err
				}
				analysis, err := repo.Analyze(cmd.Context(), book)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), opts.output, analyzeResult{
					Book:      book,
					FirstName: analysis.FirstName,
					LastName:  analysis.LastName,
				})
			})
		},
	}
}

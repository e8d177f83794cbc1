package cmd

import (
	"bytes"
	"testing"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintResult(t *testing.T) {
	book := &books.Book{ID: 3, Description: "Atlas", CoverImage: &books.CoverImage{Filename: "x.png"}}

	tests := []struct {
		format string
		want   string
	}{
		{"json", "{\n  \"id\": 3,\n  \"description\": \"Atlas\"\n}\n"},
		{"", "{\n  \"id\": 3,\n  \"description\": \"Atlas\"\n}\n"},
		{"yaml", "id: 3\ndescription: Atlas\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printResult(&buf, tt.format, book))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	assert.Error(t, printResult(&bytes.Buffer{}, "xml", book))
}

func TestBooksCommandsMemoryBackend(t *testing.T) {
	t.Setenv("BOOKSHELF_BACKEND", "memory")
	t.Setenv("OCR_PROVIDER", "ollama")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"books", "create", "--description", "Atlas", "-o", "yaml"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "id: 1\ndescription: Atlas\n", out.String())
}

func TestRootRejectsUnknownBackend(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--backend", "sqlite", "books", "list"})

	err := root.Execute()
	assert.ErrorContains(t, err, "unknown backend")
}

func TestBackendFlagExplainsMemoryScope(t *testing.T) {
	flag := NewRootCmd().PersistentFlags().Lookup("backend")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Usage, "only useful with serve")
}

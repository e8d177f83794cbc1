package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendGCP, cfg.Backend)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "vision", cfg.OCR.Provider)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookshelf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: gcp
project_id: from-file
bucket: file-bucket
page_size: 25
ocr:
  provider: ollama
  ollama_url: http://ollama:11434
`), 0644))

	t.Setenv("GCS_BUCKET", "env-bucket")
	t.Setenv("BOOKSHELF_PAGE_SIZE", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.ProjectID)
	assert.Equal(t, "env-bucket", cfg.Bucket)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "ollama", cfg.OCR.Provider)
	assert.Equal(t, "http://ollama:11434", cfg.OCR.OllamaURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadInvalidPageSize(t *testing.T) {
	t.Setenv("BOOKSHELF_PAGE_SIZE", "many")
	_, err := Load("")
	assert.ErrorContains(t, err, "BOOKSHELF_PAGE_SIZE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "gcp needs project", mutate: func(c *Config) { c.Bucket = "b" }, wantErr: "GOOGLE_CLOUD_PROJECT"},
		{name: "gcp needs bucket", mutate: func(c *Config) { c.ProjectID = "p" }, wantErr: "GCS_BUCKET"},
		{name: "memory needs nothing", mutate: func(c *Config) { c.Backend = BackendMemory }},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "s3" }, wantErr: "unknown backend"},
		{name: "bad log level", mutate: func(c *Config) { c.Backend = BackendMemory; c.LogLevel = "loud" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestOllamaHostWithoutScheme(t *testing.T) {
	tests := []struct {
		name string
		host string
		url  string
		want string
	}{
		{"bare host and port", "127.0.0.1:11434", "", "http://127.0.0.1:11434"},
		{"host with scheme", "https://ollama.example.com", "", "https://ollama.example.com"},
		{"url wins over host", "127.0.0.1:11434", "http://ollama:11434", "http://ollama:11434"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OLLAMA_HOST", tt.host)
			t.Setenv("OLLAMA_URL", tt.url)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.OCR.OllamaURL)
		})
	}
}

// Package config loads bookshelf settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"github.com/lehigh-university-libraries/bookshelf/internal/ocr"
	"gopkg.in/yaml.v3"
)

// Backends.
const (
	BackendGCP    = "gcp"
	BackendMemory = "memory"
)

// Config holds everything needed to build the repository and its collaborators.
type Config struct {
	Backend         string    `yaml:"backend"`
	ProjectID       string    `yaml:"project_id"`
	Namespace       string    `yaml:"namespace"`
	Bucket          string    `yaml:"bucket"`
	CredentialsFile string    `yaml:"credentials_file"`
	PageSize        int       `yaml:"page_size"`
	Port            string    `yaml:"port"`
	LogLevel        string    `yaml:"log_level"`
	OCR             OCRConfig `yaml:"ocr"`
}

// OCRConfig selects the text detection provider.
type OCRConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	OllamaURL    string `yaml:"ollama_url"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Backend:  BackendGCP,
		PageSize: books.DefaultPageSize,
		Port:     "8080",
		LogLevel: "info",
		OCR:      OCRConfig{Provider: ocr.ProviderVision},
	}
}

// Load reads path, if given, over the defaults and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		slog.Debug("Loaded config file", "path", path)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Backend, "BOOKSHELF_BACKEND")
	setString(&c.ProjectID, "GOOGLE_CLOUD_PROJECT")
	setString(&c.Namespace, "DATASTORE_NAMESPACE")
	setString(&c.Bucket, "GCS_BUCKET")
	setString(&c.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.OCR.Provider, "OCR_PROVIDER")
	setString(&c.OCR.Model, "OCR_MODEL")
	setString(&c.OCR.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.OCR.OpenAIAPIKey, "OPENAI_API_KEY")

	// OLLAMA_HOST is accepted as a fallback, as the ollama CLI uses it
	setString(&c.OCR.OllamaURL, "OLLAMA_HOST")
	setString(&c.OCR.OllamaURL, "OLLAMA_URL")
	if c.OCR.OllamaURL != "" && !strings.Contains(c.OCR.OllamaURL, "://") {
		c.OCR.OllamaURL = "http://" + c.OCR.OllamaURL
	}

	if v := os.Getenv("BOOKSHELF_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BOOKSHELF_PAGE_SIZE %q: %w", v, err)
		}
		c.PageSize = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports settings that would stop the configured backend from working.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendGCP:
		if c.ProjectID == "" {
			errs = append(errs, errors.New("GOOGLE_CLOUD_PROJECT is required for the gcp backend"))
		}
		if c.Bucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET is required for the gcp backend"))
		}
	case BackendMemory:
		if c.Bucket == "" {
			c.Bucket = "bookshelf-local"
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendGCP, BackendMemory))
	}

	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page size must be positive, got %d", c.PageSize))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

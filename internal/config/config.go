package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

// PlaceholderAPIKey is the value shipped in .env templates. A key equal to it
// is treated the same as no key at all.
const PlaceholderAPIKey = "PLACEHOLDER_API_KEY"

type Config struct {
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// NSQ is optional; indexing outcome events are only published when a host is set.
	NSQDHost string `envconfig:"NSQD_HOST"`

	ChunkSizeSeconds int `envconfig:"CHUNK_SIZE_SECONDS" default:"60"`
	SearchTopK       int `envconfig:"SEARCH_TOP_K" default:"5"`
	SearchOversample int `envconfig:"SEARCH_OVERSAMPLE" default:"2"`
	SkipIntroSeconds int `envconfig:"SKIP_INTRO_SECONDS" default:"120"`

	IngestUnitDelayMs int `envconfig:"INGEST_UNIT_DELAY_MS" default:"500"`
	SSERenderDelayMs  int `envconfig:"SSE_RENDER_DELAY_MS" default:"50"`

	ServerPort   int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell instead, so a missing file is fine.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.WeaviateHost == "" {
		return fmt.Errorf("%w: WEAVIATE_HOST", ErrMissingRequired)
	}
	if c.ChunkSizeSeconds <= 0 {
		return fmt.Errorf("CHUNK_SIZE_SECONDS must be positive, got %d", c.ChunkSizeSeconds)
	}
	if c.SearchOversample < 1 {
		return fmt.Errorf("SEARCH_OVERSAMPLE must be at least 1, got %d", c.SearchOversample)
	}
	if c.SkipIntroSeconds < 0 {
		return fmt.Errorf("SKIP_INTRO_SECONDS must not be negative, got %d", c.SkipIntroSeconds)
	}
	return nil
}

// HasAPIKey reports whether a usable default Gemini key is configured.
// Requests can still override it per call (BYOK).
func (c *Config) HasAPIKey() bool {
	return c.GeminiAPIKey != "" && c.GeminiAPIKey != PlaceholderAPIKey
}

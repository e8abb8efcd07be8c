package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"clipseek/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.WeaviateHost)
	assert.Equal(t, 60, cfg.ChunkSizeSeconds)
	assert.Equal(t, 5, cfg.SearchTopK)
	assert.Equal(t, 2, cfg.SearchOversample)
	assert.Equal(t, 120, cfg.SkipIntroSeconds)
	assert.Equal(t, 8081, cfg.ServerPort)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	os.Setenv("WEAVIATE_HOST", "weaviate:8080")
	os.Setenv("SKIP_INTRO_SECONDS", "90")
	defer os.Unsetenv("WEAVIATE_HOST")
	defer os.Unsetenv("SKIP_INTRO_SECONDS")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "weaviate:8080", cfg.WeaviateHost)
	assert.Equal(t, 90, cfg.SkipIntroSeconds)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	content := []byte("GEMINI_API_KEY=loaded-from-file")
	err := os.WriteFile(".env", content, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(".env")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "loaded-from-file", cfg.GeminiAPIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid defaults", func(c *config.Config) {}, false},
		{"missing weaviate host", func(c *config.Config) { c.WeaviateHost = "" }, true},
		{"zero chunk size", func(c *config.Config) { c.ChunkSizeSeconds = 0 }, true},
		{"oversample below one", func(c *config.Config) { c.SearchOversample = 0 }, true},
		{"negative intro skip", func(c *config.Config) { c.SkipIntroSeconds = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				WeaviateHost:     "localhost:8080",
				ChunkSizeSeconds: 60,
				SearchOversample: 2,
				SkipIntroSeconds: 120,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHasAPIKey(t *testing.T) {
	cfg := &config.Config{}
	assert.False(t, cfg.HasAPIKey())

	cfg.GeminiAPIKey = config.PlaceholderAPIKey
	assert.False(t, cfg.HasAPIKey())

	cfg.GeminiAPIKey = "real-key"
	assert.True(t, cfg.HasAPIKey())
}

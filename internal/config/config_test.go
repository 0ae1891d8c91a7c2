package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		GeminiAPIKey:  "test-key",
		ChunkMaxChars: 1200,
		ChunkOverlap:  150,
		TopKPerQuery:  3,
		MaxEvidence:   10,
	}
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("Missing API Key", func(t *testing.T) {
		cfg := validConfig()
		cfg.GeminiAPIKey = ""
		assert.ErrorIs(t, cfg.Validate(), ErrMissingRequired)
	})

	t.Run("Zero Max Chars", func(t *testing.T) {
		cfg := validConfig()
		cfg.ChunkMaxChars = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidChunking)
	})

	t.Run("Overlap Equals Max Chars", func(t *testing.T) {
		cfg := validConfig()
		cfg.ChunkOverlap = cfg.ChunkMaxChars
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidChunking)
	})

	t.Run("Negative Overlap", func(t *testing.T) {
		cfg := validConfig()
		cfg.ChunkOverlap = -1
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidChunking)
	})

	t.Run("Zero Overlap Is Fine", func(t *testing.T) {
		cfg := validConfig()
		cfg.ChunkOverlap = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Zero TopK", func(t *testing.T) {
		cfg := validConfig()
		cfg.TopKPerQuery = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidChunking)
	})

	t.Run("Zero Max Evidence", func(t *testing.T) {
		cfg := validConfig()
		cfg.MaxEvidence = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidChunking)
	})
}

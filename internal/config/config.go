package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

var ErrInvalidChunking = errors.New("invalid chunking configuration")

type Config struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	EmbedModel   string `envconfig:"GEMINI_EMBED_MODEL" default:"gemini-embedding-001"`
	TextModel    string `envconfig:"GEMINI_TEXT_MODEL" default:"gemini-1.0-pro"`

	// Chunking
	ChunkMaxChars int `envconfig:"CHUNK_MAX_CHARS" default:"1200"`
	ChunkOverlap  int `envconfig:"CHUNK_OVERLAP" default:"150"`

	// Retrieval
	TopKPerQuery int `envconfig:"TOP_K_PER_QUERY" default:"3"`
	MaxEvidence  int `envconfig:"MAX_EVIDENCE" default:"10"`

	// Server
	ServerPort      int    `envconfig:"SERVER_PORT" default:"8000"`
	MaxUploadSizeMB int64  `envconfig:"MAX_UPLOAD_SIZE_MB" default:"20"`
	DataDir         string `envconfig:"DATA_DIR" default:"data"`
	QueryLogPath    string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Events (disabled when NSQD_HOST is empty)
	NSQDHost string `envconfig:"NSQD_HOST"`

	// Extraction
	PdftotextFallback bool `envconfig:"PDFTOTEXT_FALLBACK" default:"false"`
}

func Load() (*Config, error) {
	// Env vars may also come from the shell, so a missing .env is not an error.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	if c.ChunkMaxChars <= 0 {
		return fmt.Errorf("%w: CHUNK_MAX_CHARS must be positive, got %d", ErrInvalidChunking, c.ChunkMaxChars)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkMaxChars {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_MAX_CHARS), got %d", ErrInvalidChunking, c.ChunkOverlap)
	}
	if c.TopKPerQuery <= 0 {
		return fmt.Errorf("%w: TOP_K_PER_QUERY must be positive, got %d", ErrInvalidChunking, c.TopKPerQuery)
	}
	if c.MaxEvidence <= 0 {
		return fmt.Errorf("%w: MAX_EVIDENCE must be positive, got %d", ErrInvalidChunking, c.MaxEvidence)
	}
	return nil
}

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration. Everything comes from the
// environment; constructors receive the values explicitly so nothing reads
// ambient state after startup.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// Document source
	DocsDir string `env:"DOCS_DIR" envDefault:"data/docs"`

	// Chunking
	ChunkSize      int `env:"CHUNK_SIZE" envDefault:"2000"`
	ChunkOverlap   int `env:"CHUNK_OVERLAP" envDefault:"200"`
	EmbedBatchSize int `env:"EMBED_BATCH_SIZE" envDefault:"25"`

	// Retrieval
	DefaultTopK int `env:"DEFAULT_TOP_K" envDefault:"5"`
	MaxTopK     int `env:"MAX_TOP_K" envDefault:"20"`

	// Bedrock models
	AWSRegion    string  `env:"AWS_REGION" envDefault:"us-east-1"`
	ClaudeModel  string  `env:"CLAUDE_MODEL_ID" envDefault:"anthropic.claude-3-5-haiku-20241022-v1:0"`
	EmbedModel   string  `env:"EMBED_MODEL_ID" envDefault:"amazon.titan-embed-text-v2:0"`
	MaxTokens    int     `env:"MAX_TOKENS" envDefault:"2000"`
	Temperature  float64 `env:"TEMPERATURE" envDefault:"0.0"`
	EmbeddingDim int     `env:"EMBEDDING_DIM" envDefault:"1024"`

	// Vector index
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Optional query-embedding cache; empty address disables it
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisTTL      string `env:"REDIS_TTL" envDefault:"30m"`
}

// Load reads .env if present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return Config{}, fmt.Errorf("CHUNK_OVERLAP (%d) must be in [0, CHUNK_SIZE)", cfg.ChunkOverlap)
	}

	return cfg, nil
}

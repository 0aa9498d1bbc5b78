// Package cache provides a Redis-backed cache for query embeddings. The same
// text always embeds to the same vector, so a cache hit can never change what
// gets retrieved; it only skips a paid embedding call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lifeblood/ops-assistant/internal/rag"
)

const keyPrefix = "embed_cache:"

// CachingEmbedder wraps an Embedder and serves repeated query texts from
// Redis. Document batches pass straight through: ingestion texts rarely
// repeat and would only churn the cache.
type CachingEmbedder struct {
	inner  rag.Embedder
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachingEmbedder(inner rag.Embedder, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachingEmbedder {
	return &CachingEmbedder{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// ConnectRedis dials Redis and verifies the connection.
func ConnectRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              0,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

func (c *CachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedTexts(ctx, texts)
}

func (c *CachingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var embedding []float32
		if err := json.Unmarshal(raw, &embedding); err == nil && len(embedding) > 0 {
			c.logger.Debug().Msg("Embedding cache hit")
			return embedding, nil
		}
	} else if err != redis.Nil {
		// A broken cache must not break retrieval.
		c.logger.Warn().Err(err).Msg("Embedding cache read failed")
	}

	embedding, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(embedding); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("Embedding cache write failed")
		}
	}

	return embedding, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Package pgvector implements the vector index on Postgres with the pgvector
// extension. Chunks are keyed by their composite id, so upserting a
// re-ingested document replaces its previous entries in place.
package pgvector

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"

	"github.com/lifeblood/ops-assistant/internal/rag"
)

type Config struct {
	URL       string
	Dimension int
}

// Store implements rag.Index.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
	logger    zerolog.Logger
}

// Connect opens the pool with a few backoff retries so the service survives
// a database that comes up slightly later than it does.
func Connect(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	var pool *pgxpool.Pool

	err := retry.Do(
		func() error {
			p, err := pgxpool.New(ctx, cfg.URL)
			if err != nil {
				return err
			}
			if err := p.Ping(ctx); err != nil {
				p.Close()
				return err
			}
			pool = p
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn().Err(err).Uint("attempt", n+1).Msg("Database connection failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info().Msg("Database connected")
	return &Store{
		pool:      pool,
		dimension: cfg.Dimension,
		logger:    logger,
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the extension and chunk table if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS document_chunks (
			id           TEXT PRIMARY KEY,
			doc_id       TEXT NOT NULL,
			chunk_id     INTEGER NOT NULL,
			title        TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset   INTEGER NOT NULL,
			embedding    vector(%d) NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.dimension)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create document_chunks table: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS document_chunks_doc_id_idx ON document_chunks (doc_id, chunk_id)`); err != nil {
		return fmt.Errorf("failed to create doc index: %w", err)
	}

	return nil
}

func (s *Store) Upsert(ctx context.Context, entries []rag.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO document_chunks (id, doc_id, chunk_id, title, content, start_offset, end_offset, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO UPDATE SET
			title        = EXCLUDED.title,
			content      = EXCLUDED.content,
			start_offset = EXCLUDED.start_offset,
			end_offset   = EXCLUDED.end_offset,
			embedding    = EXCLUDED.embedding,
			updated_at   = NOW()`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, entry := range entries {
		if len(entry.Embedding) != s.dimension {
			return fmt.Errorf("entry %s has dimension %d, index expects %d", entry.ID, len(entry.Embedding), s.dimension)
		}

		_, err := tx.Exec(ctx, query,
			entry.ID,
			entry.Chunk.DocID,
			entry.Chunk.ChunkID,
			entry.Chunk.Title,
			entry.Chunk.Text,
			entry.Chunk.Start,
			entry.Chunk.End,
			pgv.NewVector(entry.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	s.logger.Debug().Int("entries", len(entries)).Msg("Chunks upserted")
	return nil
}

func (s *Store) Query(ctx context.Context, embedding []float32, topK int) ([]rag.Match, error) {
	query := `
		SELECT
			doc_id,
			chunk_id,
			title,
			content,
			start_offset,
			end_offset,
			embedding <=> $1 AS distance
		FROM document_chunks
		ORDER BY distance ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, pgv.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("unable to query the index: %w", err)
	}
	defer rows.Close()

	var matches []rag.Match
	for rows.Next() {
		var chunk rag.Chunk
		var distance float64

		if err := rows.Scan(&chunk.DocID, &chunk.ChunkID, &chunk.Title, &chunk.Text, &chunk.Start, &chunk.End, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}

		matches = append(matches, rag.Match{
			Chunk: chunk,
			Score: distanceToScore(distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return matches, nil
}

func (s *Store) DeleteFrom(ctx context.Context, docID string, fromChunk int) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM document_chunks WHERE doc_id = $1 AND chunk_id >= $2`, docID, fromChunk)
	if err != nil {
		return fmt.Errorf("failed to delete stale chunks of %s: %w", docID, err)
	}

	if n := result.RowsAffected(); n > 0 {
		s.logger.Info().Str("doc_id", docID).Int64("removed", n).Msg("Stale chunks removed")
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// distanceToScore maps cosine distance (0 identical, 2 opposite) to a
// similarity score clamped to [0,1].
func distanceToScore(distance float64) float64 {
	score := 1.0 - distance
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

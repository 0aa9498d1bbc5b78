package rag

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Retriever embeds a question with the ingestion-time embedder and returns
// the closest chunks from the index.
type Retriever struct {
	embedder Embedder
	index    Index
	logger   zerolog.Logger
}

func NewRetriever(embedder Embedder, index Index, logger zerolog.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Retrieve returns up to topK matches sorted by descending score, ties broken
// by ascending chunk id. An empty index yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) ([]Match, error) {
	embedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := r.index.Query(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Chunk.ChunkID < matches[j].Chunk.ChunkID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	r.logger.Debug().
		Int("top_k", topK).
		Int("matches", len(matches)).
		Msg("Retrieval complete")
	return matches, nil
}

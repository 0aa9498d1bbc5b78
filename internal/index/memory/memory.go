// Package memory is an in-process vector index using brute-force cosine
// similarity. It backs tests and local runs without Postgres.
package memory

import (
	"context"
	"math"
	"sync"

	"github.com/lifeblood/ops-assistant/internal/rag"
)

// Store implements rag.Index.
type Store struct {
	mu      sync.RWMutex
	entries map[string]rag.IndexEntry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]rag.IndexEntry)}
}

func (s *Store) Upsert(ctx context.Context, entries []rag.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		s.entries[entry.ID] = entry
	}
	return nil
}

func (s *Store) Query(ctx context.Context, embedding []float32, topK int) ([]rag.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []rag.Match
	for _, entry := range s.entries {
		matches = append(matches, rag.Match{
			Chunk: entry.Chunk,
			Score: cosineScore(embedding, entry.Embedding),
		})
	}

	// Full ordering and truncation happen in the retriever; trimming here
	// just keeps the result bounded like a real index would.
	if topK > 0 && len(matches) > topK {
		for i := 0; i < topK; i++ {
			best := i
			for j := i + 1; j < len(matches); j++ {
				if matches[j].Score > matches[best].Score {
					best = j
				}
			}
			matches[i], matches[best] = matches[best], matches[i]
		}
		matches = matches[:topK]
	}

	return matches, nil
}

func (s *Store) DeleteFrom(ctx context.Context, docID string, fromChunk int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		if entry.Chunk.DocID == docID && entry.Chunk.ChunkID >= fromChunk {
			delete(s.entries, id)
		}
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// cosineScore is cosine similarity clamped to [0,1].
func cosineScore(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

package rag

import (
	"context"
	"crypto/sha256"
	"errors"
	"math"
	"sort"
	"sync"
)

// stubEmbedder produces deterministic embeddings from a text hash, like a
// real embedder with the temperature turned off. All components are
// non-negative so any two vectors keep a clearly positive cosine similarity.
type stubEmbedder struct {
	batchCalls int
	queryCalls int
	failWith   error
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	s.batchCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashEmbedding(t)
	}
	return out, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	s.queryCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	return hashEmbedding(text), nil
}

func hashEmbedding(text string) []float32 {
	const dim = 32
	sum := sha256.Sum256([]byte(text))
	v := make([]float32, dim)
	for i := 0; i < dim; i++ {
		v[i] = float32(sum[i%len(sum)]) / 255.0
	}
	return v
}

// stubGenerator returns a canned answer and records the prompts it saw.
type stubGenerator struct {
	answer   string
	failWith error
	calls    int
	prompts  []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.failWith != nil {
		return "", s.failWith
	}
	return s.answer, nil
}

// scriptedIndex returns preset matches and records query parameters.
type scriptedIndex struct {
	matches    []Match
	failWith   error
	queryCalls int
	lastTopK   int
}

func (s *scriptedIndex) Upsert(ctx context.Context, entries []IndexEntry) error { return nil }

func (s *scriptedIndex) Query(ctx context.Context, embedding []float32, topK int) ([]Match, error) {
	s.queryCalls++
	s.lastTopK = topK
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.matches, nil
}

func (s *scriptedIndex) DeleteFrom(ctx context.Context, docID string, fromChunk int) error {
	return nil
}

func (s *scriptedIndex) Count(ctx context.Context) (int, error) { return len(s.matches), nil }

// memIndex is a map-backed index with brute-force cosine scoring, enough to
// exercise ingestion idempotence and end-to-end retrieval.
type memIndex struct {
	mu      sync.Mutex
	entries map[string]IndexEntry
}

func newMemIndex() *memIndex {
	return &memIndex{entries: make(map[string]IndexEntry)}
}

func (m *memIndex) Upsert(ctx context.Context, entries []IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return nil
}

func (m *memIndex) Query(ctx context.Context, embedding []float32, topK int) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []Match
	for _, e := range m.entries {
		matches = append(matches, Match{Chunk: e.Chunk, Score: cosine(embedding, e.Embedding)})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *memIndex) DeleteFrom(ctx context.Context, docID string, fromChunk int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.Chunk.DocID == docID && e.Chunk.ChunkID >= fromChunk {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *memIndex) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// sliceSource serves a fixed document set.
type sliceSource struct {
	docs     []Document
	failWith error
}

func (s *sliceSource) Load(ctx context.Context) ([]Document, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.docs, nil
}

var errBoom = errors.New("boom")

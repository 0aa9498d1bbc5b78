package rag

import "context"

// Embedder turns text into fixed-dimension vectors. Queries and documents
// must go through the same embedder, otherwise scores are meaningless.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces answer text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IndexEntry is the persisted unit in the vector index.
type IndexEntry struct {
	ID        string
	Embedding []float32
	Chunk     Chunk
}

// Index is the external vector index. The Indexer is its sole writer.
type Index interface {
	Upsert(ctx context.Context, entries []IndexEntry) error
	// Query returns up to topK nearest chunks with similarity scores in [0,1].
	Query(ctx context.Context, embedding []float32, topK int) ([]Match, error)
	// DeleteFrom removes entries of docID with chunk id >= fromChunk. Used to
	// drop stale trailing chunks when a re-ingested document shrank.
	DeleteFrom(ctx context.Context, docID string, fromChunk int) error
	Count(ctx context.Context) (int, error)
}

// DocumentSource enumerates the ingestible documents.
type DocumentSource interface {
	Load(ctx context.Context) ([]Document, error)
}

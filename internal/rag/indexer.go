package rag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Indexer drives ingestion: documents are chunked, embedded in batches and
// upserted into the vector index under deterministic composite ids, so
// re-ingesting a document replaces its previous chunk set.
type Indexer struct {
	source    DocumentSource
	chunker   *Chunker
	embedder  Embedder
	index     Index
	batchSize int
	logger    zerolog.Logger
}

func NewIndexer(source DocumentSource, chunker *Chunker, embedder Embedder, index Index, batchSize int, logger zerolog.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 25
	}
	return &Indexer{
		source:    source,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Ingest processes every document from the source. A failing batch fails the
// whole call naming the document and batch; partial index state is fine
// because a full re-ingestion is idempotent.
func (ix *Indexer) Ingest(ctx context.Context) (docCount, chunkCount int, err error) {
	docs, err := ix.source.Load(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load documents: %w", err)
	}
	ix.logger.Info().Int("documents", len(docs)).Msg("Starting ingestion")

	for _, doc := range docs {
		n, err := ix.ingestDocument(ctx, doc)
		if err != nil {
			return docCount, chunkCount, err
		}
		docCount++
		chunkCount += n
	}

	ix.logger.Info().
		Int("documents", docCount).
		Int("chunks", chunkCount).
		Msg("Ingestion complete")
	return docCount, chunkCount, nil
}

func (ix *Indexer) ingestDocument(ctx context.Context, doc Document) (int, error) {
	chunks := ix.chunker.Chunk(doc)
	ix.logger.Info().
		Str("doc_id", doc.DocID).
		Str("title", doc.Title).
		Int("chunks", len(chunks)).
		Msg("Document chunked")

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		embeddings, err := ix.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed document %s batch %d: %w", doc.DocID, start/ix.batchSize, err)
		}
		if len(embeddings) != len(batch) {
			return 0, fmt.Errorf("embedder returned %d vectors for %d chunks of document %s", len(embeddings), len(batch), doc.DocID)
		}

		entries := make([]IndexEntry, len(batch))
		for i, chunk := range batch {
			entries[i] = IndexEntry{
				ID:        chunk.CompositeID(),
				Embedding: embeddings[i],
				Chunk:     chunk,
			}
		}

		if err := ix.index.Upsert(ctx, entries); err != nil {
			return 0, fmt.Errorf("failed to upsert document %s batch %d: %w", doc.DocID, start/ix.batchSize, err)
		}
	}

	// A shrunk document leaves stale trailing chunks behind the upserts;
	// they would stay retrievable unless removed here.
	if err := ix.index.DeleteFrom(ctx, doc.DocID, len(chunks)); err != nil {
		return 0, fmt.Errorf("failed to prune stale chunks of document %s: %w", doc.DocID, err)
	}

	return len(chunks), nil
}

package main

import (
	"context"
	"flag"

	"github.com/lifeblood/ops-assistant/internal/bedrock"
	"github.com/lifeblood/ops-assistant/internal/config"
	"github.com/lifeblood/ops-assistant/internal/index/pgvector"
	"github.com/lifeblood/ops-assistant/internal/logger"
	"github.com/lifeblood/ops-assistant/internal/rag"
)

func main() {
	docsDir := flag.String("docs", "", "Override DOCS_DIR for this run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if *docsDir != "" {
		cfg.DocsDir = *docsDir
	}

	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	bedrockClient, err := bedrock.NewClient(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to initialize Bedrock client")
	}

	store, err := pgvector.Connect(ctx, pgvector.Config{
		URL:       cfg.DatabaseURL,
		Dimension: cfg.EmbeddingDim,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to vector index")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare index schema")
	}

	embedder := bedrock.NewEmbedder(bedrockClient, cfg.EmbedModel)
	source := rag.NewDirectorySource(cfg.DocsDir)
	chunker := rag.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	indexer := rag.NewIndexer(source, chunker, embedder, store, cfg.EmbedBatchSize, log)

	docs, chunks, err := indexer.Ingest(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	log.Info().
		Int("indexed_docs", docs).
		Int("indexed_chunks", chunks).
		Msg("Ingestion successful")
}

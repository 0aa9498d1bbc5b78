package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/rs/cors"

	"github.com/lifeblood/ops-assistant/internal/api"
	"github.com/lifeblood/ops-assistant/internal/api/middleware"
	"github.com/lifeblood/ops-assistant/internal/bedrock"
	"github.com/lifeblood/ops-assistant/internal/cache"
	"github.com/lifeblood/ops-assistant/internal/config"
	"github.com/lifeblood/ops-assistant/internal/index/pgvector"
	"github.com/lifeblood/ops-assistant/internal/logger"
	"github.com/lifeblood/ops-assistant/internal/rag"
)

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Lifeblood Ops Assistant API",
			Description: "Grounded Q&A over blood-donation operating procedures",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "ask", Description: "Question answering"}},
		{TagProps: spec.TagProps{Name: "ingest", Description: "Document ingestion"}},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)
	log.Info().Msg("Starting Lifeblood Ops Assistant API")

	ctx := context.Background()

	bedrockClient, err := bedrock.NewClient(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to initialize Bedrock client")
	}
	log.Info().
		Str("region", cfg.AWSRegion).
		Str("model", cfg.ClaudeModel).
		Str("embed_model", cfg.EmbedModel).
		Msg("Bedrock client initialized")

	var embedder rag.Embedder = bedrock.NewEmbedder(bedrockClient, cfg.EmbedModel)

	if cfg.RedisAddr != "" {
		redisClient, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		ttl, err := time.ParseDuration(cfg.RedisTTL)
		if err != nil {
			ttl = 30 * time.Minute
		}
		embedder = cache.NewCachingEmbedder(embedder, redisClient, ttl, log)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Query-embedding cache enabled")
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

	generator := bedrock.NewGenerator(bedrockClient, cfg.ClaudeModel, cfg.MaxTokens, cfg.Temperature)
	source := rag.NewDirectorySource(cfg.DocsDir)
	chunker := rag.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	indexer := rag.NewIndexer(source, chunker, embedder, store, cfg.EmbedBatchSize, log)
	retriever := rag.NewRetriever(embedder, store, log)
	composer := rag.NewComposer(generator, log)
	pipeline := rag.NewPipeline(retriever, composer, indexer, rag.PipelineConfig{
		DefaultTopK: cfg.DefaultTopK,
		MaxTopK:     cfg.MaxTopK,
	}, log)

	handler := api.NewHandler(pipeline, store, log)

	container := restful.NewContainer()
	container.Filter(middleware.Logger(log))
	container.Filter(middleware.RecoverPanic(log))

	api.RegisterRoutes(container, handler)

	openapiConfig := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/api/v1/openapi.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(openapiConfig))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info().Str("address", addr).Msg("Starting server")

	server := http.Server{
		Addr:         addr,
		Handler:      corsHandler.Handler(container),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

package rag

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FallbackAnswer is returned when retrieval produces no usable context.
// No generation call is made in that case.
const FallbackAnswer = "I don't have enough information in the docs to answer that."

const (
	minMatchScore  = 0.01
	minMatchLength = 20
)

// Pipeline is the ask/ingest orchestrator. It holds no per-request state;
// concurrent calls only meet each other inside the shared index.
type Pipeline struct {
	retriever   *Retriever
	composer    *Composer
	indexer     *Indexer
	defaultTopK int
	maxTopK     int
	logger      zerolog.Logger
}

// PipelineConfig bounds request parameters. Zero values fall back to
// top_k 5 with a maximum of 20.
type PipelineConfig struct {
	DefaultTopK int
	MaxTopK     int
}

func NewPipeline(retriever *Retriever, composer *Composer, indexer *Indexer, cfg PipelineConfig, logger zerolog.Logger) *Pipeline {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = 20
	}
	return &Pipeline{
		retriever:   retriever,
		composer:    composer,
		indexer:     indexer,
		defaultTopK: cfg.DefaultTopK,
		maxTopK:     cfg.MaxTopK,
		logger:      logger,
	}
}

// Ask answers one question from the indexed document set. Validation happens
// before any external call; a request that fails it costs no embedding or
// generation invocation.
func (p *Pipeline) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	traceID := newTraceID()
	logger := p.logger.With().Str("trace_id", traceID).Logger()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, newError(KindValidation, "validate", traceID, errors.New("question must not be empty"))
	}

	mode, err := ParseMode(req.Mode)
	if err != nil {
		return AskResponse{}, newError(KindValidation, "validate", traceID, err)
	}

	if req.TopK < 0 {
		return AskResponse{}, newError(KindValidation, "validate", traceID, errors.New("top_k must be a positive integer"))
	}
	topK := req.TopK
	if topK == 0 {
		topK = p.defaultTopK
	}
	if topK > p.maxTopK {
		topK = p.maxTopK
	}

	logger.Info().
		Str("mode", string(mode)).
		Int("top_k", topK).
		Msg("Processing question")

	matches, err := p.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		logger.Error().Err(err).Msg("Retrieval failed")
		return AskResponse{}, newError(KindRetrieval, "retrieving", traceID, err)
	}

	matches = filterMatches(matches)
	if len(matches) == 0 {
		logger.Info().Msg("No usable context retrieved, returning fallback")
		return AskResponse{
			Question:  question,
			Answer:    FallbackAnswer,
			Citations: []Citation{},
			Mode:      mode,
			TraceID:   traceID,
		}, nil
	}

	answer, citations, err := p.composer.Compose(ctx, question, matches, mode)
	if err != nil {
		logger.Error().Err(err).Msg("Generation failed")
		return AskResponse{}, newError(KindGeneration, "composing", traceID, err)
	}

	logger.Info().Int("citations", len(citations)).Msg("Question answered")
	return AskResponse{
		Question:  question,
		Answer:    answer,
		Citations: citations,
		Mode:      mode,
		TraceID:   traceID,
	}, nil
}

// Ingest re-indexes the configured document set. Safe to re-run in full
// after any failure.
func (p *Pipeline) Ingest(ctx context.Context) (IngestStats, error) {
	traceID := newTraceID()

	docs, chunks, err := p.indexer.Ingest(ctx)
	if err != nil {
		p.logger.Error().Err(err).Str("trace_id", traceID).Msg("Ingestion failed")
		return IngestStats{}, newError(KindIngestion, "ingesting", traceID, err)
	}

	return IngestStats{
		IndexedDocs:   docs,
		IndexedChunks: chunks,
		TraceID:       traceID,
	}, nil
}

// filterMatches drops matches that add nothing to the prompt: empty or
// near-empty text, or scores below the relevance floor.
func filterMatches(matches []Match) []Match {
	kept := matches[:0]
	for _, m := range matches {
		if len(strings.TrimSpace(m.Chunk.Text)) < minMatchLength {
			continue
		}
		if m.Score < minMatchScore {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

func newTraceID() string {
	return uuid.New().String()
}

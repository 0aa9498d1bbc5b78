package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/lifeblood/ops-assistant/internal/api/middleware"
	"github.com/lifeblood/ops-assistant/internal/rag"
)

const traceHeader = "X-Trace-Id"

type HealthResponse struct {
	Status        string `json:"status" description:"Service status"`
	Version       string `json:"version" description:"API version"`
	IndexedChunks int    `json:"indexed_chunks" description:"Number of chunks in the vector index"`
}

type Handler struct {
	pipeline *rag.Pipeline
	index    rag.Index
	logger   zerolog.Logger
}

func NewHandler(pipeline *rag.Pipeline, index rag.Index, logger zerolog.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		index:    index,
		logger:   logger,
	}
}

// Ask handles POST /api/v1/ask
func (h *Handler) Ask(req *restful.Request, resp *restful.Response) {
	var askRequest rag.AskRequest
	if err := req.ReadEntity(&askRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest, "")
		return
	}

	ctx := req.Request.Context()
	response, err := h.pipeline.Ask(ctx, askRequest)
	if err != nil {
		h.writeError(resp, err)
		return
	}

	resp.AddHeader(traceHeader, response.TraceID)
	resp.WriteHeaderAndEntity(http.StatusOK, response)
}

// Ingest handles POST /api/v1/ingest
func (h *Handler) Ingest(req *restful.Request, resp *restful.Response) {
	ctx := req.Request.Context()
	stats, err := h.pipeline.Ingest(ctx)
	if err != nil {
		h.writeError(resp, err)
		return
	}

	resp.AddHeader(traceHeader, stats.TraceID)
	resp.WriteHeaderAndEntity(http.StatusOK, stats)
}

// Health handles GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	count, err := h.index.Count(req.Request.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Index count unavailable")
	}

	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       "1.0.0",
		IndexedChunks: count,
	})
}

func (h *Handler) writeError(resp *restful.Response, err error) {
	traceID := rag.TraceOf(err)
	resp.AddHeader(traceHeader, traceID)

	code := http.StatusInternalServerError
	switch rag.KindOf(err) {
	case rag.KindValidation:
		code = http.StatusBadRequest
	case rag.KindRetrieval, rag.KindGeneration:
		code = http.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) {
		code = http.StatusGatewayTimeout
	}

	middleware.HandleError(resp, err, code, traceID)
}

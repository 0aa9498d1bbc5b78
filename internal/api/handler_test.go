package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/lifeblood/ops-assistant/internal/index/memory"
	"github.com/lifeblood/ops-assistant/internal/rag"
)

type fixedEmbedder struct{}

func (fixedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (fixedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type fixedGenerator struct{ answer string }

func (g fixedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.answer, nil
}

type emptySource struct{}

func (emptySource) Load(ctx context.Context) ([]rag.Document, error) { return nil, nil }

func newTestContainer(t *testing.T) (*restful.Container, *memory.Store) {
	t.Helper()
	nop := zerolog.Nop()
	store := memory.NewStore()

	retriever := rag.NewRetriever(fixedEmbedder{}, store, nop)
	composer := rag.NewComposer(fixedGenerator{answer: "An answer [1]."}, nop)
	indexer := rag.NewIndexer(emptySource{}, rag.NewChunker(2000, 200), fixedEmbedder{}, store, 25, nop)
	pipeline := rag.NewPipeline(retriever, composer, indexer, rag.PipelineConfig{}, nop)

	container := restful.NewContainer()
	RegisterRoutes(container, NewHandler(pipeline, store, nop))
	return container, store
}

func doRequest(t *testing.T, container *restful.Container, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	container.ServeHTTP(rec, req)
	return rec
}

func TestAskEndpoint_EmptyQuestion(t *testing.T) {
	container, _ := newTestContainer(t)

	rec := doRequest(t, container, http.MethodPost, "/api/v1/ask", `{"question": "  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var errResp struct {
		Error   string `json:"error"`
		Code    int    `json:"code"`
		TraceID string `json:"trace_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Invalid error body: %v", err)
	}
	if errResp.TraceID == "" {
		t.Error("Error response must include the trace id")
	}
	if rec.Header().Get("X-Trace-Id") != errResp.TraceID {
		t.Error("X-Trace-Id header should match the body trace id")
	}
}

func TestAskEndpoint_EmptyIndexFallback(t *testing.T) {
	container, _ := newTestContainer(t)

	rec := doRequest(t, container, http.MethodPost, "/api/v1/ask", `{"question": "How long between donations?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp rag.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if resp.Answer != rag.FallbackAnswer {
		t.Errorf("Expected fallback answer, got %q", resp.Answer)
	}
	if len(resp.Citations) != 0 {
		t.Errorf("Expected zero citations, got %d", len(resp.Citations))
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Error("Expected X-Trace-Id header")
	}
}

func TestAskEndpoint_AnswersWithCitations(t *testing.T) {
	container, store := newTestContainer(t)

	chunk := rag.Chunk{DocID: "intervals", ChunkID: 0, Title: "Intervals", Text: "Whole blood donors wait 12 weeks between donations.", Start: 0, End: 51}
	err := store.Upsert(context.Background(), []rag.IndexEntry{
		{ID: chunk.CompositeID(), Embedding: []float32{1, 0, 0}, Chunk: chunk},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rec := doRequest(t, container, http.MethodPost, "/api/v1/ask", `{"question": "How long between donations?", "mode": "checklist", "top_k": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp rag.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if resp.Answer != "An answer [1]." {
		t.Errorf("Unexpected answer %q", resp.Answer)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].DocID != "intervals" {
		t.Errorf("Expected one citation for intervals, got %+v", resp.Citations)
	}
	if resp.Mode != rag.ModeChecklist {
		t.Errorf("Expected checklist mode echoed, got %q", resp.Mode)
	}
}

func TestIngestEndpoint_EmptyDirectory(t *testing.T) {
	container, _ := newTestContainer(t)

	rec := doRequest(t, container, http.MethodPost, "/api/v1/ingest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stats rag.IngestStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if stats.IndexedDocs != 0 || stats.IndexedChunks != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	if stats.TraceID == "" {
		t.Error("Expected trace id in ingest stats")
	}
}

func TestHealthEndpoint(t *testing.T) {
	container, _ := newTestContainer(t)

	rec := doRequest(t, container, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("Expected ok status, got %q", health.Status)
	}
}

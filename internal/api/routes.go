package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/lifeblood/ops-assistant/internal/api/middleware"
	"github.com/lifeblood/ops-assistant/internal/rag"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/ask").
			To(handler.Ask).
			Doc("Answer a question from the indexed documents").
			Metadata(restfulspec.KeyOpenAPITags, []string{"ask"}).
			Reads(rag.AskRequest{}).
			Writes(rag.AskResponse{}).
			Returns(200, "OK", rag.AskResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Upstream Failure", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/ingest").
			To(handler.Ingest).
			Doc("Re-index the configured document directory").
			Metadata(restfulspec.KeyOpenAPITags, []string{"ingest"}).
			Writes(rag.IngestStats{}).
			Returns(200, "OK", rag.IngestStats{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}

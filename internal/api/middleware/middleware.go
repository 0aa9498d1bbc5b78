package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"
)

var errInternal = errors.New("internal server error")

type ErrorResponse struct {
	Error   string `json:"error" description:"Error message"`
	Code    int    `json:"code" description:"HTTP status code"`
	TraceID string `json:"trace_id,omitempty" description:"Request trace identifier"`
}

// HandleError writes the structured error envelope.
func HandleError(resp *restful.Response, err error, code int, traceID string) {
	resp.WriteHeaderAndEntity(code, ErrorResponse{
		Error:   err.Error(),
		Code:    code,
		TraceID: traceID,
	})
}

// Logger logs every request with method, path, status and duration.
func Logger(logger zerolog.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		start := time.Now()
		chain.ProcessFilter(req, resp)
		logger.Info().
			Str("method", req.Request.Method).
			Str("path", req.Request.URL.Path).
			Int("status", resp.StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}

// RecoverPanic turns a panicking handler into a 500 instead of a dead worker.
func RecoverPanic(logger zerolog.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Str("path", req.Request.URL.Path).Msg("Handler panicked")
				HandleError(resp, errInternal, http.StatusInternalServerError, "")
			}
		}()
		chain.ProcessFilter(req, resp)
	}
}

package rag

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so callers can tell a bad request from a
// failed retrieval from a failed generation.
type Kind string

const (
	KindValidation Kind = "validation"
	KindRetrieval  Kind = "retrieval"
	KindGeneration Kind = "generation"
	KindIngestion  Kind = "ingestion"
)

// Error is the pipeline's error type. Stage names the step that failed and
// TraceID correlates the failure with request logs.
type Error struct {
	Kind    Kind
	Stage   string
	TraceID string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error at %s", e.Kind, e.Stage)
	}
	return fmt.Sprintf("%s error at %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, stage, traceID string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, TraceID: traceID, Err: err}
}

// KindOf extracts the Kind from err, or "" if err is not a pipeline Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// TraceOf extracts the trace id from err, or "" if none is attached.
func TraceOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.TraceID
	}
	return ""
}

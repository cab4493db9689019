// Package server provides the HTTP REST API for reel extraction and
// intelligence.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/reel-lens/internal/category"
	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/pipeline"
	"github.com/jonathan/reel-lens/internal/reconstruct"
	"github.com/jonathan/reel-lens/internal/store"
	"github.com/jonathan/reel-lens/internal/tasks"
)

// Stable machine-readable error codes returned to clients. Diagnostic
// detail stays in the logs.
const (
	codeNotFound      = "not_found"
	codeInvalidSource = "invalid_source"
	codeBadRequest    = "bad_request"
	codeValidation    = "validation_failed"
	codeUpstream      = "upstream_error"
	codeQueueFull     = "queue_full"
	codeInternal      = "internal_error"
)

// HTTPStatus maps a domain error to its response status code.
func HTTPStatus(err error) int {
	var (
		taskNotFound  *tasks.ErrNotFound
		docNotFound   *store.NotFoundError
		invalidSource *tasks.ErrInvalidSource
		catValidation *category.ValidationError
		recValidation *reconstruct.ValidationError
		parseErr      *llm.ParseError
		modelErr      *llm.ModelError
		exhausted     *llm.ErrVariantsExhausted
	)
	switch {
	case errors.As(err, &taskNotFound), errors.As(err, &docNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalidSource):
		return http.StatusBadRequest
	case errors.As(err, &catValidation), errors.As(err, &recValidation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &parseErr), errors.As(err, &modelErr), errors.As(err, &exhausted):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorCode maps a domain error to its stable client-facing code.
func errorCode(err error) string {
	switch HTTPStatus(err) {
	case http.StatusNotFound:
		return codeNotFound
	case http.StatusBadRequest:
		return codeInvalidSource
	case http.StatusUnprocessableEntity:
		return codeValidation
	case http.StatusBadGateway:
		return codeUpstream
	case http.StatusServiceUnavailable:
		return codeQueueFull
	default:
		return codeInternal
	}
}

// clientMessage renders the human-readable body message for err. Errors the
// service produced itself (not-found, invalid source, validation) pass
// through; upstream and internal failures get a fixed message so raw
// provider and tool output never reaches clients.
func clientMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusNotFound, http.StatusBadRequest, http.StatusUnprocessableEntity:
		return err.Error()
	case http.StatusBadGateway:
		return "the language model could not process this request"
	case http.StatusServiceUnavailable:
		return "all workers are busy, try again later"
	default:
		return "internal server error"
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/postpulse/internal/adapters/llm"
	uploadqueue "github.com/okian/postpulse/internal/adapters/mq/queue"
	"github.com/okian/postpulse/internal/adapters/repository"
	"github.com/okian/postpulse/internal/domain/prompt"
	"github.com/okian/postpulse/internal/domain/report"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps upstream errors onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrEmptyUpload):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrTooLarge):
		return http.StatusBadRequest, "too_large"
	case errors.Is(err, ErrBackpressure), errors.Is(err, uploadqueue.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, repository.ErrNoSnapshot):
		return http.StatusNotFound, "no_data"
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, report.ErrUnknownReport),
		errors.Is(err, prompt.ErrUnknownPrompt):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, "llm_unavailable"
	case errors.Is(err, ErrUnavailable), errors.Is(err, uploadqueue.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, llm.ErrUpstream), errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err with the status statusFor picks.
func fail(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const maxAnalysisBody = 1 << 20

// analysisRequest names a rendered prompt or carries free prompt text.
type analysisRequest struct {
	Prompt string `json:"prompt"`
	Text   string `json:"text"`
}

func (a analysisRequest) validate() error {
	switch {
	case strings.TrimSpace(a.Prompt) == "" && strings.TrimSpace(a.Text) == "":
		return errors.New("one of prompt or text is required")
	case a.Prompt != "" && a.Text != "":
		return errors.New("prompt and text are mutually exclusive")
	}
	return nil
}

type analysisResponse struct {
	Prompt   string `json:"prompt,omitempty"`
	Analysis string `json:"analysis"`
}

// AnalysisHandler forwards prompts to the configured language model.
type AnalysisHandler struct {
	deps AnalysisDependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// HandlePostAnalysis handles POST /analysis requests.
func (h *AnalysisHandler) HandlePostAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_analysis"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.deps.AnalysisEnabled() {
		writeError(w, http.StatusServiceUnavailable, "llm_unavailable", NewKind(op, ErrUnavailable))
		return
	}

	var req analysisRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalysisBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	var (
		out string
		err error
	)
	if req.Prompt != "" {
		out, err = h.deps.AnalyzePrompt(r.Context(), strings.TrimSpace(req.Prompt))
	} else {
		out, err = h.deps.AnalyzeText(r.Context(), req.Text)
	}
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{Prompt: req.Prompt, Analysis: out})
}

package api

import (
	"net/http"
	"strings"

	"github.com/okian/postpulse/internal/domain/prompt"
)

type promptsResponse struct {
	Prompts prompt.Prompts `json:"prompts"`
}

type promptResponse struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// PromptsHandler serves the LLM prompts rendered from the latest reports.
type PromptsHandler struct {
	deps PromptDependencies
}

// NewPromptsHandler creates a new prompts handler.
func NewPromptsHandler(deps PromptDependencies) *PromptsHandler {
	return &PromptsHandler{deps: deps}
}

// HandleGetPrompts handles GET /prompts requests.
func (h *PromptsHandler) HandleGetPrompts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_prompts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ps, err := h.deps.Prompts(r.Context())
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, promptsResponse{Prompts: ps})
}

// HandleGetPrompt handles GET /prompts/{name}; "recommendation" selects the
// recommendation prompt.
func (h *PromptsHandler) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_prompt"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/prompts/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var (
		text string
		err  error
	)
	if name == prompt.NameRecommendation {
		text, err = h.deps.RecommendationPrompt(r.Context())
	} else {
		var ps prompt.Prompts
		if ps, err = h.deps.Prompts(r.Context()); err == nil {
			text, err = ps.Get(name)
		}
	}
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Name: name, Prompt: text})
}

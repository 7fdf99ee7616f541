package api

import (
	"net/http"
	"strings"

	"github.com/okian/postpulse/internal/domain/report"
)

type reportsResponse struct {
	UploadID string `json:"upload_id"`
	report.Set
}

type reportResponse struct {
	UploadID string `json:"upload_id"`
	Name     string `json:"name"`
	Data     any    `json:"data"`
}

// ReportsHandler serves the reports of the latest processed upload.
type ReportsHandler struct {
	deps ReportDependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportDependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandleGetReports handles GET /reports requests.
func (h *ReportsHandler) HandleGetReports(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_reports"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, set, err := h.deps.Reports(r.Context())
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, reportsResponse{UploadID: id, Set: set})
}

// HandleGetReport handles GET /reports/{name} requests.
func (h *ReportsHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/reports/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	id, set, err := h.deps.Reports(r.Context())
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	data, err := set.Get(name)
	if err != nil {
		fail(w, NewKind(op, err))
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{UploadID: id, Name: name, Data: data})
}

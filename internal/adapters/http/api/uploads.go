package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/postpulse/internal/adapters/ingest"
	"github.com/okian/postpulse/internal/domain/model"
)

// Upload identification sources, in priority order.
const (
	headerIdempotencyKey = "Idempotency-Key"
	queryUploadID        = "upload_id"
	queryFilename        = "filename"
	queryFormat          = "format"
	formFileField        = "file"
)

type uploadResponse struct {
	UploadID  string `json:"upload_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// UploadsHandler accepts export files and reports their processing state.
type UploadsHandler struct {
	deps     UploadDependencies
	maxBytes int64
}

// NewUploadsHandler creates a new uploads handler.
func NewUploadsHandler(deps UploadDependencies, maxBytes int64) *UploadsHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &UploadsHandler{deps: deps, maxBytes: maxBytes}
}

// HandlePostUpload handles POST /uploads with either a raw body or a
// multipart form carrying a "file" field.
func (h *UploadsHandler) HandlePostUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_upload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	u, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			fail(w, WrapKind(op, ErrTooLarge, err))
		case errors.Is(err, ErrEmptyUpload):
			fail(w, Wrap(op, err))
		default:
			fail(w, WrapKind(op, ErrBadRequest, err))
		}
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), u.ID) {
		writeJSON(w, http.StatusOK, uploadResponse{UploadID: u.ID, Status: "duplicate", Duplicate: true})
		return
	}

	if err := h.deps.Enqueue(r.Context(), u); err != nil {
		// Rollback the "seen" status so the client can retry
		h.deps.Unrecord(r.Context(), u.ID)
		fail(w, Wrap(op, err))
		return
	}

	w.Header().Set("Location", "/uploads/"+u.ID)
	writeJSON(w, http.StatusAccepted, uploadResponse{UploadID: u.ID, Status: "accepted"})
}

// readUpload extracts the file bytes, name and kind from r.
func (h *UploadsHandler) readUpload(r *http.Request) (model.Upload, error) {
	q := r.URL.Query()
	u := model.Upload{
		ID:         uploadID(r),
		Filename:   q.Get(queryFilename),
		ReceivedAt: time.Now().UTC(),
	}
	contentType := r.Header.Get("Content-Type")

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "multipart/form-data" {
		body, name, partType, err := readFormFile(r)
		if err != nil {
			return u, err
		}
		u.Body = body
		if name != "" {
			u.Filename = name
		}
		contentType = partType
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return u, err
		}
		u.Body = body
	}

	if len(bytes.TrimSpace(u.Body)) == 0 {
		return u, ErrEmptyUpload
	}

	if f := q.Get(queryFormat); f != "" {
		kind, err := ingest.ParseKind(f)
		if err != nil {
			return u, err
		}
		u.Kind = string(kind)
	} else {
		u.Kind = string(ingest.KindFromName(u.Filename, contentType))
	}
	return u, nil
}

// readFormFile streams the multipart body and returns the "file" part.
func readFormFile(r *http.Request) ([]byte, string, string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", "", err
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", "", fmt.Errorf("missing form field %q", formFileField)
		}
		if err != nil {
			return nil, "", "", err
		}
		if part.FormName() != formFileField {
			_ = part.Close()
			continue
		}
		body, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, "", "", err
		}
		return body, part.FileName(), part.Header.Get("Content-Type"), nil
	}
}

func uploadID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(headerIdempotencyKey)); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.URL.Query().Get(queryUploadID)); id != "" {
		return id
	}
	return uuid.NewString()
}

// HandleGetUpload handles GET /uploads/{upload_id} requests.
func (h *UploadsHandler) HandleGetUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_upload"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/uploads/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	st, err := h.deps.UploadStatus(r.Context(), id)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

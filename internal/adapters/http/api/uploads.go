package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/types"
)

const (
	defaultMaxUploadBytes = 32 << 20
	multipartMemory       = 8 << 20
	defaultJobsLimit      = 50
	fallbackUploadName    = "upload"
)

// UploadsHandler handles dataset uploads and job lookups.
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

// HandleUploads handles POST /uploads and GET /uploads.
//
// POST accepts either a multipart form with a "file" part or a raw body
// named by ?name=. With ?wait=true the upload is ingested before the
// response is written.
func (h *UploadsHandler) HandleUploads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *UploadsHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	name, data, err := h.readUpload(w, r)
	if err != nil {
		fail(w, err)
		return
	}

	wait, _ := strconv.ParseBool(query(r, "wait"))
	submit := h.deps.Submit
	if wait {
		submit = h.deps.Ingest
	}
	job, dup, err := submit(r.Context(), name, data)
	if err != nil {
		fail(w, err)
		return
	}

	view := types.NewJobView(job)
	view.Duplicate = dup
	w.Header().Set("Location", "/uploads/"+job.ID)

	switch {
	case dup:
		writeJSON(w, http.StatusOK, view)
	case job.Status == model.JobFailed:
		writeJSON(w, http.StatusUnprocessableEntity, view)
	case job.Status == model.JobSucceeded:
		writeJSON(w, http.StatusCreated, view)
	default:
		writeJSON(w, http.StatusAccepted, view)
	}
}

// readUpload extracts the file name and bytes from either request shape.
func (h *UploadsHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartMemory)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrMissingFile, err)
		}
		defer file.Close()
		data, err := readLimited(file, h.maxBytes)
		return hdr.Filename, data, err
	}

	name := query(r, "name")
	if name == "" {
		name = fallbackUploadName
	}
	data, err := readLimited(r.Body, h.maxBytes)
	return name, data, err
}

func readLimited(rd io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, maxBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read body: %w", ErrBadRequest, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, &http.MaxBytesError{Limit: maxBytes}
	}
	return data, nil
}

func (h *UploadsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobsLimit
	if s := query(r, "limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		limit = n
	}
	jobs := h.deps.Jobs(r.Context(), limit)
	views := make([]types.JobView, len(jobs))
	for i, j := range jobs {
		views[i] = types.NewJobView(j)
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGetUpload handles GET /uploads/{id} requests.
func (h *UploadsHandler) HandleGetUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/uploads/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	job, err := h.deps.Job(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewJobView(job))
}

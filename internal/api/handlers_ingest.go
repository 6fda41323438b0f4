package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsift/internal/parser"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// ingestEntry describes one accepted or rejected upload.
type ingestEntry struct {
	Filename string             `json:"filename"`
	JobID    string             `json:"job_id,omitempty"`
	Status   pipeline.JobStatus `json:"status,omitempty"`
	PollURL  string             `json:"poll_url,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// uploadError is a rejected upload and the status code it maps to.
type uploadError struct {
	msg  string
	code int
}

func (e *uploadError) Error() string { return e.msg }

// readUpload validates the part's extension and size and returns its bytes.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, *uploadError) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, &uploadError{fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest}
	}

	f, err := fh.Open()
	if err != nil {
		return filename, nil, &uploadError{"failed to open file", http.StatusInternalServerError}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, &uploadError{"failed to read file", http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, &uploadError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
	}
	return filename, data, nil
}

// enqueue creates a job for the upload and hands it to the workers.
func (s *Server) enqueue(filename, title string, data []byte) (ingestEntry, error) {
	job := pipeline.NewJob(filename, title, data)
	if err := s.orchestrator.Submit(job); err != nil {
		return ingestEntry{Filename: filename, Error: err.Error()}, err
	}
	s.log.Info("job queued", "job_id", job.ID, "filename", filename, "bytes", len(data))
	return ingestEntry{
		Filename: filename,
		JobID:    job.ID,
		Status:   pipeline.StatusQueued,
		PollURL:  fmt.Sprintf("/api/ingest/%s/status", job.ID),
	}, nil
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["file"]
	if len(parts) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	filename, data, uerr := s.readUpload(parts[0])
	if uerr != nil {
		jsonError(w, uerr.msg, uerr.code)
		return
	}

	entry, err := s.enqueue(filename, r.FormValue("title"), data)
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(entry)
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"filename": snap.Filename,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

// handleBatchIngest queues every part of the "files" field. Rejected parts
// are reported inline and do not fail the request.
func (s *Server) handleBatchIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	entries := make([]ingestEntry, 0, len(files))
	for _, fh := range files {
		filename, data, uerr := s.readUpload(fh)
		if uerr != nil {
			entries = append(entries, ingestEntry{Filename: filename, Error: uerr.msg})
			continue
		}
		entry, _ := s.enqueue(filename, "", data)
		entries = append(entries, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": entries})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// sanitizeFilename keeps only the base name of an uploaded file.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	if name == "" || name == "." {
		return "unnamed"
	}
	return name
}

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/dgallion1/docsift/internal/textnorm"
	"github.com/go-chi/chi/v5"
)

type imageView struct {
	Name    string `json:"name"`
	MIME    string `json:"mime"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	DataURI string `json:"data_uri"`
}

type resultView struct {
	JobID    string             `json:"job_id"`
	Status   pipeline.JobStatus `json:"status"`
	Title    string             `json:"title"`
	Method   document.Method    `json:"method"`
	Text     string             `json:"text"`
	Pages    []document.Page    `json:"pages"`
	Images   []imageView        `json:"images"`
	Warnings []string           `json:"warnings"`
}

// finishedJob resolves the job in the URL and writes an error unless it has
// finished. The result is nil for failed jobs.
func (s *Server) finishedJob(w http.ResponseWriter, r *http.Request) (pipeline.JobSnapshot, *document.Result, bool) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return pipeline.JobSnapshot{}, nil, false
	}
	snap := job.Snapshot()
	if !snap.Status.Finished() {
		jsonError(w, fmt.Sprintf("job is still %s", snap.Status), http.StatusConflict)
		return snap, nil, false
	}
	return snap, job.Result(), true
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	snap, res, ok := s.finishedJob(w, r)
	if !ok {
		return
	}
	if res == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"job_id": snap.ID,
			"status": snap.Status,
			"errors": snap.Progress.Errors,
		})
		return
	}

	view := resultView{
		JobID:    snap.ID,
		Status:   snap.Status,
		Title:    res.Title,
		Method:   res.Method,
		Text:     res.Text,
		Pages:    res.Pages,
		Images:   make([]imageView, 0, len(res.Images)),
		Warnings: res.Warnings,
	}
	if view.Pages == nil {
		view.Pages = []document.Page{}
	}
	if view.Warnings == nil {
		view.Warnings = []string{}
	}
	for _, img := range res.Images {
		view.Images = append(view.Images, imageView{
			Name:    img.Name,
			MIME:    img.MIME,
			Width:   img.Width,
			Height:  img.Height,
			DataURI: img.DataURI(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// handleTextDownload serves the extracted text as a .txt attachment.
func (s *Server) handleTextDownload(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.finishedJob(w, r)
	if !ok {
		return
	}
	if res == nil || res.Text == "" || res.Text == textnorm.NoText {
		jsonError(w, "no text to download", http.StatusNotFound)
		return
	}

	name := fmt.Sprintf("extracted-text-%d.txt", time.Now().UnixMilli())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write([]byte(res.Text))
}

// handleImageDownload serves one extracted image by its zero-based index.
func (s *Server) handleImageDownload(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.finishedJob(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		jsonError(w, "invalid image index", http.StatusBadRequest)
		return
	}
	if res == nil || index >= len(res.Images) {
		jsonError(w, "image not found", http.StatusNotFound)
		return
	}

	img := res.Images[index]
	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Write(img.Data)
}

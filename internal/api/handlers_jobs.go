package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleListJobs lists every retained job.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	snaps := make([]pipeline.JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		snaps = append(snaps, j.Snapshot())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"jobs": snaps})
}

// handleDeleteJob drops a finished job and its extraction result.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	found, err := s.orchestrator.RemoveJob(jobID)
	switch {
	case errors.Is(err, pipeline.ErrJobRunning):
		jsonError(w, err.Error(), http.StatusConflict)
		return
	case !found:
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"job_id": jobID, "deleted": true})
}

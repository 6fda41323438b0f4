package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/docsift/internal/chunker"
)

// handleChunks splits a finished job's result into heading-aware chunks.
// size, overlap and min override the configured token targets.
func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	snap, res, ok := s.finishedJob(w, r)
	if !ok {
		return
	}
	if res == nil {
		jsonError(w, "job has no result", http.StatusUnprocessableEntity)
		return
	}

	cfg := chunker.Config{
		ChunkSize:    queryInt(r, "size", s.cfg.DefaultChunkSize),
		ChunkOverlap: queryInt(r, "overlap", s.cfg.DefaultChunkOverlap),
		MinChunk:     queryInt(r, "min", 0),
	}
	chunks := chunker.FromResult(res, cfg)
	if chunks == nil {
		chunks = []chunker.Chunk{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id": snap.ID,
		"chunks": chunks,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

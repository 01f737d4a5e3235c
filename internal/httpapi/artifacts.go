package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ent0n29/lenstalk/internal/artifact"
)

type artifactResponse struct {
	artifact.Record
	AudioURL string `json:"audio_url"`
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "artifact storage not configured")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.archive.Get(r.Context(), id)
	if errors.Is(err, artifact.ErrNotFound) {
		respondError(w, http.StatusNotFound, "artifact_not_found", err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "storage_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, artifactResponse{Record: rec, AudioURL: s.archive.AudioURL(rec.ID)})
}

func (s *Server) handleArtifactAudio(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "artifact storage not configured")
		return
	}
	data, err := s.archive.Audio(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, artifact.ErrNotFound) {
		respondError(w, http.StatusNotFound, "artifact_not_found", err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "storage_error", err.Error())
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "artifact storage not configured")
		return
	}
	guestID := strings.TrimSpace(r.URL.Query().Get("guest_id"))
	recs, err := s.archive.Recent(r.Context(), guestID, queryInt(r, "limit", 10))
	if err != nil {
		respondError(w, http.StatusBadGateway, "storage_error", err.Error())
		return
	}
	out := make([]artifactResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, artifactResponse{Record: rec, AudioURL: s.archive.AudioURL(rec.ID)})
	}
	respondJSON(w, http.StatusOK, map[string]any{"artifacts": out})
}

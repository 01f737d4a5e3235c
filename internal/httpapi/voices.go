package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ent0n29/lenstalk/internal/audio"
	"github.com/ent0n29/lenstalk/internal/persona"
)

const maxPreviewChars = 300

type previewRequest struct {
	PersonaID string `json:"persona_id"`
	Language  string `json:"language"`
	Text      string `json:"text"`
}

// handleVoicePreview speaks a short line in a persona's voice. Without a voice
// credential the placeholder audio is returned and X-Degraded is set.
func (s *Server) handleVoicePreview(w http.ResponseWriter, r *http.Request) {
	if s.speech == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "speech not configured")
		return
	}

	var req previewRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	id, err := persona.Parse(req.PersonaID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown_persona", err.Error())
		return
	}
	lang := persona.ParseLanguage(req.Language)
	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = persona.MustGet(id).FallbackIn(lang, 1)
	}
	if runes := []rune(text); len(runes) > maxPreviewChars {
		text = string(runes[:maxPreviewChars])
	}

	out := s.speech.Synthesize(r.Context(), id, lang, text)
	if out.IsFailed() {
		respondError(w, http.StatusBadGateway, "tts_preview_failed", out.Reason)
		return
	}
	wav, err := audio.EncodeWAVPCM16LE(out.Value.PCM, audio.SampleRate)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "tts_preview_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Audio-Provider", out.Value.Provider)
	w.Header().Set("X-Degraded", strconv.FormatBool(!out.IsOK()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

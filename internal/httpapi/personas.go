package httpapi

import (
	"net/http"

	"github.com/ent0n29/lenstalk/internal/persona"
)

type personaSummary struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	VoiceID        string             `json:"voice_id"`
	VoiceLanguages []persona.Language `json:"voice_languages"`
	Tone           string             `json:"tone"`
	Focus          string             `json:"focus"`
	Pitch          float64            `json:"pitch"`
	Rate           float64            `json:"rate"`
	Volume         float64            `json:"volume"`
}

func (s *Server) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	lang := persona.ParseLanguage(r.URL.Query().Get("lang"))
	out := make([]personaSummary, 0, persona.Count)
	for _, id := range persona.All() {
		d := persona.MustGet(id)
		out = append(out, personaSummary{
			ID:             string(d.ID),
			Name:           d.Name(lang),
			VoiceID:        d.VoiceID,
			VoiceLanguages: d.VoiceLanguages,
			Tone:           d.Style.Tone,
			Focus:          d.Style.Focus,
			Pitch:          d.Prosody.Pitch,
			Rate:           d.Prosody.Rate,
			Volume:         d.Prosody.Volume,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"language":  lang,
		"languages": persona.Languages,
		"personas":  out,
	})
}

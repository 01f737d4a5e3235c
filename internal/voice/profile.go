package voice

import (
	"slices"
	"strings"

	"github.com/ent0n29/lenstalk/internal/persona"
)

// DefaultModelID is used when the configuration does not name a model.
const DefaultModelID = "eleven_multilingual_v2"

// Profile is the resolved voice for one persona. It is a value copied out of the
// persona catalog and never mutated.
type Profile struct {
	PersonaID      persona.ID
	VoiceID        string
	Pitch          float64
	Rate           float64
	Volume         float64
	Languages      []persona.Language
	Expressiveness float64
}

// Resolver maps personas to voice profiles and builds synthesis requests.
type Resolver struct {
	modelID string
	// overrides replaces catalog voice ids, keyed by persona.
	overrides map[persona.ID]string
}

func NewResolver(modelID string, overrides map[persona.ID]string) *Resolver {
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultModelID
	}
	return &Resolver{modelID: strings.TrimSpace(modelID), overrides: overrides}
}

func (r *Resolver) Resolve(id persona.ID) (Profile, error) {
	d, err := persona.Get(id)
	if err != nil {
		return Profile{}, err
	}
	voiceID := d.VoiceID
	if v := strings.TrimSpace(r.overrides[id]); v != "" {
		voiceID = v
	}
	return Profile{
		PersonaID:      d.ID,
		VoiceID:        voiceID,
		Pitch:          d.Prosody.Pitch,
		Rate:           d.Prosody.Rate,
		Volume:         d.Prosody.Volume,
		Languages:      slices.Clone(d.VoiceLanguages),
		Expressiveness: d.Style.Expressiveness,
	}, nil
}

// Request builds the synthesis request for text spoken by p in lang. The
// language code is pinned only when the voice lists lang natively.
func (r *Resolver) Request(p Profile, text string, lang persona.Language) Request {
	spoken := speakableText(text)
	if spoken == "" {
		spoken = strings.TrimSpace(text)
	}
	req := Request{
		Text:     spoken,
		Profile:  p,
		ModelID:  r.modelID,
		Settings: SettingsForProfile(p),
	}
	if slices.Contains(p.Languages, lang) {
		req.LanguageCode = string(lang)
	}
	return req
}

// SettingsForProfile derives voice settings from prosody. Lower stability gives
// livelier but less consistent speech, so it follows expressiveness.
func SettingsForProfile(p Profile) Settings {
	expr := clampFloat(p.Expressiveness, 0, 1)
	return Settings{
		Stability:       clampFloat(0.75-expr*0.45, 0.25, 0.75),
		SimilarityBoost: 0.85,
		Style:           clampFloat(expr*0.6, 0, 1),
		SpeakerBoost:    true,
		Speed:           clampFloat(p.Rate, 0.7, 1.2),
	}
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/config"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/voice"
)

// buildSynthesizer resolves VOICE_PROVIDER. auto uses ElevenLabs when a key is
// present; placeholder forces marker tones even with a key.
func buildSynthesizer(cfg config.Config, logger zerolog.Logger) (*voice.Synthesizer, VoiceInfo, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.VoiceProvider))
	if mode == "" {
		mode = "auto"
	}
	hasKey := strings.TrimSpace(cfg.ElevenLabsAPIKey) != ""

	var primary voice.Provider
	info := VoiceInfo{ModelID: cfg.ElevenLabsModel}
	switch mode {
	case "elevenlabs", "auto":
		if !hasKey {
			if mode == "elevenlabs" {
				return nil, VoiceInfo{}, fmt.Errorf("VOICE_PROVIDER=elevenlabs but ELEVENLABS_API_KEY is not set")
			}
			info.Provider = "placeholder"
			info.Detail = "placeholder (no elevenlabs key)"
			break
		}
		primary = voice.NewElevenLabsProvider(voice.ElevenLabsConfig{
			APIKey:       cfg.ElevenLabsAPIKey,
			BaseURL:      cfg.ElevenLabsBaseURL,
			OutputFormat: cfg.ElevenLabsOutputFormat,
		})
		info.Provider = "elevenlabs"
		info.Detail = "elevenlabs rest (placeholder fallback, " + cfg.ElevenLabsOutputFormat + ")"
	case "placeholder":
		info.Provider = "placeholder"
		info.Detail = "placeholder"
	default:
		return nil, VoiceInfo{}, fmt.Errorf("invalid VOICE_PROVIDER: %q (expected auto|elevenlabs|placeholder)", cfg.VoiceProvider)
	}

	overrides := make(map[persona.ID]string, len(cfg.VoiceOverrides))
	for raw, voiceID := range cfg.VoiceOverrides {
		id, err := persona.Parse(raw)
		if err != nil {
			return nil, VoiceInfo{}, fmt.Errorf("voice override: %w", err)
		}
		overrides[id] = voiceID
	}

	synth := voice.NewSynthesizer(
		voice.NewResolver(cfg.ElevenLabsModel, overrides),
		primary,
		voice.SynthesizerConfig{
			Policy:   policyFor(cfg, cfg.SynthesisTimeout),
			Cooldown: cfg.CredentialCooldown,
		},
		logger,
	)
	return synth, info, nil
}

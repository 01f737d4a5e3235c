package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ent0n29/lenstalk/internal/audio"
	"github.com/ent0n29/lenstalk/internal/reliability"
)

type ElevenLabsConfig struct {
	APIKey       string
	BaseURL      string
	OutputFormat string
	HTTPClient   *http.Client
}

// ElevenLabsProvider calls the text-to-speech REST endpoint once per turn.
type ElevenLabsProvider struct {
	cfg    ElevenLabsConfig
	client *http.Client
}

func NewElevenLabsProvider(cfg ElevenLabsConfig) *ElevenLabsProvider {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if strings.TrimSpace(cfg.OutputFormat) == "" {
		cfg.OutputFormat = audio.EncodingPCM44100
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &ElevenLabsProvider{cfg: cfg, client: client}
}

func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, req Request) (Audio, error) {
	if strings.TrimSpace(req.Profile.VoiceID) == "" {
		return Audio{}, fmt.Errorf("voice_id is required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return Audio{}, fmt.Errorf("text is required")
	}
	modelID := strings.TrimSpace(req.ModelID)
	if modelID == "" {
		modelID = DefaultModelID
	}

	u, err := url.Parse(strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(req.Profile.VoiceID))
	if err != nil {
		return Audio{}, err
	}
	q := u.Query()
	q.Set("output_format", p.cfg.OutputFormat)
	u.RawQuery = q.Encode()

	s := req.Settings
	payload := map[string]any{
		"text":     req.Text,
		"model_id": modelID,
		"voice_settings": map[string]any{
			"stability":         clampFloat(s.Stability, 0, 1),
			"similarity_boost":  clampFloat(s.SimilarityBoost, 0, 1),
			"style":             clampFloat(s.Style, 0, 1),
			"use_speaker_boost": s.SpeakerBoost,
			"speed":             clampFloat(s.Speed, 0.7, 1.2),
		},
	}
	if req.LanguageCode != "" {
		payload["language_code"] = req.LanguageCode
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Audio{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return Audio{}, err
	}
	httpReq.Header.Set("xi-api-key", p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/*")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Audio{}, fmt.Errorf("elevenlabs request: %w: %w", reliability.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Audio{}, &reliability.StatusError{
			Service: p.Name(),
			Status:  resp.StatusCode,
			Message: errorDetail(raw),
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Audio{}, fmt.Errorf("elevenlabs read audio: %w: %w", reliability.ErrNetwork, err)
	}
	if len(data) == 0 {
		return Audio{}, fmt.Errorf("elevenlabs: %w: empty audio body", reliability.ErrParse)
	}
	return Audio{Data: data, Format: p.cfg.OutputFormat}, nil
}

// errorDetail extracts the human-readable message from an ElevenLabs error body.
func errorDetail(raw []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != nil {
		switch d := body.Detail.(type) {
		case string:
			return d
		case map[string]any:
			if msg, ok := d["message"].(string); ok {
				return msg
			}
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "no detail"
	}
	return msg
}

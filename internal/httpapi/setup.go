package httpapi

import (
	"net/http"
	"strings"
)

type setupCheck struct {
	ID     string `json:"id"`
	Status string `json:"status"` // ok|warn|error
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type setupStatusResponse struct {
	VoiceProvider string       `json:"voice_provider"`
	VisionModel   string       `json:"vision_model"`
	UsageBackend  string       `json:"usage_backend"`
	ArtifactStore string       `json:"artifact_store"`
	AudioStore    string       `json:"audio_store"`
	Checks        []setupCheck `json:"checks"`
}

func (s *Server) handleSetupStatus(w http.ResponseWriter, _ *http.Request) {
	voiceProvider := strings.ToLower(strings.TrimSpace(s.cfg.VoiceProvider))
	if voiceProvider == "" {
		voiceProvider = "auto"
	}
	checks := make([]setupCheck, 0, 8)

	if strings.TrimSpace(s.cfg.GeminiAPIKey) == "" {
		checks = append(checks, setupCheck{
			ID:     "gemini_key",
			Status: "warn",
			Label:  "Gemini API key",
			Detail: "GEMINI_API_KEY is not set; descriptions and turns use templates",
			Fix:    "Set GEMINI_API_KEY to enable model-written narration.",
		})
	} else {
		checks = append(checks, setupCheck{
			ID:     "gemini_key",
			Status: "ok",
			Label:  "Gemini API key",
			Detail: "present",
		})
	}

	switch voiceProvider {
	case "placeholder":
		checks = append(checks, setupCheck{
			ID:     "voice_provider",
			Status: "warn",
			Label:  "Voice backend is placeholder",
			Detail: "Segments are marker tones, not speech.",
			Fix:    "Set VOICE_PROVIDER=auto and ELEVENLABS_API_KEY.",
		})
	default:
		if strings.TrimSpace(s.cfg.ElevenLabsAPIKey) == "" {
			checks = append(checks, setupCheck{
				ID:     "elevenlabs_key",
				Status: "warn",
				Label:  "ElevenLabs API key",
				Detail: "ELEVENLABS_API_KEY is not set; every segment uses the placeholder",
				Fix:    "Set ELEVENLABS_API_KEY.",
			})
		} else {
			checks = append(checks, setupCheck{
				ID:     "elevenlabs_key",
				Status: "ok",
				Label:  "ElevenLabs API key",
				Detail: "present",
			})
		}
	}

	usageBackend := s.usageBackend()
	if usageBackend == "memory" {
		checks = append(checks, setupCheck{
			ID:     "usage_store",
			Status: "warn",
			Label:  "Guest usage",
			Detail: "in-memory only",
			Fix:    "Set REDIS_URL to share guest limits across replicas.",
		})
	} else {
		checks = append(checks, setupCheck{
			ID:     "usage_store",
			Status: "ok",
			Label:  "Guest usage",
			Detail: usageBackend,
		})
	}

	artifactStore := s.artifactStore()
	if artifactStore == "memory" {
		checks = append(checks, setupCheck{
			ID:     "artifact_store",
			Status: "warn",
			Label:  "Artifact persistence",
			Detail: "in-memory only",
			Fix:    "Set DATABASE_URL or MONGO_URI to keep artifacts across restarts.",
		})
	} else {
		checks = append(checks, setupCheck{
			ID:     "artifact_store",
			Status: "ok",
			Label:  "Artifact persistence",
			Detail: artifactStore,
		})
	}

	audioStore := "memory"
	if strings.TrimSpace(s.cfg.S3Bucket) != "" {
		audioStore = "s3"
	}
	if s.archive == nil {
		checks = append(checks, setupCheck{
			ID:     "archive",
			Status: "warn",
			Label:  "Archive",
			Detail: "disabled; audio is returned inline",
		})
	}

	respondJSON(w, http.StatusOK, setupStatusResponse{
		VoiceProvider: voiceProvider,
		VisionModel:   s.cfg.GeminiModel,
		UsageBackend:  usageBackend,
		ArtifactStore: artifactStore,
		AudioStore:    audioStore,
		Checks:        checks,
	})
}

func (s *Server) usageBackend() string {
	switch {
	case s.cfg.GuestLimit <= 0:
		return "unlimited"
	case strings.TrimSpace(s.cfg.RedisURL) != "":
		return "redis"
	default:
		return "memory"
	}
}

func (s *Server) artifactStore() string {
	switch {
	case strings.TrimSpace(s.cfg.DatabaseURL) != "":
		return "postgres"
	case strings.TrimSpace(s.cfg.MongoURI) != "":
		return "mongo"
	default:
		return "memory"
	}
}

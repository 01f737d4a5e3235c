package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" || cfg.VoiceProvider != "auto" {
		t.Fatalf("unexpected defaults: bind=%q provider=%q", cfg.BindAddr, cfg.VoiceProvider)
	}
	if cfg.DefaultRounds != 3 || cfg.SilenceGap != 800*time.Millisecond || cfg.SynthesisConcurrency != 1 {
		t.Fatalf("pipeline defaults = rounds %d gap %v concurrency %d", cfg.DefaultRounds, cfg.SilenceGap, cfg.SynthesisConcurrency)
	}
	if cfg.ElevenLabsOutputFormat != "pcm_44100" {
		t.Fatalf("ElevenLabsOutputFormat = %q, want pcm_44100", cfg.ElevenLabsOutputFormat)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9191")
	t.Setenv("PIPELINE_ROUNDS", "5")
	t.Setenv("PIPELINE_SILENCE_GAP", "1200ms")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "yes")
	t.Setenv("VOICE_PROVIDER", "Placeholder")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9191" || cfg.DefaultRounds != 5 || cfg.SilenceGap != 1200*time.Millisecond {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if !cfg.AllowAnyOrigin || cfg.VoiceProvider != "placeholder" {
		t.Fatalf("AllowAnyOrigin = %v VoiceProvider = %q", cfg.AllowAnyOrigin, cfg.VoiceProvider)
	}
}

func TestLoadFileThenEnvironment(t *testing.T) {
	setCoreEnvEmpty(t)
	path := filepath.Join(t.TempDir(), "lenstalk.yaml")
	body := `
server:
  bindAddr: ":7000"
  publicBaseURL: "https://lenstalk.example"
pipeline:
  rounds: 2
  silenceGap: 500ms
guest:
  limit: 0
storage:
  s3:
    bucket: lenstalk-audio
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("LENSTALK_CONFIG_FILE", path)
	t.Setenv("PIPELINE_ROUNDS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":7000" || cfg.PublicBaseURL != "https://lenstalk.example" {
		t.Fatalf("file values not applied: bind=%q base=%q", cfg.BindAddr, cfg.PublicBaseURL)
	}
	if cfg.DefaultRounds != 4 {
		t.Fatalf("DefaultRounds = %d, want env value 4", cfg.DefaultRounds)
	}
	if cfg.SilenceGap != 500*time.Millisecond || cfg.GuestLimit != 0 || cfg.S3Bucket != "lenstalk-audio" {
		t.Fatalf("file values = gap %v limit %d bucket %q", cfg.SilenceGap, cfg.GuestLimit, cfg.S3Bucket)
	}
}

func TestLoadVoiceOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	path := filepath.Join(t.TempDir(), "lenstalk.yaml")
	body := `
voice:
  outputFormat: mp3_44100_128
  voiceOverrides:
    Poet: file-poet
    historian: file-historian
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("LENSTALK_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ElevenLabsOutputFormat != "mp3_44100_128" {
		t.Fatalf("ElevenLabsOutputFormat = %q, want mp3_44100_128", cfg.ElevenLabsOutputFormat)
	}
	if cfg.VoiceOverrides["poet"] != "file-poet" || cfg.VoiceOverrides["historian"] != "file-historian" {
		t.Fatalf("VoiceOverrides = %v", cfg.VoiceOverrides)
	}

	t.Setenv("ELEVENLABS_VOICE_OVERRIDES", " poet = env-poet ,")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.VoiceOverrides) != 1 || cfg.VoiceOverrides["poet"] != "env-poet" {
		t.Fatalf("VoiceOverrides = %v, want env map only", cfg.VoiceOverrides)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key, value, want string
	}{
		{"PIPELINE_ROUNDS", "11", "PIPELINE_ROUNDS"},
		{"PIPELINE_ROUNDS", "x", "parse error"},
		{"VOICE_PROVIDER", "kokoro", "VOICE_PROVIDER"},
		{"VOICE_PROVIDER", "elevenlabs", "ELEVENLABS_API_KEY"},
		{"PIPELINE_SYNTHESIS_CONCURRENCY", "0", "CONCURRENCY"},
		{"PIPELINE_VISION_TIMEOUT", "10ms", "PIPELINE_VISION_TIMEOUT"},
		{"APP_ALLOW_ANY_ORIGIN", "maybe", "expected bool"},
		{"ELEVENLABS_TTS_OUTPUT_FORMAT", "ulaw_8000", "ELEVENLABS_TTS_OUTPUT_FORMAT"},
		{"ELEVENLABS_TTS_OUTPUT_FORMAT", "opus_48000_64", "ELEVENLABS_TTS_OUTPUT_FORMAT"},
		{"ELEVENLABS_VOICE_OVERRIDES", "pirate=abc", "ELEVENLABS_VOICE_OVERRIDES"},
		{"ELEVENLABS_VOICE_OVERRIDES", "poet", "ELEVENLABS_VOICE_OVERRIDES"},
		{"ELEVENLABS_VOICE_OVERRIDES", "poet=", "ELEVENLABS_VOICE_OVERRIDES"},
	}
	for _, c := range cases {
		t.Run(c.key+"="+c.value, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(c.key, c.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("Load() error = %v, want mention of %q", err, c.want)
			}
		})
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("LENSTALK_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("Load() should fail for a missing config file")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"LENSTALK_CONFIG_FILE",
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_TRUST_PROXY_HEADERS",
		"APP_PUBLIC_BASE_URL",
		"APP_SESSION_RETENTION",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"GEMINI_API_KEY",
		"GEMINI_MODEL",
		"GEMINI_BASE_URL",
		"VOICE_PROVIDER",
		"VOICE_CREDENTIAL_COOLDOWN",
		"ELEVENLABS_API_KEY",
		"ELEVENLABS_BASE_URL",
		"ELEVENLABS_TTS_MODEL_ID",
		"ELEVENLABS_TTS_OUTPUT_FORMAT",
		"ELEVENLABS_VOICE_OVERRIDES",
		"PIPELINE_ROUNDS",
		"PIPELINE_SILENCE_GAP",
		"PIPELINE_VISION_TIMEOUT",
		"PIPELINE_GENERATE_TIMEOUT",
		"PIPELINE_SYNTHESIS_TIMEOUT",
		"PIPELINE_TIMEOUT",
		"PIPELINE_RETRY_ATTEMPTS",
		"PIPELINE_RETRY_BACKOFF",
		"PIPELINE_RETRY_BACKOFF_CAP",
		"PIPELINE_SYNTHESIS_CONCURRENCY",
		"GUEST_LIMIT",
		"GUEST_WINDOW",
		"REDIS_URL",
		"DATABASE_URL",
		"MONGO_URI",
		"S3_BUCKET",
		"S3_REGION",
		"S3_PREFIX",
		"S3_ENDPOINT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

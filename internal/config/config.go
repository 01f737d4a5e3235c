package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ent0n29/lenstalk/internal/audio"
	"github.com/ent0n29/lenstalk/internal/persona"
)

// Config contains all runtime settings for the interpretation service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowAnyOrigin   bool
	// TrustProxyHeaders takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool
	// PublicBaseURL prefixes shareable audio links; empty yields relative links.
	PublicBaseURL string

	LogLevel  string
	LogFormat string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// VoiceProvider is auto, elevenlabs or placeholder.
	VoiceProvider          string
	ElevenLabsAPIKey       string
	ElevenLabsBaseURL      string
	ElevenLabsModel        string
	ElevenLabsOutputFormat string
	// VoiceOverrides replaces catalog voice ids, keyed by persona id.
	VoiceOverrides map[string]string

	DefaultRounds        int
	SilenceGap           time.Duration
	VisionTimeout        time.Duration
	GenerateTimeout      time.Duration
	SynthesisTimeout     time.Duration
	PipelineTimeout      time.Duration
	RetryAttempts        int
	RetryBackoff         time.Duration
	RetryBackoffCap      time.Duration
	SynthesisConcurrency int
	CredentialCooldown   time.Duration

	// GuestLimit is analyses per GuestWindow; 0 disables the limit.
	GuestLimit  int
	GuestWindow time.Duration
	RedisURL    string

	DatabaseURL string
	MongoURI    string
	S3Bucket    string
	S3Region    string
	S3Prefix    string
	S3Endpoint  string

	SessionRetention time.Duration
}

// Defaults returns the settings used when neither the config file nor the
// environment sets a value.
func Defaults() Config {
	return Config{
		BindAddr:               ":8080",
		ShutdownTimeout:        15 * time.Second,
		MetricsNamespace:       "lenstalk",
		LogLevel:               "info",
		LogFormat:              "json",
		GeminiModel:            "gemini-2.0-flash",
		VoiceProvider:          "auto",
		ElevenLabsBaseURL:      "https://api.elevenlabs.io",
		ElevenLabsModel:        "eleven_multilingual_v2",
		ElevenLabsOutputFormat: "pcm_44100",
		DefaultRounds:          3,
		SilenceGap:             800 * time.Millisecond,
		VisionTimeout:          20 * time.Second,
		GenerateTimeout:        20 * time.Second,
		SynthesisTimeout:       30 * time.Second,
		PipelineTimeout:        4 * time.Minute,
		RetryAttempts:          2,
		RetryBackoff:           500 * time.Millisecond,
		RetryBackoffCap:        2 * time.Second,
		SynthesisConcurrency:   1,
		CredentialCooldown:     time.Minute,
		GuestLimit:             5,
		GuestWindow:            24 * time.Hour,
		SessionRetention:       10 * time.Minute,
	}
}

// Load applies the optional YAML file named by LENSTALK_CONFIG_FILE over the
// defaults, then environment variables over both.
func Load() (Config, error) {
	cfg := Defaults()
	if path := stringsTrimSpace("LENSTALK_CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.BindAddr = envOrDefault("APP_BIND_ADDR", cfg.BindAddr)
	cfg.MetricsNamespace = envOrDefault("APP_METRICS_NAMESPACE", cfg.MetricsNamespace)
	cfg.PublicBaseURL = envOrDefault("APP_PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.GeminiAPIKey = envOrDefault("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = envOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.GeminiBaseURL = envOrDefault("GEMINI_BASE_URL", cfg.GeminiBaseURL)
	cfg.VoiceProvider = strings.ToLower(envOrDefault("VOICE_PROVIDER", cfg.VoiceProvider))
	cfg.ElevenLabsAPIKey = envOrDefault("ELEVENLABS_API_KEY", cfg.ElevenLabsAPIKey)
	cfg.ElevenLabsBaseURL = envOrDefault("ELEVENLABS_BASE_URL", cfg.ElevenLabsBaseURL)
	cfg.ElevenLabsModel = envOrDefault("ELEVENLABS_TTS_MODEL_ID", cfg.ElevenLabsModel)
	cfg.ElevenLabsOutputFormat = envOrDefault("ELEVENLABS_TTS_OUTPUT_FORMAT", cfg.ElevenLabsOutputFormat)
	if raw := stringsTrimSpace("ELEVENLABS_VOICE_OVERRIDES"); raw != "" {
		overrides, err := parseOverrides(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.VoiceOverrides = overrides
	}
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.MongoURI = envOrDefault("MONGO_URI", cfg.MongoURI)
	cfg.S3Bucket = envOrDefault("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = envOrDefault("S3_REGION", cfg.S3Region)
	cfg.S3Prefix = envOrDefault("S3_PREFIX", cfg.S3Prefix)
	cfg.S3Endpoint = envOrDefault("S3_ENDPOINT", cfg.S3Endpoint)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"APP_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
		{"PIPELINE_SILENCE_GAP", &cfg.SilenceGap},
		{"PIPELINE_VISION_TIMEOUT", &cfg.VisionTimeout},
		{"PIPELINE_GENERATE_TIMEOUT", &cfg.GenerateTimeout},
		{"PIPELINE_SYNTHESIS_TIMEOUT", &cfg.SynthesisTimeout},
		{"PIPELINE_TIMEOUT", &cfg.PipelineTimeout},
		{"PIPELINE_RETRY_BACKOFF", &cfg.RetryBackoff},
		{"PIPELINE_RETRY_BACKOFF_CAP", &cfg.RetryBackoffCap},
		{"VOICE_CREDENTIAL_COOLDOWN", &cfg.CredentialCooldown},
		{"GUEST_WINDOW", &cfg.GuestWindow},
		{"APP_SESSION_RETENTION", &cfg.SessionRetention},
	}
	var err error
	for _, d := range durations {
		if *d.dst, err = durationFromEnv(d.key, *d.dst); err != nil {
			return Config{}, err
		}
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"PIPELINE_ROUNDS", &cfg.DefaultRounds},
		{"PIPELINE_RETRY_ATTEMPTS", &cfg.RetryAttempts},
		{"PIPELINE_SYNTHESIS_CONCURRENCY", &cfg.SynthesisConcurrency},
		{"GUEST_LIMIT", &cfg.GuestLimit},
	}
	for _, n := range ints {
		if *n.dst, err = intFromEnv(n.key, *n.dst); err != nil {
			return Config{}, err
		}
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.TrustProxyHeaders, err = boolFromEnv("APP_TRUST_PROXY_HEADERS", cfg.TrustProxyHeaders)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges after all sources are merged.
func (c Config) Validate() error {
	switch c.VoiceProvider {
	case "auto", "elevenlabs", "placeholder":
	default:
		return fmt.Errorf("VOICE_PROVIDER must be auto, elevenlabs or placeholder, got %q", c.VoiceProvider)
	}
	if c.VoiceProvider == "elevenlabs" && c.ElevenLabsAPIKey == "" {
		return fmt.Errorf("VOICE_PROVIDER=elevenlabs requires ELEVENLABS_API_KEY")
	}
	if !audio.Decodable(c.ElevenLabsOutputFormat) {
		return fmt.Errorf("ELEVENLABS_TTS_OUTPUT_FORMAT %q cannot be decoded (use pcm_<rate>, mp3_* or wav)", c.ElevenLabsOutputFormat)
	}
	for id, voiceID := range c.VoiceOverrides {
		if _, err := persona.Parse(id); err != nil {
			return fmt.Errorf("ELEVENLABS_VOICE_OVERRIDES: %w", err)
		}
		if strings.TrimSpace(voiceID) == "" {
			return fmt.Errorf("ELEVENLABS_VOICE_OVERRIDES: empty voice id for %q", id)
		}
	}
	if c.DefaultRounds < 1 || c.DefaultRounds > 10 {
		return fmt.Errorf("PIPELINE_ROUNDS must be between 1 and 10")
	}
	if c.SilenceGap < 0 {
		return fmt.Errorf("PIPELINE_SILENCE_GAP must not be negative")
	}
	if c.RetryAttempts < 1 || c.RetryAttempts > 3 {
		return fmt.Errorf("PIPELINE_RETRY_ATTEMPTS must be between 1 and 3")
	}
	if c.SynthesisConcurrency < 1 || c.SynthesisConcurrency > 8 {
		return fmt.Errorf("PIPELINE_SYNTHESIS_CONCURRENCY must be between 1 and 8")
	}
	for name, d := range map[string]time.Duration{
		"PIPELINE_VISION_TIMEOUT":    c.VisionTimeout,
		"PIPELINE_GENERATE_TIMEOUT":  c.GenerateTimeout,
		"PIPELINE_SYNTHESIS_TIMEOUT": c.SynthesisTimeout,
		"PIPELINE_TIMEOUT":           c.PipelineTimeout,
	} {
		if d < time.Second {
			return fmt.Errorf("%s must be at least 1s", name)
		}
	}
	if c.GuestLimit < 0 {
		return fmt.Errorf("GUEST_LIMIT must be >= 0")
	}
	if c.GuestLimit > 0 && c.GuestWindow < time.Minute {
		return fmt.Errorf("GUEST_WINDOW must be at least 1m")
	}
	if c.SessionRetention < 5*time.Second {
		return fmt.Errorf("APP_SESSION_RETENTION must be at least 5s")
	}
	return nil
}

// parseOverrides reads "persona=voice,persona=voice".
func parseOverrides(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, voiceID, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("ELEVENLABS_VOICE_OVERRIDES: expected persona=voice, got %q", pair)
		}
		out[strings.ToLower(strings.TrimSpace(id))] = strings.TrimSpace(voiceID)
	}
	return out, nil
}

func envOrDefault(key, fallback string) string {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML layout of LENSTALK_CONFIG_FILE. Zero values
// leave the default in place.
type fileConfig struct {
	Server struct {
		BindAddr         string        `yaml:"bindAddr"`
		ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`
		MetricsNamespace string        `yaml:"metricsNamespace"`
		AllowAnyOrigin   *bool         `yaml:"allowAnyOrigin"`
		TrustProxy       *bool         `yaml:"trustProxyHeaders"`
		PublicBaseURL    string        `yaml:"publicBaseURL"`
		SessionRetention time.Duration `yaml:"sessionRetention"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Gemini struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseURL"`
	} `yaml:"gemini"`

	Voice struct {
		Provider           string            `yaml:"provider"`
		APIKey             string            `yaml:"apiKey"`
		BaseURL            string            `yaml:"baseURL"`
		Model              string            `yaml:"model"`
		OutputFormat       string            `yaml:"outputFormat"`
		CredentialCooldown time.Duration     `yaml:"credentialCooldown"`
		VoiceOverrides     map[string]string `yaml:"voiceOverrides"`
	} `yaml:"voice"`

	Pipeline struct {
		Rounds               int           `yaml:"rounds"`
		SilenceGap           time.Duration `yaml:"silenceGap"`
		VisionTimeout        time.Duration `yaml:"visionTimeout"`
		GenerateTimeout      time.Duration `yaml:"generateTimeout"`
		SynthesisTimeout     time.Duration `yaml:"synthesisTimeout"`
		Timeout              time.Duration `yaml:"timeout"`
		RetryAttempts        int           `yaml:"retryAttempts"`
		RetryBackoff         time.Duration `yaml:"retryBackoff"`
		RetryBackoffCap      time.Duration `yaml:"retryBackoffCap"`
		SynthesisConcurrency int           `yaml:"synthesisConcurrency"`
	} `yaml:"pipeline"`

	Guest struct {
		Limit    *int          `yaml:"limit"`
		Window   time.Duration `yaml:"window"`
		RedisURL string        `yaml:"redisURL"`
	} `yaml:"guest"`

	Storage struct {
		DatabaseURL string `yaml:"databaseURL"`
		MongoURI    string `yaml:"mongoURI"`
		S3          struct {
			Bucket   string `yaml:"bucket"`
			Region   string `yaml:"region"`
			Prefix   string `yaml:"prefix"`
			Endpoint string `yaml:"endpoint"`
		} `yaml:"s3"`
	} `yaml:"storage"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.BindAddr, fc.Server.BindAddr)
	setDuration(&cfg.ShutdownTimeout, fc.Server.ShutdownTimeout)
	setString(&cfg.MetricsNamespace, fc.Server.MetricsNamespace)
	if fc.Server.AllowAnyOrigin != nil {
		cfg.AllowAnyOrigin = *fc.Server.AllowAnyOrigin
	}
	if fc.Server.TrustProxy != nil {
		cfg.TrustProxyHeaders = *fc.Server.TrustProxy
	}
	setString(&cfg.PublicBaseURL, fc.Server.PublicBaseURL)
	setDuration(&cfg.SessionRetention, fc.Server.SessionRetention)

	setString(&cfg.LogLevel, fc.Log.Level)
	setString(&cfg.LogFormat, fc.Log.Format)

	setString(&cfg.GeminiAPIKey, fc.Gemini.APIKey)
	setString(&cfg.GeminiModel, fc.Gemini.Model)
	setString(&cfg.GeminiBaseURL, fc.Gemini.BaseURL)

	setString(&cfg.VoiceProvider, fc.Voice.Provider)
	setString(&cfg.ElevenLabsAPIKey, fc.Voice.APIKey)
	setString(&cfg.ElevenLabsBaseURL, fc.Voice.BaseURL)
	setString(&cfg.ElevenLabsModel, fc.Voice.Model)
	setString(&cfg.ElevenLabsOutputFormat, fc.Voice.OutputFormat)
	setDuration(&cfg.CredentialCooldown, fc.Voice.CredentialCooldown)
	if len(fc.Voice.VoiceOverrides) > 0 {
		cfg.VoiceOverrides = make(map[string]string, len(fc.Voice.VoiceOverrides))
		for id, voiceID := range fc.Voice.VoiceOverrides {
			cfg.VoiceOverrides[strings.ToLower(strings.TrimSpace(id))] = strings.TrimSpace(voiceID)
		}
	}

	setInt(&cfg.DefaultRounds, fc.Pipeline.Rounds)
	setDuration(&cfg.SilenceGap, fc.Pipeline.SilenceGap)
	setDuration(&cfg.VisionTimeout, fc.Pipeline.VisionTimeout)
	setDuration(&cfg.GenerateTimeout, fc.Pipeline.GenerateTimeout)
	setDuration(&cfg.SynthesisTimeout, fc.Pipeline.SynthesisTimeout)
	setDuration(&cfg.PipelineTimeout, fc.Pipeline.Timeout)
	setInt(&cfg.RetryAttempts, fc.Pipeline.RetryAttempts)
	setDuration(&cfg.RetryBackoff, fc.Pipeline.RetryBackoff)
	setDuration(&cfg.RetryBackoffCap, fc.Pipeline.RetryBackoffCap)
	setInt(&cfg.SynthesisConcurrency, fc.Pipeline.SynthesisConcurrency)

	if fc.Guest.Limit != nil {
		cfg.GuestLimit = *fc.Guest.Limit
	}
	setDuration(&cfg.GuestWindow, fc.Guest.Window)
	setString(&cfg.RedisURL, fc.Guest.RedisURL)

	setString(&cfg.DatabaseURL, fc.Storage.DatabaseURL)
	setString(&cfg.MongoURI, fc.Storage.MongoURI)
	setString(&cfg.S3Bucket, fc.Storage.S3.Bucket)
	setString(&cfg.S3Region, fc.Storage.S3.Region)
	setString(&cfg.S3Prefix, fc.Storage.S3.Prefix)
	setString(&cfg.S3Endpoint, fc.Storage.S3.Endpoint)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

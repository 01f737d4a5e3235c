package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/config"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/usage"
)

func TestBuildSynthesizerSelection(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		key         string
		wantPrimary bool
		wantErr     bool
	}{
		{"auto with key", "auto", "k", true, false},
		{"auto without key", "auto", "", false, false},
		{"elevenlabs without key", "elevenlabs", "", false, true},
		{"placeholder ignores key", "placeholder", "k", false, false},
		{"unknown", "mock", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.VoiceProvider = tt.provider
			cfg.ElevenLabsAPIKey = tt.key
			synth, info, err := buildSynthesizer(cfg, zerolog.Nop())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("buildSynthesizer() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildSynthesizer() error = %v", err)
			}
			if synth.HasPrimary() != tt.wantPrimary {
				t.Fatalf("HasPrimary() = %v, want %v", synth.HasPrimary(), tt.wantPrimary)
			}
			if !tt.wantPrimary && info.Provider != "placeholder" {
				t.Fatalf("Provider = %q, want placeholder", info.Provider)
			}
		})
	}
}

func TestBuildSynthesizerAppliesVoiceOverrides(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write(make([]byte, 4410))
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.ElevenLabsAPIKey = "k"
	cfg.ElevenLabsBaseURL = srv.URL
	cfg.VoiceOverrides = map[string]string{"poet": "custom-poet-voice"}
	synth, _, err := buildSynthesizer(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildSynthesizer() error = %v", err)
	}
	out := synth.Synthesize(context.Background(), persona.Poet, persona.English, "The tide keeps time.")
	if out.Status != reliability.StatusOK {
		t.Fatalf("Synthesize() status = %v, err = %v, want ok", out.Status, out.Err)
	}
	if gotPath != "/v1/text-to-speech/custom-poet-voice" {
		t.Fatalf("path = %q, want override voice", gotPath)
	}

	cfg.VoiceOverrides = map[string]string{"pirate": "x"}
	if _, _, err := buildSynthesizer(cfg, zerolog.Nop()); err == nil {
		t.Fatalf("buildSynthesizer() error = nil, want unknown persona error")
	}
}

func TestBuildUsageBackends(t *testing.T) {
	cfg := config.Defaults()
	cfg.GuestLimit = 0
	counter, closer, err := buildUsage(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildUsage() error = %v", err)
	}
	if _, ok := counter.(usage.Unlimited); !ok || closer != nil {
		t.Fatalf("counter = %T, want usage.Unlimited without closer", counter)
	}

	cfg.GuestLimit = 3
	counter, _, err = buildUsage(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildUsage() error = %v", err)
	}
	if _, ok := counter.(*usage.MemoryCounter); !ok {
		t.Fatalf("counter = %T, want *usage.MemoryCounter", counter)
	}
}

func TestBuildWithDefaults(t *testing.T) {
	cfg := config.Defaults()
	cfg.MetricsNamespace = "test_app_build"
	res, err := Build(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}
	}()
	if res.API == nil || res.Pipeline == nil || res.Archive == nil {
		t.Fatalf("Build() left components nil: %+v", res)
	}
	if res.VisionModel != "" {
		t.Fatalf("VisionModel = %q, want empty without a key", res.VisionModel)
	}
	if res.Voice.Provider != "placeholder" {
		t.Fatalf("Voice.Provider = %q, want placeholder", res.Voice.Provider)
	}
}

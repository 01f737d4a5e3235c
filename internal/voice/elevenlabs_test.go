package voice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
)

func TestElevenLabsProviderSendsVoiceSettings(t *testing.T) {
	var gotPath, gotKey, gotFormat string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		gotFormat = r.URL.Query().Get("output_format")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "audio/pcm")
		_, _ = w.Write(make([]byte, 882))
	}))
	defer srv.Close()

	p := NewElevenLabsProvider(ElevenLabsConfig{APIKey: "k-123", BaseURL: srv.URL})
	resolver := NewResolver("", nil)
	profile, err := resolver.Resolve(persona.ArtCritic)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	out, err := p.Synthesize(context.Background(), resolver.Request(profile, "Observe the composition.", persona.French))
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(out.Data) != 882 || out.Format != "pcm_44100" {
		t.Fatalf("audio = %d bytes %q, want 882 bytes pcm_44100", len(out.Data), out.Format)
	}
	if gotPath != "/v1/text-to-speech/"+profile.VoiceID {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "k-123" || gotFormat != "pcm_44100" {
		t.Fatalf("key = %q format = %q", gotKey, gotFormat)
	}
	if gotBody["model_id"] != DefaultModelID || gotBody["language_code"] != "fr" {
		t.Fatalf("body = %v", gotBody)
	}
	settings, ok := gotBody["voice_settings"].(map[string]any)
	if !ok {
		t.Fatalf("voice_settings missing: %v", gotBody)
	}
	for _, key := range []string{"stability", "similarity_boost", "style", "use_speaker_boost", "speed"} {
		if _, ok := settings[key]; !ok {
			t.Fatalf("voice_settings missing %q: %v", key, settings)
		}
	}
}

func TestElevenLabsProviderReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"status":"invalid_api_key","message":"Invalid API key"}}`))
	}))
	defer srv.Close()

	p := NewElevenLabsProvider(ElevenLabsConfig{APIKey: "bad", BaseURL: srv.URL})
	_, err := p.Synthesize(context.Background(), Request{Text: "hi", Profile: Profile{VoiceID: "v"}})
	var se *reliability.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want StatusError", err)
	}
	if se.Status != http.StatusUnauthorized || se.Message != "Invalid API key" {
		t.Fatalf("status error = %+v", se)
	}
	if !errors.Is(err, reliability.ErrNetwork) {
		t.Fatalf("status error should classify as network failure")
	}
}

func TestElevenLabsProviderRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewElevenLabsProvider(ElevenLabsConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Synthesize(context.Background(), Request{Text: "hi", Profile: Profile{VoiceID: "v"}})
	if !errors.Is(err, reliability.ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}

func TestResolverPinsOnlyNativeLanguages(t *testing.T) {
	r := NewResolver("eleven_turbo_v2_5", map[persona.ID]string{persona.Poet: "custom-voice"})
	p, err := r.Resolve(persona.Poet)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.VoiceID != "custom-voice" {
		t.Fatalf("VoiceID = %q, want override", p.VoiceID)
	}
	if req := r.Request(p, " hello ", persona.Korean); req.LanguageCode != "" || req.Text != "hello" || req.ModelID != "eleven_turbo_v2_5" {
		t.Fatalf("Request(ko) = %+v", req)
	}
	if req := r.Request(p, "hello", persona.English); req.LanguageCode != "en" {
		t.Fatalf("Request(en).LanguageCode = %q, want en", req.LanguageCode)
	}
	if _, err := r.Resolve(persona.ID("nobody")); !errors.Is(err, persona.ErrUnknown) {
		t.Fatalf("Resolve(unknown) error = %v", err)
	}
}

func TestSettingsForProfileStaysInRange(t *testing.T) {
	for _, id := range persona.All() {
		p, _ := NewResolver("", nil).Resolve(id)
		s := SettingsForProfile(p)
		if s.Stability < 0.25 || s.Stability > 0.75 || s.Style < 0 || s.Style > 1 || s.Speed < 0.7 || s.Speed > 1.2 {
			t.Fatalf("%s settings out of range: %+v", id, s)
		}
	}
}

package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ent0n29/lenstalk/internal/reliability"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestGenerateSendsInlineImage(t *testing.T) {
	var body string
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"`+"```"+`A red door.`+"```"+`"}]}}]}`)
	})

	got, err := c.Generate(context.Background(), Request{
		Prompt:   "Describe this image.",
		Image:    []byte{0x89, 'P', 'N', 'G'},
		MIMEType: "image/png",
		Config:   GenerationConfig{Temperature: 0.4, TopK: 32, TopP: 0.95, MaxOutputTokens: 400},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "A red door." {
		t.Fatalf("Generate() = %q, want %q", got, "A red door.")
	}
	if !strings.Contains(path, DefaultModel+":generateContent") {
		t.Fatalf("path = %q", path)
	}
	for _, want := range []string{"inlineData", "image/png", "Describe this image.", "maxOutputTokens"} {
		if !strings.Contains(body, want) {
			t.Fatalf("request body missing %q: %s", want, body)
		}
	}
}

func TestGenerateEmptyTextIsParseFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"   "}]}}]}`)
	})
	_, err := c.Generate(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, reliability.ErrParse) {
		t.Fatalf("Generate() error = %v, want ErrParse", err)
	}
}

func TestGenerateServerErrorIsNetworkFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	})
	_, err := c.Generate(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, reliability.ErrNetwork) {
		t.Fatalf("Generate() error = %v, want ErrNetwork", err)
	}
	var se *reliability.StatusError
	if !errors.As(err, &se) || se.Service != "gemini" || se.Status != http.StatusServiceUnavailable {
		t.Fatalf("Generate() error = %#v, want gemini StatusError 503", err)
	}
}

func TestGenerateClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	})
	policy := reliability.Policy{Attempts: 2, Timeout: 5 * time.Second, BackoffBase: time.Millisecond, BackoffCap: 2 * time.Millisecond}
	_, attempts, err := reliability.Do(context.Background(), policy, func(ctx context.Context) (string, error) {
		return c.Generate(ctx, Request{Prompt: "x"})
	})
	var se *reliability.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Generate() error = %v, want *reliability.StatusError", err)
	}
	if se.Status != http.StatusBadRequest || se.Message != "API key not valid" {
		t.Fatalf("StatusError = %+v, want status 400 with upstream message", se)
	}
	if attempts != 1 || calls != 1 {
		t.Fatalf("attempts = %d, calls = %d, want 1 and 1", attempts, calls)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("New() without key should fail")
	}
}

func TestCleanOutput(t *testing.T) {
	cases := map[string]string{
		"  plain  ":          "plain",
		"```\nfenced\n```":   "fenced",
		"```text\nhello```":  "hello",
		"no fence ``` inner": "no fence ``` inner",
	}
	for in, want := range cases {
		if got := CleanOutput(in); got != want {
			t.Fatalf("CleanOutput(%q) = %q, want %q", in, got, want)
		}
	}
}

package reliability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{401, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tc := range cases {
		got := IsRetryableHTTPStatus(tc.code)
		if got != tc.want {
			t.Fatalf("IsRetryableHTTPStatus(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestExponentialBackoffCap(t *testing.T) {
	base := 100 * time.Millisecond
	capDur := 700 * time.Millisecond
	if got := ExponentialBackoff(0, base, capDur); got != base {
		t.Fatalf("attempt 0 = %v, want %v", got, base)
	}
	if got := ExponentialBackoff(10, base, capDur); got != capDur {
		t.Fatalf("attempt 10 = %v, want %v", got, capDur)
	}
}

func TestIsRetryableClassifiesErrors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &StatusError{Service: "tts", Status: 429}, true},
		{"unauthorized", &StatusError{Service: "tts", Status: 401}, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"parse", fmt.Errorf("%w: empty text", ErrParse), false},
		{"network", fmt.Errorf("%w: dial", ErrNetwork), true},
		{"other", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsRetryable(ctx, tc.err); got != tc.want {
			t.Fatalf("%s: IsRetryable() = %v, want %v", tc.name, got, tc.want)
		}
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if IsRetryable(cancelled, &StatusError{Status: 503}) {
		t.Fatalf("IsRetryable() after caller cancel = true, want false")
	}
}

func TestStatusErrorUnwrapsToNetwork(t *testing.T) {
	err := fmt.Errorf("synthesize: %w", &StatusError{Service: "elevenlabs", Status: 500, Message: "oops"})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("errors.Is(err, ErrNetwork) = false, want true")
	}
}

// Package usage counts guest analyses per scope within a fixed window.
package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ent0n29/lenstalk/internal/reliability"
)

type Status struct {
	Used    int       `json:"used"`
	Limit   int       `json:"limit"`
	ResetAt time.Time `json:"reset_at,omitempty"`
}

// Remaining is never negative. An unlimited counter reports -1.
func (s Status) Remaining() int {
	if s.Limit <= 0 {
		return -1
	}
	if r := s.Limit - s.Used; r > 0 {
		return r
	}
	return 0
}

type Counter interface {
	// CheckAndIncrement consumes one unit for scope, or returns
	// reliability.ErrUsageLimitExceeded without consuming when none is left.
	CheckAndIncrement(ctx context.Context, scope string) (Status, error)
	// Release gives back one unit, used when a run produced nothing.
	Release(ctx context.Context, scope string) error
	Peek(ctx context.Context, scope string) (Status, error)
}

func exceeded(st Status) error {
	return fmt.Errorf("%w: %d of %d used", reliability.ErrUsageLimitExceeded, st.Used, st.Limit)
}

func normalizeScope(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return "anonymous"
	}
	return scope
}

// Unlimited never refuses.
type Unlimited struct{}

func (Unlimited) CheckAndIncrement(context.Context, string) (Status, error) { return Status{}, nil }
func (Unlimited) Release(context.Context, string) error                    { return nil }
func (Unlimited) Peek(context.Context, string) (Status, error)             { return Status{}, nil }

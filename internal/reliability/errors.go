package reliability

import (
	"errors"
	"fmt"
)

// Failure classes surfaced by pipeline stages.
var (
	// ErrNetwork marks an unreachable upstream or a non-success status.
	ErrNetwork = errors.New("upstream request failed")

	// ErrParse marks an upstream response without the expected text or audio.
	ErrParse = errors.New("upstream response missing expected content")

	// ErrLabelMismatch marks a transcript line whose speaker matches no active persona.
	ErrLabelMismatch = errors.New("transcript label matches no active persona")

	// ErrSynthesisDegraded marks speech produced by the placeholder path.
	ErrSynthesisDegraded = errors.New("speech synthesized by placeholder")

	// ErrNoArtifact is the only hard failure: nothing playable could be produced.
	ErrNoArtifact = errors.New("no artifact could be produced")

	// ErrUsageLimitExceeded is returned before any stage runs when a guest is over quota.
	ErrUsageLimitExceeded = errors.New("usage limit exceeded")
)

// StatusError carries the HTTP-style status of a failed upstream call.
type StatusError struct {
	Service string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Service, e.Status, e.Message)
}

func (e *StatusError) Unwrap() error { return ErrNetwork }

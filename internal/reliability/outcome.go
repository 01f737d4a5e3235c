package reliability

// Status tags how a stage produced its value.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusFailed   Status = "failed"
)

// Outcome is the result of one pipeline stage. A degraded outcome still carries
// a usable Value; a failed one does not.
type Outcome[T any] struct {
	Value  T
	Status Status
	Reason string
	Err    error
}

func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Status: StatusOK}
}

func Degraded[T any](v T, reason string, err error) Outcome[T] {
	return Outcome[T]{Value: v, Status: StatusDegraded, Reason: reason, Err: err}
}

func Failed[T any](reason string, err error) Outcome[T] {
	return Outcome[T]{Status: StatusFailed, Reason: reason, Err: err}
}

func (o Outcome[T]) IsOK() bool       { return o.Status == StatusOK }
func (o Outcome[T]) IsDegraded() bool { return o.Status == StatusDegraded }
func (o Outcome[T]) IsFailed() bool   { return o.Status == StatusFailed }

// Usable reports whether Value may be consumed downstream.
func (o Outcome[T]) Usable() bool { return o.Status != StatusFailed }

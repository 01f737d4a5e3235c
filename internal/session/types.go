package session

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the session can no longer change.
func (s Status) Terminal() bool { return s != StatusRunning }

// CreateRequest describes the pipeline run a session tracks.
type CreateRequest struct {
	GuestID    string
	Mode       string
	Persona1   string
	Persona2   string
	Language   string
	TurnsTotal int
}

// Session is a snapshot of one pipeline run.
type Session struct {
	ID         string    `json:"session_id"`
	GuestID    string    `json:"guest_id,omitempty"`
	Status     Status    `json:"status"`
	Mode       string    `json:"mode"`
	Persona1   string    `json:"persona1"`
	Persona2   string    `json:"persona2,omitempty"`
	Language   string    `json:"language"`
	Stage      string    `json:"stage,omitempty"`
	TurnsDone  int       `json:"turns_done"`
	Segments   int       `json:"segments_done"`
	TurnsTotal int       `json:"turns_total"`
	ArtifactID string    `json:"artifact_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

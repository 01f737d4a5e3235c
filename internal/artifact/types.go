// Package artifact persists finished interpretations: metadata in a Store and
// the WAV bytes in Blobs, so an artifact can be shared by URL after the
// pipeline has discarded its session.
package artifact

import (
	"context"
	"errors"
	"time"

	"github.com/ent0n29/lenstalk/internal/pipeline"
)

var ErrNotFound = errors.New("artifact not found")

// Record is the stored metadata of one artifact. The audio lives under AudioKey.
type Record struct {
	ID           string                 `json:"id" bson:"_id"`
	GuestID      string                 `json:"guest_id,omitempty" bson:"guest_id,omitempty"`
	Mode         string                 `json:"mode" bson:"mode"`
	Persona1     string                 `json:"persona1" bson:"persona1"`
	Persona2     string                 `json:"persona2,omitempty" bson:"persona2,omitempty"`
	Language     string                 `json:"language" bson:"language"`
	Description  string                 `json:"description" bson:"description"`
	Script       string                 `json:"script" bson:"script"`
	Turns        int                    `json:"turns" bson:"turns"`
	DurationMS   int64                  `json:"duration_ms" bson:"duration_ms"`
	Degraded     bool                   `json:"degraded" bson:"degraded"`
	Degradations []pipeline.Degradation `json:"degradations,omitempty" bson:"degradations,omitempty"`
	AudioKey     string                 `json:"-" bson:"audio_key"`
	AudioBytes   int                    `json:"audio_bytes" bson:"audio_bytes"`
	CreatedAt    time.Time              `json:"timestamp" bson:"created_at"`
}

// Store persists artifact metadata.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	// Recent lists a guest's newest artifacts first.
	Recent(ctx context.Context, guestID string, limit int) ([]Record, error)
	Close() error
}

// Blobs stores audio objects by key.
type Blobs interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// NewRecord converts a pipeline artifact. The audio key is derived from the id.
func NewRecord(art pipeline.Artifact, guestID string) Record {
	return Record{
		ID:           art.ID,
		GuestID:      guestID,
		Mode:         string(art.Mode),
		Persona1:     string(art.Persona1),
		Persona2:     string(art.Persona2),
		Language:     string(art.Language),
		Description:  art.Description,
		Script:       art.Script,
		Turns:        art.Turns,
		DurationMS:   art.DurationMS,
		Degraded:     art.Degraded,
		Degradations: art.Degradations,
		AudioKey:     AudioKey(art.ID),
		AudioBytes:   len(art.Audio),
		CreatedAt:    art.Timestamp,
	}
}

func AudioKey(id string) string { return "audio/" + id + ".wav" }

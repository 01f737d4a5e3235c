package artifact

import (
	"context"
	"fmt"
	"strings"

	"github.com/ent0n29/lenstalk/internal/pipeline"
)

// Archive stores audio first and then metadata, so a saved record always
// points at an existing object.
type Archive struct {
	store   Store
	blobs   Blobs
	baseURL string
}

// NewArchive builds an archive. baseURL prefixes audio links, e.g.
// "https://lenstalk.example"; empty yields relative links.
func NewArchive(store Store, blobs Blobs, baseURL string) *Archive {
	return &Archive{store: store, blobs: blobs, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *Archive) Save(ctx context.Context, art pipeline.Artifact, guestID string) (Record, error) {
	rec := NewRecord(art, guestID)
	if err := a.blobs.Put(ctx, rec.AudioKey, art.Audio, "audio/wav"); err != nil {
		return Record{}, fmt.Errorf("store audio: %w", err)
	}
	if err := a.store.Save(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("store artifact: %w", err)
	}
	return rec, nil
}

func (a *Archive) Get(ctx context.Context, id string) (Record, error) {
	return a.store.Get(ctx, id)
}

func (a *Archive) Recent(ctx context.Context, guestID string, limit int) ([]Record, error) {
	return a.store.Recent(ctx, guestID, limit)
}

func (a *Archive) Audio(ctx context.Context, id string) ([]byte, error) {
	rec, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.blobs.Get(ctx, rec.AudioKey)
}

// AudioURL is the shareable link served by the HTTP API.
func (a *Archive) AudioURL(id string) string {
	return a.baseURL + "/v1/artifacts/" + id + "/audio"
}

func (a *Archive) Close() error { return a.store.Close() }

package artifact

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ent0n29/lenstalk/internal/debate"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/pipeline"
)

func sampleArtifact(id string) pipeline.Artifact {
	return pipeline.Artifact{
		ID:         id,
		Mode:       debate.ModeDebate,
		Persona1:   persona.Poet,
		Persona2:   persona.Scientist,
		Language:   persona.English,
		Script:     "Poet: Light.\nScientist: Photons.",
		Turns:      2,
		DurationMS: 2800,
		Degraded:   true,
		Degradations: []pipeline.Degradation{
			{Stage: "synthesize_turn", Turn: 2, Speaker: persona.Scientist, Reason: "no synthesis credential configured"},
		},
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Audio:     []byte("RIFF....WAVE"),
	}
}

func TestArchiveSaveAndLoad(t *testing.T) {
	a := NewArchive(NewMemoryStore(), NewMemoryBlobs(), "https://lenstalk.test/")
	ctx := context.Background()
	rec, err := a.Save(ctx, sampleArtifact("a1"), "guest")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if rec.AudioKey != "audio/a1.wav" || rec.AudioBytes != 12 {
		t.Fatalf("record = %+v", rec)
	}

	got, err := a.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Script != rec.Script || len(got.Degradations) != 1 || got.Persona2 != "scientist" {
		t.Fatalf("Get() = %+v", got)
	}
	audio, err := a.Audio(ctx, "a1")
	if err != nil {
		t.Fatalf("Audio() error = %v", err)
	}
	if !bytes.Equal(audio, []byte("RIFF....WAVE")) {
		t.Fatalf("Audio() = %q", audio)
	}
	if got := a.AudioURL("a1"); got != "https://lenstalk.test/v1/artifacts/a1/audio" {
		t.Fatalf("AudioURL() = %q", got)
	}
}

func TestArchiveMissingArtifact(t *testing.T) {
	a := NewArchive(NewMemoryStore(), NewMemoryBlobs(), "")
	if _, err := a.Audio(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Audio() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreRecentIsNewestFirstPerGuest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, r := range []Record{{ID: "1", GuestID: "g"}, {ID: "2", GuestID: "other"}, {ID: "3", GuestID: "g"}, {ID: "4", GuestID: "g"}} {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	got, err := s.Recent(ctx, "g", 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "4" || got[1].ID != "3" {
		t.Fatalf("Recent() = %+v", got)
	}
}

func TestMemoryBlobsCopiesInput(t *testing.T) {
	b := NewMemoryBlobs()
	data := []byte("abc")
	if err := b.Put(context.Background(), "k", data, "audio/wav"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	data[0] = 'z'
	got, _ := b.Get(context.Background(), "k")
	if string(got) != "abc" {
		t.Fatalf("Get() = %q, want abc", got)
	}
}

func TestNewStoreDefaultsToMemory(t *testing.T) {
	s, err := NewStore(context.Background(), "", "")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("NewStore() = %T, want *MemoryStore", s)
	}
	b, err := NewBlobs(context.Background(), S3Config{})
	if err != nil {
		t.Fatalf("NewBlobs() error = %v", err)
	}
	if _, ok := b.(*MemoryBlobs); !ok {
		t.Fatalf("NewBlobs() = %T, want *MemoryBlobs", b)
	}
}

func TestMongoDBName(t *testing.T) {
	cases := map[string]string{
		"mongodb://localhost:27017":          "lenstalk",
		"mongodb://localhost:27017/":         "lenstalk",
		"mongodb://localhost:27017/archive":  "archive",
		"mongodb+srv://u:p@cluster.x/shared": "shared",
	}
	for uri, want := range cases {
		if got := mongoDBName(uri); got != want {
			t.Fatalf("mongoDBName(%q) = %q, want %q", uri, got, want)
		}
	}
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("LENSTALK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LENSTALK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, url)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	defer s.Close()
	storeRoundTrip(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("LENSTALK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("LENSTALK_TEST_MONGO_URI not set")
	}
	s, err := NewMongoStore(context.Background(), uri)
	if err != nil {
		t.Fatalf("NewMongoStore() error = %v", err)
	}
	defer s.Close()
	storeRoundTrip(t, s)
}

func storeRoundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	id := "test-" + time.Now().Format("150405.000000000")
	rec := NewRecord(sampleArtifact(id), "guest-"+id)
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Script != rec.Script || got.Turns != 2 || len(got.Degradations) != 1 {
		t.Fatalf("Get() = %+v", got)
	}
	recent, err := s.Recent(ctx, rec.GuestID, 5)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 1 || recent[0].ID != id {
		t.Fatalf("Recent() = %+v", recent)
	}
	if _, err := s.Get(ctx, id+"-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

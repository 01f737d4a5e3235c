package voice

import "context"

// Settings are the external voice settings, each in [0,1] except Speed.
type Settings struct {
	Stability       float64
	SimilarityBoost float64
	Style           float64
	SpeakerBoost    bool
	Speed           float64
}

// Request is one synthesis call for a single turn.
type Request struct {
	Text         string
	Profile      Profile
	ModelID      string
	LanguageCode string
	Settings     Settings
}

// Audio is an encoded buffer as returned by a provider. Format uses the
// audio package encoding names.
type Audio struct {
	Data   []byte
	Format string
}

type Provider interface {
	Name() string
	Synthesize(ctx context.Context, req Request) (Audio, error)
}

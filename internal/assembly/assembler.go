// Package assembly turns an ordered transcript into one playable WAV: speech
// for every turn with a silence gap between consecutive turns.
package assembly

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ent0n29/lenstalk/internal/audio"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/transcript"
	"github.com/ent0n29/lenstalk/internal/voice"
)

type Kind string

const (
	KindSpeech  Kind = "speech"
	KindSilence Kind = "silence"
)

// Segment is one piece of the final artifact, already PCM16LE mono at
// audio.SampleRate.
type Segment struct {
	Kind     Kind
	Index    int // turn index for speech, preceding turn index for silence
	Speaker  persona.ID
	PCM      []byte
	Duration time.Duration
	Provider string
	Status   reliability.Status
	Reason   string
}

// Speaker synthesizes one turn.
type Speaker interface {
	Synthesize(ctx context.Context, id persona.ID, lang persona.Language, text string) reliability.Outcome[voice.Speech]
}

type Config struct {
	Gap time.Duration
	// Concurrency bounds parallel synthesis calls; 1 keeps them sequential.
	Concurrency int
}

type Assembler struct {
	speaker     Speaker
	placeholder *voice.PlaceholderProvider
	cfg         Config
	logger      zerolog.Logger
}

func New(speaker Speaker, cfg Config, logger zerolog.Logger) *Assembler {
	if cfg.Gap < 0 {
		cfg.Gap = 0
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Assembler{
		speaker:     speaker,
		placeholder: voice.NewPlaceholderProvider(),
		cfg:         cfg,
		logger:      logger.With().Str("component", "assembler").Logger(),
	}
}

type Result struct {
	WAV      []byte
	Segments []Segment
	Duration time.Duration
}

// Count returns the number of segments of kind k.
func (r Result) Count(k Kind) int {
	n := 0
	for _, s := range r.Segments {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// Degraded returns the speech segments that did not come from a real voice.
func (r Result) Degraded() []Segment {
	var out []Segment
	for _, s := range r.Segments {
		if s.Kind == KindSpeech && s.Status != reliability.StatusOK {
			out = append(out, s)
		}
	}
	return out
}

// Assemble synthesizes every entry and splices the results in transcript order,
// whatever order synthesis finishes in. onSpeech, if set, is called once per
// speech segment as it completes. The only errors are an empty transcript
// (reliability.ErrNoArtifact) and ctx cancellation.
func (a *Assembler) Assemble(ctx context.Context, entries []transcript.Entry, lang persona.Language, onSpeech func(Segment)) (Result, error) {
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("%w: transcript has no turns", reliability.ErrNoArtifact)
	}

	speech := make([]Segment, len(entries))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seg, err := a.synthesize(gctx, i, e, lang)
			if err != nil {
				return err
			}
			speech[i] = seg
			if onSpeech != nil {
				mu.Lock()
				onSpeech(seg)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	silence, err := a.silence()
	if err != nil {
		return Result{}, err
	}

	var res Result
	size := 0
	for i, s := range speech {
		res.Segments = append(res.Segments, s)
		size += len(s.PCM)
		if i < len(speech)-1 {
			res.Segments = append(res.Segments, Segment{
				Kind:     KindSilence,
				Index:    i,
				PCM:      silence,
				Duration: audio.Duration(silence),
				Status:   reliability.StatusOK,
			})
			size += len(silence)
		}
	}
	pcm := make([]byte, 0, size)
	for _, s := range res.Segments {
		pcm = append(pcm, s.PCM...)
	}
	wav, err := audio.EncodeWAVPCM16LE(pcm, audio.SampleRate)
	if err != nil {
		return Result{}, fmt.Errorf("encode artifact: %w", err)
	}
	res.WAV = wav
	res.Duration = audio.Duration(pcm)

	a.logger.Debug().
		Int("speech", len(speech)).
		Int("silence", res.Count(KindSilence)).
		Dur("duration", res.Duration).
		Int("degraded", len(res.Degraded())).
		Msg("artifact assembled")
	return res, nil
}

// synthesize never returns an empty segment. A failed outcome that is not a
// cancellation still yields placeholder audio.
func (a *Assembler) synthesize(ctx context.Context, i int, e transcript.Entry, lang persona.Language) (Segment, error) {
	out := a.speaker.Synthesize(ctx, e.Speaker, lang, e.Text)
	if out.IsFailed() && ctx.Err() != nil {
		return Segment{}, ctx.Err()
	}
	seg := Segment{
		Kind:     KindSpeech,
		Index:    i,
		Speaker:  e.Speaker,
		PCM:      out.Value.PCM,
		Provider: out.Value.Provider,
		Status:   out.Status,
		Reason:   out.Reason,
	}
	if out.IsFailed() || len(seg.PCM) == 0 {
		req := voice.Request{Text: e.Text}
		if d, err := persona.Get(e.Speaker); err == nil {
			req.Profile = voice.Profile{Pitch: d.Prosody.Pitch, Rate: d.Prosody.Rate, Volume: d.Prosody.Volume}
		}
		seg.PCM = a.placeholder.Render(req)
		seg.Provider = a.placeholder.Name()
		seg.Status = reliability.StatusDegraded
		if seg.Reason == "" {
			seg.Reason = "synthesis returned no audio"
		}
	} else if seg.Status == reliability.StatusOK {
		if d, err := persona.Get(e.Speaker); err == nil {
			seg.PCM = audio.Gain(seg.PCM, d.Prosody.Volume)
		}
	}
	seg.Duration = audio.Duration(seg.PCM)
	return seg, nil
}

// silence is the gap rendered through the same WAV path as speech so every
// segment shares one format.
func (a *Assembler) silence() ([]byte, error) {
	ms := int(a.cfg.Gap / time.Millisecond)
	pcm, err := audio.ToPCM(audio.Silence(ms), audio.EncodingWAV)
	if err != nil {
		return nil, fmt.Errorf("build silence: %w", err)
	}
	return pcm, nil
}

package pipeline

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/assembly"
	"github.com/ent0n29/lenstalk/internal/audio"
	"github.com/ent0n29/lenstalk/internal/debate"
	"github.com/ent0n29/lenstalk/internal/gemini"
	"github.com/ent0n29/lenstalk/internal/observability"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/protocol"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/transcript"
	"github.com/ent0n29/lenstalk/internal/usage"
	"github.com/ent0n29/lenstalk/internal/vision"
	"github.com/ent0n29/lenstalk/internal/voice"
)

const describeMarker = "Describe this image"

// fakeModel answers vision and turn prompts; visionErr makes every vision call fail.
type fakeModel struct {
	mu        sync.Mutex
	calls     int
	visionErr error
}

func (m *fakeModel) Generate(_ context.Context, req gemini.Request) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if strings.Contains(req.Prompt, describeMarker) {
		if m.visionErr != nil {
			return "", m.visionErr
		}
		return "A red balloon drifts above a crowded market square at dusk.", nil
	}
	return "Look at that red balloon, it steals the whole square.", nil
}

// fixedSpeaker returns 100 ms of a constant non-zero sample for every turn.
type fixedSpeaker struct{}

func (fixedSpeaker) Synthesize(context.Context, persona.ID, persona.Language, string) reliability.Outcome[voice.Speech] {
	pcm := make([]byte, audio.SilenceSamples(100)*2)
	for i := 0; i < len(pcm); i += 2 {
		binary.LittleEndian.PutUint16(pcm[i:], 1000)
	}
	return reliability.Ok(voice.Speech{PCM: pcm, Provider: "fixed"})
}

type events struct {
	mu  sync.Mutex
	got []protocol.Progress
}

func (e *events) sink(ev protocol.Progress) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
}

func (e *events) stages(stage string) []protocol.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []protocol.Progress
	for _, ev := range e.got {
		if ev.Stage == stage {
			out = append(out, ev)
		}
	}
	return out
}

func testPolicy() reliability.Policy {
	return reliability.Policy{Attempts: 2, Timeout: time.Second, BackoffBase: time.Millisecond, BackoffCap: time.Millisecond}
}

func testImage(t *testing.T) vision.Image {
	t.Helper()
	img, err := vision.NewImage(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...), "")
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	return img
}

func newPipeline(model gemini.Generator, speech assembly.Speaker, counter usage.Counter, metrics *observability.Metrics) *Pipeline {
	logger := zerolog.Nop()
	return New(Deps{
		Vision:   vision.NewAnalyzer(model, testPolicy(), logger),
		Turns:    debate.NewGenerator(model, testPolicy(), logger),
		Speech:   speech,
		Assembly: assembly.Config{Gap: audio.DefaultGap, Concurrency: 2},
		Usage:    counter,
		Metrics:  metrics,
	}, logger)
}

func TestRunDebateProducesSixTurnsAndExactLength(t *testing.T) {
	p := newPipeline(&fakeModel{}, fixedSpeaker{}, nil, nil)
	ev := &events{}
	art, err := p.Run(context.Background(), Request{
		Image:    testImage(t),
		Persona1: persona.WittyEntertainer,
		Persona2: persona.ArtCritic,
		Language: persona.English,
	}, ev.sink)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := strings.Split(art.Script, "\n")
	if len(lines) != 6 || art.Turns != 6 {
		t.Fatalf("script lines = %d, turns = %d, want 6", len(lines), art.Turns)
	}
	for i, line := range lines {
		want := "Witty Entertainer: "
		if i%2 == 1 {
			want = "Art Critic: "
		}
		if !strings.HasPrefix(line, want) {
			t.Fatalf("line %d = %q, want prefix %q", i+1, line, want)
		}
	}

	speech := 6 * audio.SilenceSamples(100) * 2
	silence := 5 * audio.SilenceSamples(800) * 2
	if got, want := len(art.Audio), audio.WAVHeaderSize+speech+silence; got != want {
		t.Fatalf("len(audio) = %d, want %d", got, want)
	}
	if art.Degraded || len(art.Degradations) != 0 {
		t.Fatalf("unexpected degradations: %+v", art.Degradations)
	}
	if art.Mode != debate.ModeDebate || art.ID == "" {
		t.Fatalf("artifact = mode %q id %q", art.Mode, art.ID)
	}

	if got := ev.got[0].Stage; got != protocol.StageVisionStarted {
		t.Fatalf("first event = %q, want %q", got, protocol.StageVisionStarted)
	}
	if got := ev.got[len(ev.got)-1].Stage; got != protocol.StageCompleted {
		t.Fatalf("last event = %q, want %q", got, protocol.StageCompleted)
	}
	turns := ev.stages(protocol.StageTurnGenerated)
	if len(turns) != 6 {
		t.Fatalf("turn events = %d, want 6", len(turns))
	}
	for i, e := range turns {
		if e.Index != i+1 || e.Total != 6 || e.Round != i/2+1 {
			t.Fatalf("turn event %d = %+v", i, e)
		}
	}
	if got := len(ev.stages(protocol.StageSegmentSynthesized)); got != 6 {
		t.Fatalf("segment events = %d, want 6", got)
	}
}

func TestRunWithoutVoiceCredentialStillProducesAudio(t *testing.T) {
	synth := voice.NewSynthesizer(voice.NewResolver("", nil), nil, voice.SynthesizerConfig{}, zerolog.Nop())
	p := newPipeline(&fakeModel{}, synth, nil, nil)
	art, err := p.Run(context.Background(), Request{
		Image:    testImage(t),
		Persona1: persona.Poet,
		Persona2: persona.Scientist,
		Language: persona.English,
		Rounds:   2,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !art.Degraded {
		t.Fatalf("artifact should be degraded without a voice credential")
	}
	synthesized := 0
	for _, d := range art.Degradations {
		if d.Stage == observability.StageSynthesize {
			synthesized++
		}
	}
	if synthesized != 4 {
		t.Fatalf("synthesis degradations = %d, want 4", synthesized)
	}
	pcm, _, err := audio.ParseWAV(art.Audio)
	if err != nil {
		t.Fatalf("ParseWAV() error = %v", err)
	}
	// Each placeholder turn lasts at least one second.
	if floor := 4*audio.SilenceSamples(1000)*2 + 3*audio.SilenceSamples(800)*2; len(pcm) < floor {
		t.Fatalf("pcm length = %d, want >= %d", len(pcm), floor)
	}
}

func TestRunVisionFailureUsesTemplate(t *testing.T) {
	model := &fakeModel{visionErr: &reliability.StatusError{Service: "gemini", Status: 503, Message: "overloaded"}}
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)
	p := newPipeline(model, fixedSpeaker{}, nil, metrics)
	art, err := p.Run(context.Background(), Request{
		Image:    testImage(t),
		Persona1: persona.Historian,
		Language: persona.French,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if art.Description != vision.FallbackDescription(persona.French) {
		t.Fatalf("description = %q, want French template", art.Description)
	}
	if len(art.Degradations) != 1 || art.Degradations[0].Stage != observability.StageVision {
		t.Fatalf("degradations = %+v, want one vision entry", art.Degradations)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_provider_errors_total" {
			found = true
		}
	}
	if !found {
		t.Fatalf("provider error metric not recorded")
	}
}

func TestRunNarrationHasNoSilence(t *testing.T) {
	p := newPipeline(&fakeModel{}, fixedSpeaker{}, nil, nil)
	art, err := p.Run(context.Background(), Request{
		Image:    testImage(t),
		Persona1: persona.KidExplorer,
		Language: persona.English,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if art.Mode != debate.ModeNarration || art.Turns != 1 {
		t.Fatalf("mode = %q turns = %d, want narration with 1 turn", art.Mode, art.Turns)
	}
	if got, want := len(art.Audio), audio.WAVHeaderSize+audio.SilenceSamples(100)*2; got != want {
		t.Fatalf("len(audio) = %d, want %d", got, want)
	}
	if strings.Contains(art.Script, "\n") {
		t.Fatalf("narration script should be one line: %q", art.Script)
	}
}

func TestRunScriptRoundTrips(t *testing.T) {
	p := newPipeline(&fakeModel{}, fixedSpeaker{}, nil, nil)
	art, err := p.Run(context.Background(), Request{
		Image:    testImage(t),
		Persona1: persona.GrumpyGrandpa,
		Persona2: persona.FashionGuru,
		Language: persona.Korean,
		Rounds:   1,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	res := transcript.Parse(art.Script, persona.GrumpyGrandpa, persona.FashionGuru, persona.Korean)
	if len(res.Dropped) != 0 || len(res.Entries) != 2 {
		t.Fatalf("parse = %d entries, %d dropped", len(res.Entries), len(res.Dropped))
	}
	if got := transcript.Render(res.Entries, persona.Korean); got != art.Script {
		t.Fatalf("re-rendered script = %q, want %q", got, art.Script)
	}
}

func TestRunEnforcesUsageLimit(t *testing.T) {
	counter := usage.NewMemoryCounter(1, time.Hour)
	p := newPipeline(&fakeModel{}, fixedSpeaker{}, counter, nil)
	req := Request{Image: testImage(t), Persona1: persona.Poet, GuestID: "guest-1"}
	if _, err := p.Run(context.Background(), req, nil); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	model := &fakeModel{}
	p = newPipeline(model, fixedSpeaker{}, counter, nil)
	_, err := p.Run(context.Background(), req, nil)
	if !errors.Is(err, reliability.ErrUsageLimitExceeded) {
		t.Fatalf("second Run() error = %v, want ErrUsageLimitExceeded", err)
	}
	if model.calls != 0 {
		t.Fatalf("model calls = %d, want 0 before the limit check passes", model.calls)
	}
}

func TestRunCancelledReleasesUsageAndReportsFailure(t *testing.T) {
	counter := usage.NewMemoryCounter(1, time.Hour)
	p := newPipeline(&fakeModel{}, fixedSpeaker{}, counter, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := &events{}
	_, err := p.Run(ctx, Request{Image: testImage(t), Persona1: persona.Poet, Persona2: persona.Philosopher, GuestID: "g"}, ev.sink)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	failed := ev.stages(protocol.StageFailed)
	if len(failed) != 1 || failed[0].Status != "cancelled" {
		t.Fatalf("failed events = %+v", failed)
	}
	st, err := counter.Peek(context.Background(), "g")
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	if st.Used != 0 {
		t.Fatalf("used = %d, want 0 after release", st.Used)
	}
}

func TestRunRejectsInvalidRequests(t *testing.T) {
	p := newPipeline(&fakeModel{}, fixedSpeaker{}, nil, nil)
	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"same persona", Request{Persona1: persona.Poet, Persona2: persona.Poet}, debate.ErrSamePersona},
		{"unknown persona", Request{Persona1: "mime"}, persona.ErrUnknown},
		{"too many rounds", Request{Persona1: persona.Poet, Persona2: persona.Historian, Rounds: 11}, debate.ErrRounds},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := p.Run(context.Background(), c.req, nil)
			if !errors.Is(err, c.want) {
				t.Fatalf("Run() error = %v, want %v", err, c.want)
			}
		})
	}
}

package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/gemini"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/transcript"
	"github.com/ent0n29/lenstalk/internal/vision"
)

type stubGenerator struct {
	calls    int
	requests []gemini.Request
	fn       func(call int, req gemini.Request) (string, error)
}

func (g *stubGenerator) Generate(_ context.Context, req gemini.Request) (string, error) {
	g.calls++
	g.requests = append(g.requests, req)
	return g.fn(g.calls, req)
}

func testPolicy() reliability.Policy {
	return reliability.Policy{Attempts: 2, Timeout: time.Second, BackoffBase: time.Millisecond, BackoffCap: time.Millisecond}
}

var testImage = vision.Image{Data: []byte("\x89PNG\r\n\x1a\n"), MIMEType: "image/png"}

func echoGenerator() *stubGenerator {
	return &stubGenerator{fn: func(call int, _ gemini.Request) (string, error) {
		return fmt.Sprintf("turn number %d about the red door", call), nil
	}}
}

func TestNewSessionValidates(t *testing.T) {
	if _, err := NewSession("s", persona.Poet, persona.Poet, persona.English, 3); !errors.Is(err, ErrSamePersona) {
		t.Fatalf("same persona error = %v", err)
	}
	if _, err := NewSession("s", persona.Poet, persona.Scientist, persona.English, 11); !errors.Is(err, ErrRounds) {
		t.Fatalf("rounds error = %v", err)
	}
	if _, err := NewSession("s", "ghost", "", persona.English, 1); !errors.Is(err, persona.ErrUnknown) {
		t.Fatalf("unknown persona error = %v", err)
	}
	s, err := NewSession("s", persona.Poet, "", persona.English, 0)
	if err != nil || s.Rounds != DefaultRounds || s.Mode() != ModeNarration || s.ExpectedTurns() != 1 {
		t.Fatalf("NewSession() = %+v, %v", s, err)
	}
}

func TestOrchestratorAlternatesForEveryRoundCount(t *testing.T) {
	for rounds := 1; rounds <= MaxRounds; rounds++ {
		s, err := NewSession("s", persona.WittyEntertainer, persona.ArtCritic, persona.English, rounds)
		if err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}
		o := NewOrchestrator(NewGenerator(echoGenerator(), testPolicy(), zerolog.Nop()), zerolog.Nop())
		if err := o.Run(context.Background(), s, testImage, nil); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		lines := strings.Split(s.Transcript(), "\n")
		if len(lines) != 2*rounds {
			t.Fatalf("rounds=%d: %d lines, want %d", rounds, len(lines), 2*rounds)
		}
		for i, line := range lines {
			want := "Witty Entertainer: "
			if i%2 == 1 {
				want = "Art Critic: "
			}
			if !strings.HasPrefix(line, want) {
				t.Fatalf("rounds=%d line %d = %q, want prefix %q", rounds, i, line, want)
			}
			if s.Turns[i].Round != i/2+1 {
				t.Fatalf("rounds=%d turn %d round = %d", rounds, i, s.Turns[i].Round)
			}
		}
	}
}

func TestOrchestratorReattachesImageAndFullHistory(t *testing.T) {
	gen := echoGenerator()
	s, _ := NewSession("s", persona.Poet, persona.Scientist, persona.English, 2)
	s.ImageDescription = "A red door in a white wall."
	o := NewOrchestrator(NewGenerator(gen, testPolicy(), zerolog.Nop()), zerolog.Nop())
	if err := o.Run(context.Background(), s, testImage, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(gen.requests) != 4 {
		t.Fatalf("requests = %d, want 4", len(gen.requests))
	}
	for i, req := range gen.requests {
		if len(req.Image) == 0 || !strings.Contains(req.Prompt, "A red door in a white wall.") {
			t.Fatalf("request %d missing image or description", i)
		}
		for j := 0; j < i; j++ {
			if !strings.Contains(req.Prompt, fmt.Sprintf("turn number %d about", j+1)) {
				t.Fatalf("request %d missing turn %d in history", i, j+1)
			}
		}
	}
	if !strings.Contains(gen.requests[0].Prompt, "you speak first") {
		t.Fatalf("first prompt is not an opening prompt:\n%s", gen.requests[0].Prompt)
	}
	if !strings.Contains(gen.requests[1].Prompt, "Respond directly to Poet's last point") {
		t.Fatalf("second prompt is not a rebuttal prompt:\n%s", gen.requests[1].Prompt)
	}
	if !strings.Contains(gen.requests[3].Prompt, "final round") {
		t.Fatalf("last prompt is not a closing prompt:\n%s", gen.requests[3].Prompt)
	}
}

func TestOrchestratorUsesCannedLinesOnFailure(t *testing.T) {
	gen := &stubGenerator{fn: func(int, gemini.Request) (string, error) {
		return "", &reliability.StatusError{Service: "gemini", Status: 503, Message: "busy"}
	}}
	s, _ := NewSession("s", persona.GrumpyGrandpa, persona.KidExplorer, persona.English, 3)
	o := NewOrchestrator(NewGenerator(gen, testPolicy(), zerolog.Nop()), zerolog.Nop())
	if err := o.Run(context.Background(), s, testImage, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(s.Turns) != 6 {
		t.Fatalf("turns = %d, want 6", len(s.Turns))
	}
	for _, turn := range s.Turns {
		want := persona.MustGet(turn.Speaker).Fallback(turn.Round)
		if turn.Text != want || turn.Status != reliability.StatusDegraded {
			t.Fatalf("turn %+v, want degraded canned line %q", turn, want)
		}
	}
	if gen.calls != 12 {
		t.Fatalf("generation calls = %d, want 12 (one retry per turn)", gen.calls)
	}
}

func TestOrchestratorNarrationIsSingleTurn(t *testing.T) {
	gen := echoGenerator()
	s, _ := NewSession("s", persona.TravelGuide, "", persona.Spanish, 3)
	var seen []Turn
	o := NewOrchestrator(NewGenerator(gen, testPolicy(), zerolog.Nop()), zerolog.Nop())
	if err := o.Run(context.Background(), s, testImage, func(t Turn) { seen = append(seen, t) }); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(s.Turns) != 1 || len(seen) != 1 {
		t.Fatalf("turns = %d, callbacks = %d, want 1", len(s.Turns), len(seen))
	}
	if !strings.Contains(gen.requests[0].Prompt, "150 to 200 words in Spanish") {
		t.Fatalf("narration prompt:\n%s", gen.requests[0].Prompt)
	}
	if gen.requests[0].Config.MaxOutputTokens != narrationConfig.MaxOutputTokens {
		t.Fatalf("narration should use the narration config")
	}
}

func TestOrchestratorCancellationDiscardsTurns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &stubGenerator{fn: func(call int, _ gemini.Request) (string, error) {
		if call == 2 {
			cancel()
		}
		return "some words", nil
	}}
	s, _ := NewSession("s", persona.Poet, persona.Scientist, persona.English, 3)
	o := NewOrchestrator(NewGenerator(gen, testPolicy(), zerolog.Nop()), zerolog.Nop())
	err := o.Run(ctx, s, testImage, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(s.Turns) != 0 {
		t.Fatalf("turns = %d, want partial results discarded", len(s.Turns))
	}
	if gen.calls != 2 {
		t.Fatalf("calls = %d, want no turns scheduled after cancel", gen.calls)
	}
}

func TestGeneratorWithoutServiceIsDegraded(t *testing.T) {
	g := NewGenerator(nil, testPolicy(), zerolog.Nop())
	out := g.Turn(context.Background(), TurnRequest{Persona: persona.FoodCritic, Opponent: persona.Poet, Round: 2, Rounds: 3, Language: persona.French})
	if !out.IsDegraded() || out.Value != persona.MustGet(persona.FoodCritic).FallbackIn(persona.French, 2) {
		t.Fatalf("Turn() = %+v", out)
	}
}

func TestCleanTurnStripsSelfLabel(t *testing.T) {
	d := persona.MustGet(persona.ArtCritic)
	cases := map[string]string{
		"Art Critic: Observe the light.":        "Observe the light.",
		"art critic:  \"Observe\nthe light.\"":  "Observe the light.",
		"美術評論家：光を見て":                          "光を見て",
		"```\nObserve the light.\n```":          "Observe the light.",
		"Poet: not mine to strip, stays intact": "Poet: not mine to strip, stays intact",
	}
	for in, want := range cases {
		if got := cleanTurn(in, d); got != want {
			t.Fatalf("cleanTurn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSessionRejectsOutOfOrderTurns(t *testing.T) {
	s, _ := NewSession("s", persona.Poet, persona.Scientist, persona.English, 1)
	if err := s.append(Turn{Speaker: persona.Scientist, Round: 1}); err == nil {
		t.Fatalf("append() accepted persona2 first")
	}
	_ = s.append(Turn{Speaker: persona.Poet, Round: 1, Text: "a"})
	_ = s.append(Turn{Speaker: persona.Scientist, Round: 1, Text: "b"})
	if err := s.append(Turn{Speaker: persona.Poet, Round: 2}); err == nil {
		t.Fatalf("append() accepted a turn past the last round")
	}
	entries := transcript.Parse(s.Transcript(), s.Persona1, s.Persona2, s.Language).Entries
	if len(entries) != 2 {
		t.Fatalf("parsed entries = %d, want 2", len(entries))
	}
}

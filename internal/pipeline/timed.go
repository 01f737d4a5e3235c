package pipeline

import (
	"context"
	"time"

	"github.com/ent0n29/lenstalk/internal/assembly"
	"github.com/ent0n29/lenstalk/internal/debate"
	"github.com/ent0n29/lenstalk/internal/observability"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/voice"
)

// timedTurns records per-turn generation latency and outcome.
type timedTurns struct {
	next    debate.TurnGenerator
	metrics *observability.Metrics
}

func (t timedTurns) Turn(ctx context.Context, req debate.TurnRequest) reliability.Outcome[string] {
	start := time.Now()
	out := t.next.Turn(ctx, req)
	t.metrics.ObserveStage(observability.StageGenerate, string(out.Status), time.Since(start))
	providerError(t.metrics, out.Err)
	return out
}

// timedSpeech records per-turn synthesis latency and outcome.
type timedSpeech struct {
	next    assembly.Speaker
	metrics *observability.Metrics
}

func (t timedSpeech) Synthesize(ctx context.Context, id persona.ID, lang persona.Language, text string) reliability.Outcome[voice.Speech] {
	start := time.Now()
	out := t.next.Synthesize(ctx, id, lang, text)
	t.metrics.ObserveStage(observability.StageSynthesize, string(out.Status), time.Since(start))
	providerError(t.metrics, out.Err)
	return out
}

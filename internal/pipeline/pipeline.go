// Package pipeline runs one interpretation end to end: describe the image,
// generate the persona turns, re-parse the transcript and assemble the audio.
// Every stage degrades instead of failing; only a run that cannot produce any
// audio returns an error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/assembly"
	"github.com/ent0n29/lenstalk/internal/debate"
	"github.com/ent0n29/lenstalk/internal/observability"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/protocol"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/transcript"
	"github.com/ent0n29/lenstalk/internal/usage"
	"github.com/ent0n29/lenstalk/internal/vision"
)

// Describer produces the shared image description.
type Describer interface {
	Describe(ctx context.Context, img vision.Image, lang persona.Language) reliability.Outcome[string]
}

type Deps struct {
	Vision   Describer
	Turns    debate.TurnGenerator
	Speech   assembly.Speaker
	Assembly assembly.Config
	// Usage defaults to usage.Unlimited.
	Usage   usage.Counter
	Metrics *observability.Metrics
}

type Request struct {
	// SessionID is generated when empty.
	SessionID string
	Image     vision.Image
	Persona1  persona.ID
	// Persona2 empty selects narration.
	Persona2 persona.ID
	Language persona.Language
	Rounds   int
	// GuestID scopes the usage limit; empty skips the check.
	GuestID string
}

// Degradation records one stage that fell back instead of using its service.
type Degradation struct {
	Stage   string     `json:"stage"`
	Turn    int        `json:"turn,omitempty"`
	Speaker persona.ID `json:"speaker,omitempty"`
	Reason  string     `json:"reason"`
}

type Artifact struct {
	ID           string           `json:"id"`
	Mode         debate.Mode      `json:"mode"`
	Persona1     persona.ID       `json:"persona1"`
	Persona2     persona.ID       `json:"persona2,omitempty"`
	Language     persona.Language `json:"language"`
	Description  string           `json:"description"`
	Script       string           `json:"script"`
	Turns        int              `json:"turns"`
	Duration     time.Duration    `json:"-"`
	DurationMS   int64            `json:"duration_ms"`
	Degraded     bool             `json:"degraded"`
	Degradations []Degradation    `json:"degradations,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	Audio        []byte           `json:"-"`
}

// Sink receives progress events. It is called from the goroutine running the
// pipeline and must not block for long.
type Sink func(protocol.Progress)

type Pipeline struct {
	vision    Describer
	orch      *debate.Orchestrator
	assembler *assembly.Assembler
	usage     usage.Counter
	metrics   *observability.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

func New(deps Deps, logger zerolog.Logger) *Pipeline {
	if deps.Usage == nil {
		deps.Usage = usage.Unlimited{}
	}
	return &Pipeline{
		vision:    deps.Vision,
		orch:      debate.NewOrchestrator(timedTurns{next: deps.Turns, metrics: deps.Metrics}, logger),
		assembler: assembly.New(timedSpeech{next: deps.Speech, metrics: deps.Metrics}, deps.Assembly, logger),
		usage:     deps.Usage,
		metrics:   deps.Metrics,
		logger:    logger.With().Str("component", "pipeline").Logger(),
		now:       time.Now,
	}
}

// Run produces an artifact for req. Errors are a usage limit, an invalid
// request, ctx cancellation, or reliability.ErrNoArtifact.
func (p *Pipeline) Run(ctx context.Context, req Request, sink Sink) (Artifact, error) {
	started := p.now()
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	emit := func(ev protocol.Progress) {
		if sink == nil {
			return
		}
		ev.Type = protocol.TypeProgress
		ev.SessionID = req.SessionID
		ev.TSMs = p.now().UnixMilli()
		sink(ev)
	}

	s, err := debate.NewSession(req.SessionID, req.Persona1, req.Persona2, req.Language, req.Rounds)
	if err != nil {
		return Artifact{}, err
	}
	if req.GuestID != "" {
		if _, err := p.usage.CheckAndIncrement(ctx, req.GuestID); err != nil {
			p.metrics.Event("usage_rejected")
			return Artifact{}, err
		}
	}

	if p.metrics != nil {
		p.metrics.ActiveSessions.Inc()
		defer p.metrics.ActiveSessions.Dec()
	}
	p.metrics.Event("session_started")
	log := p.logger.With().Str("session_id", s.ID).Str("mode", string(s.Mode())).Logger()
	log.Info().
		Str("persona1", string(s.Persona1)).
		Str("persona2", string(s.Persona2)).
		Str("language", string(s.Language)).
		Int("rounds", s.Rounds).
		Msg("pipeline started")

	art, err := p.run(ctx, s, req.Image, emit)
	if err != nil {
		if req.GuestID != "" {
			if rerr := p.usage.Release(context.WithoutCancel(ctx), req.GuestID); rerr != nil {
				log.Warn().Err(rerr).Msg("usage release failed")
			}
		}
		status := "failed"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = "cancelled"
		}
		p.metrics.Event("session_" + status)
		p.metrics.ObserveStage(observability.StageTotal, status, p.now().Sub(started))
		emit(protocol.Progress{Stage: protocol.StageFailed, Status: status, Detail: err.Error()})
		log.Warn().Err(err).Str("status", status).Msg("pipeline stopped")
		return Artifact{}, err
	}

	status := string(reliability.StatusOK)
	if art.Degraded {
		status = string(reliability.StatusDegraded)
	}
	p.metrics.Event("session_completed")
	p.metrics.ObserveStage(observability.StageTotal, status, p.now().Sub(started))
	p.metrics.ObserveArtifact(art.Duration)
	emit(protocol.Progress{Stage: protocol.StageCompleted, Status: status, Total: art.Turns})
	log.Info().
		Int("turns", art.Turns).
		Dur("audio", art.Duration).
		Bool("degraded", art.Degraded).
		Int("degradations", len(art.Degradations)).
		Dur("elapsed", p.now().Sub(started)).
		Msg("pipeline completed")
	return art, nil
}

func (p *Pipeline) run(ctx context.Context, s *debate.Session, img vision.Image, emit Sink) (Artifact, error) {
	var degradations []Degradation
	total := s.ExpectedTurns()

	emit(protocol.Progress{Stage: protocol.StageVisionStarted})
	t0 := p.now()
	desc := p.describe(ctx, img, s.Language)
	p.metrics.ObserveStage(observability.StageVision, string(desc.Status), p.now().Sub(t0))
	providerError(p.metrics, desc.Err)
	if desc.IsFailed() {
		return Artifact{}, stageError("vision", desc.Reason, desc.Err)
	}
	if desc.IsDegraded() {
		degradations = append(degradations, Degradation{Stage: observability.StageVision, Reason: desc.Reason})
	}
	emit(protocol.Progress{Stage: protocol.StageVisionDone, Status: string(desc.Status), Detail: desc.Reason})
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	s.ImageDescription = desc.Value

	err := p.orch.Run(ctx, s, img, func(t debate.Turn) {
		n := len(s.Turns)
		if t.Status == reliability.StatusDegraded {
			degradations = append(degradations, Degradation{Stage: observability.StageGenerate, Turn: n, Speaker: t.Speaker, Reason: t.Reason})
		}
		emit(protocol.Progress{
			Stage:   protocol.StageTurnGenerated,
			Status:  string(t.Status),
			Persona: string(t.Speaker),
			Round:   t.Round,
			Index:   n,
			Total:   total,
			Detail:  t.Text,
		})
	})
	if err != nil {
		if ctx.Err() != nil {
			return Artifact{}, ctx.Err()
		}
		return Artifact{}, fmt.Errorf("%w: %w", reliability.ErrNoArtifact, err)
	}

	script := s.Transcript()
	parsed := transcript.Parse(script, s.Persona1, s.Persona2, s.Language)
	for _, d := range parsed.Dropped {
		degradations = append(degradations, Degradation{
			Stage:  "transcript",
			Turn:   d.Line,
			Reason: reliability.ErrLabelMismatch.Error(),
		})
	}
	if len(parsed.Entries) == 0 {
		return Artifact{}, fmt.Errorf("%w: transcript has no speakable lines", reliability.ErrNoArtifact)
	}

	t0 = p.now()
	res, err := p.assembler.Assemble(ctx, parsed.Entries, s.Language, func(seg assembly.Segment) {
		emit(protocol.Progress{
			Stage:   protocol.StageSegmentSynthesized,
			Status:  string(seg.Status),
			Persona: string(seg.Speaker),
			Index:   seg.Index + 1,
			Total:   len(parsed.Entries),
			Detail:  seg.Provider,
		})
	})
	if err != nil {
		if ctx.Err() != nil {
			return Artifact{}, ctx.Err()
		}
		return Artifact{}, err
	}
	assembleStatus := reliability.StatusOK
	for _, seg := range res.Degraded() {
		assembleStatus = reliability.StatusDegraded
		degradations = append(degradations, Degradation{
			Stage:   observability.StageSynthesize,
			Turn:    seg.Index + 1,
			Speaker: seg.Speaker,
			Reason:  seg.Reason,
		})
	}
	p.metrics.ObserveStage(observability.StageAssemble, string(assembleStatus), p.now().Sub(t0))
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	return Artifact{
		ID:           s.ID,
		Mode:         s.Mode(),
		Persona1:     s.Persona1,
		Persona2:     s.Persona2,
		Language:     s.Language,
		Description:  s.ImageDescription,
		Script:       script,
		Turns:        len(parsed.Entries),
		Duration:     res.Duration,
		DurationMS:   res.Duration.Milliseconds(),
		Degraded:     len(degradations) > 0,
		Degradations: degradations,
		Timestamp:    p.now().UTC(),
		Audio:        res.WAV,
	}, nil
}

func (p *Pipeline) describe(ctx context.Context, img vision.Image, lang persona.Language) reliability.Outcome[string] {
	if p.vision == nil {
		return reliability.Degraded(vision.FallbackDescription(lang), "no vision service configured", reliability.ErrNetwork)
	}
	return p.vision.Describe(ctx, img, lang)
}

func stageError(stage, reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %s", stage, reason)
	}
	return fmt.Errorf("%s: %s: %w", stage, reason, err)
}

// providerError counts upstream status failures by service and code.
func providerError(m *observability.Metrics, err error) {
	if m == nil || err == nil {
		return
	}
	var se *reliability.StatusError
	if errors.As(err, &se) {
		m.ProviderErrors.WithLabelValues(se.Service, strconv.Itoa(se.Status)).Inc()
		return
	}
	switch {
	case errors.Is(err, reliability.ErrParse):
		m.ProviderErrors.WithLabelValues("upstream", "parse").Inc()
	case errors.Is(err, context.DeadlineExceeded):
		m.ProviderErrors.WithLabelValues("upstream", "timeout").Inc()
	case errors.Is(err, reliability.ErrNetwork):
		m.ProviderErrors.WithLabelValues("upstream", "network").Inc()
	}
}

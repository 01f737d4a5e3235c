package voice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/audio"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
)

// Speech is one synthesized turn, already normalized to PCM16LE mono at
// audio.SampleRate.
type Speech struct {
	PCM          []byte
	Provider     string
	SourceFormat string
	Duration     time.Duration
	Attempts     int
}

type SynthesizerConfig struct {
	// Policy bounds each primary call. Attempts includes the first try.
	Policy reliability.Policy
	// Cooldown keeps the primary disabled after a credential or quota rejection.
	Cooldown time.Duration
}

// Synthesizer prefers the primary provider and degrades to the placeholder when
// the primary is missing, rejects the call, or returns undecodable audio.
type Synthesizer struct {
	resolver    *Resolver
	primary     Provider
	placeholder *PlaceholderProvider
	cfg         SynthesizerConfig
	logger      zerolog.Logger

	// blockedUntil is a unix-nano deadline set when the primary rejects our credential.
	blockedUntil atomic.Int64
	now          func() time.Time
}

// NewSynthesizer builds a synthesizer. primary may be nil when no credential is
// configured; every call then takes the placeholder path.
func NewSynthesizer(resolver *Resolver, primary Provider, cfg SynthesizerConfig, logger zerolog.Logger) *Synthesizer {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	return &Synthesizer{
		resolver:    resolver,
		primary:     primary,
		placeholder: NewPlaceholderProvider(),
		cfg:         cfg,
		logger:      logger.With().Str("component", "synthesizer").Logger(),
		now:         time.Now,
	}
}

// HasPrimary reports whether a real voice service is configured.
func (s *Synthesizer) HasPrimary() bool { return s.primary != nil }

// Synthesize speaks text as persona id. The outcome is Failed only for an
// unknown persona or a cancelled context; every other failure is Degraded with
// placeholder audio.
func (s *Synthesizer) Synthesize(ctx context.Context, id persona.ID, lang persona.Language, text string) reliability.Outcome[Speech] {
	profile, err := s.resolver.Resolve(id)
	if err != nil {
		return reliability.Failed[Speech]("resolve voice profile", err)
	}
	req := s.resolver.Request(profile, text, lang)

	var reason string
	var cause error
	switch {
	case s.primary == nil:
		reason = "no synthesis credential configured"
		cause = reliability.ErrSynthesisDegraded
	case s.primaryBlocked():
		reason = "synthesis provider disabled after credential rejection"
		cause = reliability.ErrSynthesisDegraded
	default:
		speech, attempts, err := reliability.Do(ctx, s.cfg.Policy, func(ctx context.Context) (Speech, error) {
			return s.callPrimary(ctx, req)
		})
		if err == nil {
			speech.Attempts = attempts
			return reliability.Ok(speech)
		}
		if ctx.Err() != nil {
			return reliability.Failed[Speech]("synthesis cancelled", ctx.Err())
		}
		s.noteFailure(err)
		s.logger.Warn().Err(err).
			Str("persona", string(id)).
			Int("attempts", attempts).
			Msg("synthesis failed; using placeholder")
		reason = fmt.Sprintf("%s failed after %d attempt(s)", s.primary.Name(), attempts)
		cause = errors.Join(reliability.ErrSynthesisDegraded, err)
	}

	pcm := s.placeholder.Render(req)
	return reliability.Degraded(Speech{
		PCM:          pcm,
		Provider:     s.placeholder.Name(),
		SourceFormat: audio.EncodingPCM44100,
		Duration:     audio.Duration(pcm),
	}, reason, cause)
}

func (s *Synthesizer) callPrimary(ctx context.Context, req Request) (Speech, error) {
	out, err := s.primary.Synthesize(ctx, req)
	if err != nil {
		return Speech{}, err
	}
	pcm, err := audio.ToPCM(out.Data, out.Format)
	if err != nil {
		return Speech{}, fmt.Errorf("%w: %w", reliability.ErrParse, err)
	}
	if len(pcm) == 0 {
		return Speech{}, fmt.Errorf("%w: decoded audio is empty", reliability.ErrParse)
	}
	return Speech{
		PCM:          pcm,
		Provider:     s.primary.Name(),
		SourceFormat: out.Format,
		Duration:     audio.Duration(pcm),
	}, nil
}

func (s *Synthesizer) primaryBlocked() bool {
	until := s.blockedUntil.Load()
	return until != 0 && s.now().UnixNano() < until
}

func (s *Synthesizer) noteFailure(err error) {
	var se *reliability.StatusError
	if !errors.As(err, &se) {
		return
	}
	switch se.Status {
	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden:
		s.blockedUntil.Store(s.now().Add(s.cfg.Cooldown).UnixNano())
	}
}

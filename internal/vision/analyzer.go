// Package vision produces the shared image description every persona turn is
// grounded on.
package vision

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/gemini"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
)

var describeConfig = gemini.GenerationConfig{
	Temperature:     0.4,
	TopK:            32,
	TopP:            0.95,
	MaxOutputTokens: 400,
}

const describePrompt = `Describe this image objectively in %s in 150 to 200 words.
Cover the main subject, the composition, the colors, the lighting and the overall mood.
Mention concrete visual details that someone discussing the image could point to.
Do not speculate about who took it, do not use lists or headings, and write plain prose.`

type Analyzer struct {
	gen    gemini.Generator
	policy reliability.Policy
	logger zerolog.Logger
}

// NewAnalyzer builds an analyzer. gen may be nil, in which case every call
// returns the templated description.
func NewAnalyzer(gen gemini.Generator, policy reliability.Policy, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		gen:    gen,
		policy: policy,
		logger: logger.With().Str("component", "vision").Logger(),
	}
}

// Describe returns an objective description of img in lang. It fails only when
// ctx is cancelled; any upstream failure yields the templated description as a
// Degraded outcome.
func (a *Analyzer) Describe(ctx context.Context, img Image, lang persona.Language) reliability.Outcome[string] {
	if a.gen == nil {
		return reliability.Degraded(FallbackDescription(lang), "no vision service configured", reliability.ErrNetwork)
	}
	req := gemini.Request{
		Prompt:   fmt.Sprintf(describePrompt, persona.LanguageName(lang)),
		Image:    img.Data,
		MIMEType: img.MIMEType,
		Config:   describeConfig,
	}
	text, attempts, err := reliability.Do(ctx, a.policy, func(ctx context.Context) (string, error) {
		return a.gen.Generate(ctx, req)
	})
	if err == nil {
		return reliability.Ok(text)
	}
	if ctx.Err() != nil {
		return reliability.Failed[string]("vision cancelled", ctx.Err())
	}
	a.logger.Warn().Err(err).Int("attempts", attempts).Msg("image description failed; using template")
	reason := "vision request failed"
	if errors.Is(err, reliability.ErrParse) {
		reason = "vision response had no text"
	}
	return reliability.Degraded(FallbackDescription(lang), reason, err)
}

package debate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/gemini"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/transcript"
	"github.com/ent0n29/lenstalk/internal/vision"
)

var turnConfig = gemini.GenerationConfig{
	Temperature:     0.9,
	TopK:            40,
	TopP:            0.95,
	MaxOutputTokens: 300,
}

var narrationConfig = gemini.GenerationConfig{
	Temperature:     0.9,
	TopK:            40,
	TopP:            0.95,
	MaxOutputTokens: 500,
}

// TurnRequest is everything one turn's prompt is built from.
type TurnRequest struct {
	Persona     persona.ID
	Opponent    persona.ID
	Round       int
	Rounds      int
	Description string
	History     []transcript.Entry
	Image       vision.Image
	Language    persona.Language
}

func (r TurnRequest) narration() bool { return r.Opponent == "" }

func (r TurnRequest) opening() bool { return len(r.History) == 0 }

// Generator produces one persona turn, falling back to the persona's canned
// line for the round when the generation service fails.
type Generator struct {
	gen    gemini.Generator
	policy reliability.Policy
	logger zerolog.Logger
}

// NewGenerator builds a generator. gen may be nil; every turn is then canned.
func NewGenerator(gen gemini.Generator, policy reliability.Policy, logger zerolog.Logger) *Generator {
	return &Generator{gen: gen, policy: policy, logger: logger.With().Str("component", "persona-generator").Logger()}
}

func (g *Generator) Turn(ctx context.Context, req TurnRequest) reliability.Outcome[string] {
	d, err := persona.Get(req.Persona)
	if err != nil {
		return reliability.Failed[string]("unknown persona", err)
	}
	fallback := d.FallbackIn(req.Language, req.Round)
	cfg := turnConfig
	if req.narration() {
		fallback = d.NarrationFallbackIn(req.Language)
		cfg = narrationConfig
	}
	if g.gen == nil {
		return reliability.Degraded(fallback, "no generation service configured", reliability.ErrNetwork)
	}

	gr := gemini.Request{
		Prompt:   BuildPrompt(req),
		Image:    req.Image.Data,
		MIMEType: req.Image.MIMEType,
		Config:   cfg,
	}
	text, attempts, err := reliability.Do(ctx, g.policy, func(ctx context.Context) (string, error) {
		out, err := g.gen.Generate(ctx, gr)
		if err != nil {
			return "", err
		}
		out = cleanTurn(out, d)
		if out == "" {
			return "", fmt.Errorf("%w: turn text empty after cleanup", reliability.ErrParse)
		}
		return out, nil
	})
	if err == nil {
		return reliability.Ok(text)
	}
	if ctx.Err() != nil {
		return reliability.Failed[string]("generation cancelled", ctx.Err())
	}
	g.logger.Warn().Err(err).
		Str("persona", string(req.Persona)).
		Int("round", req.Round).
		Int("attempts", attempts).
		Msg("turn generation failed; using canned line")
	return reliability.Degraded(fallback, fmt.Sprintf("generation failed for %s round %d", req.Persona, req.Round), err)
}

// BuildPrompt renders the persona prompt for one turn.
func BuildPrompt(req TurnRequest) string {
	d := persona.MustGet(req.Persona)
	lang := persona.LanguageName(req.Language)
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, talking about a photo the listener has just shared.\n", d.Name(persona.English))
	fmt.Fprintf(&b, "Stay in character:\n- Tone: %s\n- Register: %s\n- You notice: %s\n- Catchphrases, used naturally and sparingly: %s\n\n",
		d.Style.Tone, d.Style.Register, d.Style.Focus, strings.Join(d.Style.Catchphrases, ", "))
	fmt.Fprintf(&b, "Description of the photo (the image is also attached):\n%s\n\n", strings.TrimSpace(req.Description))

	if req.narration() {
		b.WriteString("Narrate this photo as a short spoken monologue in your own voice.\n")
		fmt.Fprintf(&b, "Speak 150 to 200 words in %s. Reference at least three concrete visual details.\n", lang)
		b.WriteString(rules)
		return b.String()
	}

	opp := persona.MustGet(req.Opponent)
	if len(req.History) > 0 {
		fmt.Fprintf(&b, "Conversation so far:\n%s\n\n", transcript.Render(req.History, persona.English))
	}
	switch {
	case req.opening():
		fmt.Fprintf(&b, "This is round %d of %d and you speak first. Give your opening take on the photo; %s will answer you.\n",
			req.Round, req.Rounds, opp.Name(persona.English))
	case req.Round == req.Rounds:
		fmt.Fprintf(&b, "This is the final round. Respond to %s's last point, bring in a visual detail nobody has mentioned yet and close with your final verdict.\n",
			opp.Name(persona.English))
	default:
		fmt.Fprintf(&b, "This is round %d of %d. Respond directly to %s's last point, agree or push back in character, and bring in a visual detail nobody has mentioned yet.\n",
			req.Round, req.Rounds, opp.Name(persona.English))
	}
	fmt.Fprintf(&b, "Speak 60 to 90 words in %s.\n", lang)
	b.WriteString(rules)
	return b.String()
}

const rules = `Rules:
- Natural spoken register, as if on air. No stage directions, lists, emojis or markdown.
- Refer to concrete things visible in the photo.
- Output only your own words, without a name label and without writing lines for anyone else.`

// cleanTurn removes fences, a leading self label, wrapping quotes and line breaks.
func cleanTurn(text string, d persona.Definition) string {
	text = gemini.CleanOutput(text)
	for _, lang := range persona.Languages {
		for _, sep := range []string{":", "："} {
			prefix := d.Name(lang) + sep
			if len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
				text = strings.TrimSpace(text[len(prefix):])
			}
		}
	}
	text = strings.Trim(text, "\"“”")
	return transcript.Flatten(text)
}

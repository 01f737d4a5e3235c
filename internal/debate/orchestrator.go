package debate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/vision"
)

// TurnGenerator produces the text for one turn.
type TurnGenerator interface {
	Turn(ctx context.Context, req TurnRequest) reliability.Outcome[string]
}

// Orchestrator drives a session turn by turn. Turn k+1's prompt includes turn
// k's text, so turns are generated strictly in order.
type Orchestrator struct {
	gen    TurnGenerator
	logger zerolog.Logger
}

func NewOrchestrator(gen TurnGenerator, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{gen: gen, logger: logger.With().Str("component", "orchestrator").Logger()}
}

// Run fills s.Turns. onTurn, if set, is called after each turn is appended. A
// cancelled ctx stops before the next turn and the partial turns are discarded.
func (o *Orchestrator) Run(ctx context.Context, s *Session, img vision.Image, onTurn func(Turn)) error {
	s.Turns = s.Turns[:0]
	for {
		speaker, round, ok := s.Next()
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			s.Turns = nil
			return err
		}
		req := TurnRequest{
			Persona:     speaker,
			Round:       round,
			Rounds:      s.Rounds,
			Description: s.ImageDescription,
			History:     s.Entries(),
			Image:       img,
			Language:    s.Language,
		}
		if s.Mode() == ModeDebate {
			req.Opponent = s.Opponent(speaker)
		}
		out := o.gen.Turn(ctx, req)
		if out.IsFailed() {
			n := len(s.Turns) + 1
			s.Turns = nil
			return fmt.Errorf("turn %d (%s): %s: %w", n, speaker, out.Reason, out.Err)
		}
		turn := Turn{Speaker: speaker, Round: round, Text: out.Value, Status: out.Status, Reason: out.Reason}
		if err := s.append(turn); err != nil {
			return err
		}
		o.logger.Debug().
			Str("session_id", s.ID).
			Str("persona", string(speaker)).
			Int("round", round).
			Str("status", string(out.Status)).
			Msg("turn generated")
		if onTurn != nil {
			onTurn(turn)
		}
	}
}

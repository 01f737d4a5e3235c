// Package debate generates the persona turns for one session: a single
// narration turn, or R rounds of alternating debate turns.
package debate

import (
	"errors"
	"fmt"

	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/transcript"
)

type Mode string

const (
	ModeNarration Mode = "narration"
	ModeDebate    Mode = "debate"
)

const (
	DefaultRounds = 3
	MaxRounds     = 10
)

var (
	ErrSamePersona = errors.New("debate needs two different personas")
	ErrRounds      = fmt.Errorf("rounds must be between 1 and %d", MaxRounds)
	errOutOfOrder  = errors.New("turn out of order")
)

type Turn struct {
	Speaker persona.ID
	Round   int
	Text    string
	Status  reliability.Status
	Reason  string
}

// Session is the transient state of one request. Only the orchestrator appends
// turns; nothing here is persisted.
type Session struct {
	ID               string
	Persona1         persona.ID
	Persona2         persona.ID
	ImageDescription string
	Language         persona.Language
	Rounds           int
	Turns            []Turn
}

// NewSession validates the persona pair. An empty persona2 selects narration.
func NewSession(id string, p1, p2 persona.ID, lang persona.Language, rounds int) (*Session, error) {
	if _, err := persona.Get(p1); err != nil {
		return nil, err
	}
	if p2 != "" {
		if _, err := persona.Get(p2); err != nil {
			return nil, err
		}
		if p1 == p2 {
			return nil, ErrSamePersona
		}
	}
	if rounds == 0 {
		rounds = DefaultRounds
	}
	if rounds < 1 || rounds > MaxRounds {
		return nil, ErrRounds
	}
	return &Session{ID: id, Persona1: p1, Persona2: p2, Language: lang, Rounds: rounds}, nil
}

func (s *Session) Mode() Mode {
	if s.Persona2 == "" {
		return ModeNarration
	}
	return ModeDebate
}

// ExpectedTurns is 1 for narration and 2R for a debate.
func (s *Session) ExpectedTurns() int {
	if s.Mode() == ModeNarration {
		return 1
	}
	return 2 * s.Rounds
}

// Next returns the speaker and round of the next turn, or false when complete.
func (s *Session) Next() (persona.ID, int, bool) {
	n := len(s.Turns)
	if n >= s.ExpectedTurns() {
		return "", 0, false
	}
	if s.Mode() == ModeNarration {
		return s.Persona1, 1, true
	}
	speaker := s.Persona1
	if n%2 == 1 {
		speaker = s.Persona2
	}
	return speaker, n/2 + 1, true
}

// Opponent returns the other persona in a debate.
func (s *Session) Opponent(id persona.ID) persona.ID {
	if id == s.Persona1 {
		return s.Persona2
	}
	return s.Persona1
}

func (s *Session) append(t Turn) error {
	speaker, round, ok := s.Next()
	if !ok || t.Speaker != speaker || t.Round != round {
		return fmt.Errorf("%w: got %s round %d", errOutOfOrder, t.Speaker, t.Round)
	}
	s.Turns = append(s.Turns, t)
	return nil
}

// Entries returns the turns as transcript entries.
func (s *Session) Entries() []transcript.Entry {
	out := make([]transcript.Entry, len(s.Turns))
	for i, t := range s.Turns {
		out[i] = transcript.Entry{Speaker: t.Speaker, Text: t.Text}
	}
	return out
}

// Transcript renders the turns as "<DisplayName>: <text>" lines.
func (s *Session) Transcript() string {
	return transcript.Render(s.Entries(), s.Language)
}

// Package transcript renders turns as "<Label>: <text>" lines and recovers
// them again for synthesis.
package transcript

import (
	"fmt"
	"strings"

	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/reliability"
)

type Entry struct {
	Speaker persona.ID
	Text    string
}

// Dropped is a non-empty line whose label matched no active persona.
type Dropped struct {
	Line int // 1-based
	Text string
}

type Result struct {
	Entries []Entry
	Dropped []Dropped
}

// Render writes one line per entry using display names in lang. Line breaks
// inside a turn are folded so each turn stays on a single line.
func Render(entries []Entry, lang persona.Language) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(Label(e.Speaker, lang))
		b.WriteString(": ")
		b.WriteString(Flatten(e.Text))
	}
	return b.String()
}

// Label is the speaker prefix for id in lang.
func Label(id persona.ID, lang persona.Language) string {
	d, err := persona.Get(id)
	if err != nil {
		return string(id)
	}
	return d.Name(lang)
}

// Flatten collapses all whitespace runs, including newlines, to single spaces.
func Flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Parse recovers entries from script for the active personas. second may be
// empty for a single-speaker transcript. Lines whose label matches neither
// persona are dropped and listed in Result.Dropped; blank lines are ignored.
func Parse(script string, first, second persona.ID, lang persona.Language) Result {
	m := newMatcher(first, second, lang)
	var res Result
	for i, raw := range strings.Split(script, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		label, text, ok := splitLabel(line)
		if ok {
			if id, found := m.match(label); found {
				res.Entries = append(res.Entries, Entry{Speaker: id, Text: Flatten(text)})
				continue
			}
		}
		res.Dropped = append(res.Dropped, Dropped{Line: i + 1, Text: line})
	}
	return res
}

// ParseStrict is Parse that rejects any unmatched line with
// reliability.ErrLabelMismatch.
func ParseStrict(script string, first, second persona.ID, lang persona.Language) ([]Entry, error) {
	res := Parse(script, first, second, lang)
	if len(res.Dropped) > 0 {
		d := res.Dropped[0]
		return nil, fmt.Errorf("line %d %q: %w", d.Line, truncate(d.Text, 40), reliability.ErrLabelMismatch)
	}
	return res.Entries, nil
}

func splitLabel(line string) (string, string, bool) {
	idx := strings.IndexAny(line, ":：")
	if idx <= 0 {
		return "", "", false
	}
	label := strings.TrimSpace(line[:idx])
	rest := line[idx:]
	if strings.HasPrefix(rest, "：") {
		rest = strings.TrimPrefix(rest, "：")
	} else {
		rest = rest[1:]
	}
	return label, strings.TrimSpace(rest), label != ""
}

// matcher tries, in order: the session-language display names, the display
// names in every other language, then the persona slug.
type matcher struct {
	tiers []map[string]persona.ID
}

func newMatcher(first, second persona.ID, lang persona.Language) matcher {
	active := make([]persona.Definition, 0, 2)
	for _, id := range []persona.ID{first, second} {
		if id == "" {
			continue
		}
		if d, err := persona.Get(id); err == nil {
			active = append(active, d)
		}
	}
	local := map[string]persona.ID{}
	anyLang := map[string]persona.ID{}
	slug := map[string]persona.ID{}
	for _, d := range active {
		local[normalize(d.Name(lang))] = d.ID
		for _, l := range persona.Languages {
			anyLang[normalize(d.Name(l))] = d.ID
		}
		slug[normalize(string(d.ID))] = d.ID
	}
	return matcher{tiers: []map[string]persona.ID{local, anyLang, slug}}
}

func (m matcher) match(label string) (persona.ID, bool) {
	key := normalize(label)
	for _, tier := range m.tiers {
		if id, ok := tier[key]; ok {
			return id, true
		}
	}
	return "", false
}

func normalize(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "*_")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Package persona holds the fixed catalog of narrator archetypes. Every
// persona carries its localized names, voice, prosody, speaking style and a
// complete per-round fallback table in a single Definition, so a persona cannot
// exist without all of them.
package persona

import (
	"errors"
	"fmt"
	"strings"
)

type ID string

const (
	WittyEntertainer ID = "witty-entertainer"
	ArtCritic        ID = "art-critic"
	Poet             ID = "poet"
	Scientist        ID = "scientist"
	Historian        ID = "historian"
	FashionGuru      ID = "fashion-guru"
	FoodCritic       ID = "food-critic"
	TravelGuide      ID = "travel-guide"
	Philosopher      ID = "philosopher"
	GrumpyGrandpa    ID = "grumpy-grandpa"
	KidExplorer      ID = "kid-explorer"
)

// Count is the number of personas. The catalog assertion in catalog.go fails
// to compile when it drifts.
const Count = 11

type Language string

const (
	English  Language = "en"
	Spanish  Language = "es"
	French   Language = "fr"
	German   Language = "de"
	Korean   Language = "ko"
	Japanese Language = "ja"
)

// Languages lists every supported UI language in display order.
var Languages = []Language{English, Spanish, French, German, Korean, Japanese}

var languageNames = map[Language]string{
	English:  "English",
	Spanish:  "Spanish",
	French:   "French",
	German:   "German",
	Korean:   "Korean",
	Japanese: "Japanese",
}

// LanguageName returns the English name of lang for use in prompts.
func LanguageName(lang Language) string {
	if n, ok := languageNames[lang]; ok {
		return n
	}
	return languageNames[English]
}

// FallbackRounds is the length of each persona's canned reply table.
const FallbackRounds = 3

var ErrUnknown = errors.New("unknown persona")

// Prosody is the default delivery for a persona. Pitch is a semitone offset,
// Rate a speed multiplier around 1.0 and Volume a linear gain in (0,1].
type Prosody struct {
	Pitch  float64
	Rate   float64
	Volume float64
}

// Style describes how a persona talks; it is embedded verbatim in prompts.
type Style struct {
	Tone         string
	Register     string
	Focus        string
	Catchphrases []string
	// Expressiveness in [0,1] loosens voice stability for livelier delivery.
	Expressiveness float64
}

type Definition struct {
	ID    ID
	Names [6]string // indexed like Languages
	// VoiceID is the external synthesis voice.
	VoiceID string
	// VoiceLanguages are the languages the voice handles natively, in preference order.
	VoiceLanguages []Language
	Prosody        Prosody
	Style          Style
	// Fallbacks are English canned replies indexed by round-1.
	Fallbacks [FallbackRounds]string
	// NarrationFallback is used when a single-persona narration cannot be generated.
	NarrationFallback string
}

// Name returns the display name in lang, falling back to English.
func (d Definition) Name(lang Language) string {
	if i := languageIndex(lang); i >= 0 && d.Names[i] != "" {
		return d.Names[i]
	}
	return d.Names[0]
}

// Fallback returns the canned reply for a 1-based round. Rounds beyond the
// table wrap around so every round has a line.
func (d Definition) Fallback(round int) string {
	if round < 1 {
		round = 1
	}
	return d.Fallbacks[(round-1)%FallbackRounds]
}

// Get returns the definition for id.
func Get(id ID) (Definition, error) {
	d, ok := byID[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknown, id)
	}
	return d, nil
}

// MustGet is Get for ids that are known to be valid.
func MustGet(id ID) Definition {
	d, err := Get(id)
	if err != nil {
		panic(err)
	}
	return d
}

// Parse normalizes a user-supplied persona id.
func Parse(raw string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := byID[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, raw)
	}
	return id, nil
}

// All returns every persona id in catalog order.
func All() []ID {
	out := make([]ID, 0, Count)
	for _, d := range catalog {
		out = append(out, d.ID)
	}
	return out
}

// ParseLanguage normalizes a language tag such as "en-US" to a supported
// Language, defaulting to English.
func ParseLanguage(raw string) Language {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	if languageIndex(Language(tag)) >= 0 {
		return Language(tag)
	}
	return English
}

func languageIndex(lang Language) int {
	for i, l := range Languages {
		if l == lang {
			return i
		}
	}
	return -1
}

var byID = func() map[ID]Definition {
	m := make(map[ID]Definition, Count)
	for _, d := range catalog {
		m[d.ID] = d
	}
	return m
}()

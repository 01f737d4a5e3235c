package voice

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"time"

	"github.com/ent0n29/lenstalk/internal/audio"
)

const (
	placeholderWordsPerSecond = 2.5
	placeholderMinDuration    = time.Second
	placeholderMarker         = 150 * time.Millisecond
	placeholderBaseHz         = 440.0
	placeholderFade           = 10 * time.Millisecond
)

// PlaceholderProvider stands in for real speech when no voice service is
// available. It renders a short marker tone pitched for the persona followed by
// silence, lasting as long as the text would take to speak. Output is
// deterministic and never empty.
type PlaceholderProvider struct{}

func NewPlaceholderProvider() *PlaceholderProvider { return &PlaceholderProvider{} }

func (p *PlaceholderProvider) Name() string { return "placeholder" }

func (p *PlaceholderProvider) Synthesize(_ context.Context, req Request) (Audio, error) {
	return Audio{Data: p.Render(req), Format: audio.EncodingPCM44100}, nil
}

// Render returns PCM16LE mono at audio.SampleRate.
func (p *PlaceholderProvider) Render(req Request) []byte {
	total := EstimateDuration(req.Text, req.Profile.Rate)
	samples := int(int64(total) * audio.SampleRate / int64(time.Second))
	pcm := make([]byte, samples*2)

	volume := req.Profile.Volume
	if volume <= 0 || volume > 1 {
		volume = 1
	}
	hz := placeholderBaseHz * math.Pow(2, req.Profile.Pitch/12)
	amp := 0.2 * volume * math.MaxInt16
	tone := int(int64(placeholderMarker) * audio.SampleRate / int64(time.Second))
	fade := int(int64(placeholderFade) * audio.SampleRate / int64(time.Second))
	for i := 0; i < tone && i < samples; i++ {
		env := 1.0
		if i < fade {
			env = float64(i) / float64(fade)
		} else if tone-i < fade {
			env = float64(tone-i) / float64(fade)
		}
		v := amp * env * math.Sin(2*math.Pi*hz*float64(i)/audio.SampleRate)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(v)))
	}
	return pcm
}

// EstimateDuration approximates how long text takes to speak at rate, with a
// one second floor.
func EstimateDuration(text string, rate float64) time.Duration {
	if rate <= 0 {
		rate = 1
	}
	words := len(strings.Fields(text))
	d := time.Duration(float64(words) / (placeholderWordsPerSecond * rate) * float64(time.Second))
	if d < placeholderMinDuration {
		return placeholderMinDuration
	}
	return d.Truncate(time.Millisecond)
}

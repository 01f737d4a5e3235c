package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

var ErrUnsupportedEncoding = errors.New("unsupported audio encoding")

// Encoding names follow the ElevenLabs output_format vocabulary
// (pcm_44100, mp3_44100_128, ...) plus "wav" for complete containers.
const (
	EncodingPCM44100 = "pcm_44100"
	EncodingMP3      = "mp3_44100_128"
	EncodingWAV      = "wav"
)

// ToPCM converts an encoded speech buffer into PCM16LE mono at SampleRate so it
// can be spliced next to silence without producing an undecodable stream.
func ToPCM(data []byte, encoding string) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrUnsupportedEncoding)
	}
	enc := strings.ToLower(strings.TrimSpace(encoding))
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")) || enc == EncodingWAV:
		pcm, info, err := ParseWAV(data)
		if err != nil {
			return nil, err
		}
		return Normalize(pcm, info.SampleRate, info.Channels), nil
	case strings.HasPrefix(enc, "mp3"):
		return decodeMP3(data)
	case strings.HasPrefix(enc, "pcm_"):
		rate, err := strconv.Atoi(strings.TrimPrefix(enc, "pcm_"))
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
		}
		return Normalize(evenLength(data), rate, 1), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
}

// Decodable reports whether ToPCM accepts provider output tagged encoding.
func Decodable(encoding string) bool {
	enc := strings.ToLower(strings.TrimSpace(encoding))
	switch {
	case enc == EncodingWAV, strings.HasPrefix(enc, "mp3_"):
		return true
	case strings.HasPrefix(enc, "pcm_"):
		rate, err := strconv.Atoi(strings.TrimPrefix(enc, "pcm_"))
		return err == nil && rate > 0
	}
	return false
}

func decodeMP3(data []byte) ([]byte, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	// go-mp3 always yields interleaved stereo PCM16LE.
	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	return Normalize(pcm, d.SampleRate(), 2), nil
}

// Normalize downmixes interleaved PCM16LE to mono and resamples it to SampleRate.
func Normalize(pcm []byte, rate, channels int) []byte {
	samples := bytesToSamples(evenLength(pcm))
	if channels > 1 {
		samples = downmix(samples, channels)
	}
	if rate != SampleRate {
		samples = resample(samples, rate, SampleRate)
	}
	return samplesToBytes(samples)
}

// Duration returns the playback length of mono PCM16LE at SampleRate.
func Duration(pcm []byte) time.Duration {
	samples := len(pcm) / 2
	return time.Duration(samples) * time.Second / SampleRate
}

func evenLength(b []byte) []byte {
	if len(b)%2 != 0 {
		return b[:len(b)-1]
	}
	return b
}

func bytesToSamples(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func samplesToBytes(s []int16) []byte {
	out := make([]byte, len(s)*2)
	for i, v := range s {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func downmix(s []int16, channels int) []int16 {
	frames := len(s) / channels
	out := make([]int16, frames)
	for f := 0; f < frames; f++ {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += int(s[f*channels+c])
		}
		out[f] = int16(sum / channels)
	}
	return out
}

// resample uses linear interpolation; speech at ElevenLabs rates does not need better.
func resample(s []int16, from, to int) []int16 {
	if len(s) == 0 || from <= 0 || from == to {
		return s
	}
	n := int(int64(len(s)) * int64(to) / int64(from))
	out := make([]int16, n)
	step := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= len(s)-1 {
			out[i] = s[len(s)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = int16(float64(s[idx])*(1-frac) + float64(s[idx+1])*frac)
	}
	return out
}

// Gain scales mono PCM16LE by g in place, clipping at the int16 range.
func Gain(pcm []byte, g float64) []byte {
	if g == 1 || g <= 0 {
		return pcm
	}
	pcm = evenLength(pcm)
	for i := 0; i+1 < len(pcm); i += 2 {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i:]))) * g
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		binary.LittleEndian.PutUint16(pcm[i:], uint16(int16(v)))
	}
	return pcm
}

package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	// SampleRate is the rate every assembled artifact is rendered at.
	SampleRate = 44100
	// WAVHeaderSize is the size of the canonical PCM header written by WriteWAVPCM16LETo.
	WAVHeaderSize = 44
	// DefaultGap is the pause inserted between turns.
	DefaultGap = 800 * time.Millisecond
)

var ErrInvalidWAV = errors.New("invalid wav container")

// EncodeWAVPCM16LE wraps raw PCM16LE mono audio bytes in a WAV container.
func EncodeWAVPCM16LE(pcm []byte, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(WAVHeaderSize + len(pcm))
	if err := WriteWAVPCM16LETo(&buf, pcm, sampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWAVPCM16LEFile writes raw PCM16LE mono audio bytes as a WAV file.
func WriteWAVPCM16LEFile(path string, pcm []byte, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteWAVPCM16LETo(f, pcm, sampleRate)
}

// WriteWAVPCM16LETo writes raw PCM16LE mono audio bytes to out as a WAV stream.
func WriteWAVPCM16LETo(out io.Writer, pcm []byte, sampleRate int) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}

	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	w := bufio.NewWriter(out)

	// RIFF header.
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}

	// fmt chunk.
	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(audioFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(numChannels)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}

	// data chunk.
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if _, err := w.Write(pcm); err != nil {
		return err
	}
	return w.Flush()
}

// SilenceSamples returns floor(ms * 44100 / 1000), the sample count for a gap.
func SilenceSamples(ms int) int {
	if ms <= 0 {
		return 0
	}
	return int(int64(ms) * SampleRate / 1000)
}

// SilencePCM returns zeroed PCM16LE mono samples for ms milliseconds at 44.1 kHz.
func SilencePCM(ms int) []byte {
	return make([]byte, SilenceSamples(ms)*2)
}

// Silence builds a complete mono 16-bit 44.1 kHz WAV holding ms milliseconds of
// digital silence. Its length is always 44 + SilenceSamples(ms)*2.
func Silence(ms int) []byte {
	out, err := EncodeWAVPCM16LE(SilencePCM(ms), SampleRate)
	if err != nil {
		// bytes.Buffer writes cannot fail.
		panic(err)
	}
	return out
}

// WAVInfo describes the PCM payload of a parsed WAV container.
type WAVInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// ParseWAV walks RIFF chunks and returns the raw data payload of a PCM WAV.
// Only 16-bit integer PCM is accepted.
func ParseWAV(data []byte) ([]byte, WAVInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, WAVInfo{}, ErrInvalidWAV
	}
	var (
		info    WAVInfo
		haveFmt bool
	)
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if size < 0 || end > len(data) {
			// Streaming writers sometimes leave the data size unset; take what is there.
			if id == "data" && haveFmt {
				end = len(data)
			} else {
				return nil, WAVInfo{}, fmt.Errorf("%w: chunk %q overruns buffer", ErrInvalidWAV, id)
			}
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, WAVInfo{}, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			info.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			if format != 1 || info.BitsPerSample != 16 {
				return nil, WAVInfo{}, fmt.Errorf("%w: unsupported format %d/%d-bit", ErrInvalidWAV, format, info.BitsPerSample)
			}
			if info.Channels <= 0 || info.SampleRate <= 0 {
				return nil, WAVInfo{}, fmt.Errorf("%w: bad channel count or sample rate", ErrInvalidWAV)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, WAVInfo{}, fmt.Errorf("%w: data before fmt", ErrInvalidWAV)
			}
			return data[body:end], info, nil
		}
		// Chunks are word aligned.
		pos = end + size%2
	}
	return nil, WAVInfo{}, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
}

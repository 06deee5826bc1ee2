package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Waveform is a decoded PCM signal ready for analysis.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

var errNotWAV = errors.New("not a RIFF/WAVE file")

// ReadWAV decodes a 16-bit PCM WAV file into normalized samples. Stereo input
// is downmixed to mono by channel averaging. An unreadable or corrupt file is
// fatal for the job; there is no fallback signal to analyze.
func ReadWAV(path string) (Waveform, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("read wav: %w", err)
	}
	if len(b) < 44 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Waveform{}, errNotWAV
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		data          []byte
	)

	// Walk chunks; fmt and data may appear in any order and other chunks
	// (LIST, fact) can sit between them.
	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		body := off + 8
		if body+size > len(b) {
			size = len(b) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return Waveform{}, errors.New("wav: short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(b[body : body+2])
			if format != 1 {
				return Waveform{}, fmt.Errorf("wav: unsupported format %d (PCM only)", format)
			}
			channels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(b[body+14 : body+16]))
		case "data":
			data = b[body : body+size]
		}
		// Chunks are word-aligned.
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if sampleRate <= 0 || channels <= 0 {
		return Waveform{}, errors.New("wav: missing fmt chunk")
	}
	if bitsPerSample != 16 {
		return Waveform{}, fmt.Errorf("wav: unsupported bit depth %d", bitsPerSample)
	}
	if channels > 2 {
		return Waveform{}, fmt.Errorf("wav: unsupported channel count %d", channels)
	}
	if len(data) == 0 {
		return Waveform{}, errors.New("wav: missing data chunk")
	}

	frameBytes := 2 * channels
	n := len(data) / frameBytes
	samples := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			v := int16(binary.LittleEndian.Uint16(data[i*frameBytes+2*c:]))
			sum += float64(v) / 32768.0
		}
		samples = append(samples, sum/float64(channels))
	}
	return Waveform{Samples: samples, SampleRate: sampleRate}, nil
}

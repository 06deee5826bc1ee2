package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeWAV writes a minimal PCM16 RIFF file. Interleaved samples, extra
// chunks optionally inserted before data to exercise the chunk walker.
func writeWAV(t *testing.T, sampleRate, channels int, pcm []int16, extraChunk bool) string {
	t.Helper()

	var body []byte
	appendU16 := func(v uint16) { body = binary.LittleEndian.AppendUint16(body, v) }
	appendU32 := func(v uint32) { body = binary.LittleEndian.AppendUint32(body, v) }

	body = append(body, "WAVE"...)
	body = append(body, "fmt "...)
	appendU32(16)
	appendU16(1) // PCM
	appendU16(uint16(channels))
	appendU32(uint32(sampleRate))
	appendU32(uint32(sampleRate * channels * 2)) // byte rate
	appendU16(uint16(channels * 2))              // block align
	appendU16(16)                                // bits per sample

	if extraChunk {
		body = append(body, "LIST"...)
		appendU32(4)
		body = append(body, "INFO"...)
	}

	body = append(body, "data"...)
	appendU32(uint32(len(pcm) * 2))
	for _, s := range pcm {
		appendU16(uint16(s))
	}

	file := []byte("RIFF")
	file = binary.LittleEndian.AppendUint32(file, uint32(len(body)))
	file = append(file, body...)

	path := filepath.Join(t.TempDir(), "test.wav")
	if err := os.WriteFile(path, file, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadWAVMono(t *testing.T) {
	path := writeWAV(t, 16000, 1, []int16{0, 16384, -16384, 32767}, false)

	w, err := ReadWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	if w.SampleRate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", w.SampleRate)
	}
	want := []float64{0, 0.5, -0.5, 32767.0 / 32768}
	if len(w.Samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(w.Samples), len(want))
	}
	for i := range want {
		if math.Abs(w.Samples[i]-want[i]) > 1e-9 {
			t.Fatalf("sample %d = %v, want %v", i, w.Samples[i], want[i])
		}
	}
}

func TestReadWAVStereoDownmix(t *testing.T) {
	// One frame: left 16384, right 0. Downmix averages to 0.25.
	path := writeWAV(t, 44100, 2, []int16{16384, 0}, false)

	w, err := ReadWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(w.Samples))
	}
	if math.Abs(w.Samples[0]-0.25) > 1e-9 {
		t.Fatalf("downmixed sample = %v, want 0.25", w.Samples[0])
	}
}

func TestReadWAVSkipsUnknownChunks(t *testing.T) {
	path := writeWAV(t, 16000, 1, []int16{100, 200}, true)

	w, err := ReadWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(w.Samples))
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.bin")
	if err := os.WriteFile(path, []byte("definitely not a wav file at all, not even close"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadWAV(path); err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}

func TestReadWAVMissingFile(t *testing.T) {
	if _, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

package audio

import (
	"math"
	"strings"
	"testing"
)

func TestEmotionalPeaksShortVideo(t *testing.T) {
	const rate = 8000
	a, err := NewAnalyzer(Waveform{Samples: burstWave(rate, 30, 14, 16), SampleRate: rate})
	if err != nil {
		t.Fatal(err)
	}

	peaks := a.EmotionalPeaks(5)
	if len(peaks) == 0 {
		t.Fatal("no peaks for a clear burst")
	}
	if len(peaks) > 5 {
		t.Fatalf("got %d peaks, budget was 5", len(peaks))
	}
	for i := 1; i < len(peaks); i++ {
		if peaks[i].Timestamp < peaks[i-1].Timestamp {
			t.Fatalf("peaks not sorted by timestamp: %v", peaks)
		}
	}

	found := false
	for _, p := range peaks {
		if math.Abs(p.Timestamp-15) < 2 {
			found = true
			if !strings.Contains(p.Reason, "high energy") {
				t.Fatalf("burst peak reason = %q, want high energy", p.Reason)
			}
			if p.Energy <= 0 {
				t.Fatalf("burst peak energy = %v, want > 0", p.Energy)
			}
		}
	}
	if !found {
		t.Fatalf("no peak near the 15s burst, got %v", peaks)
	}
}

func TestEmotionalPeaksLongVideoDistributes(t *testing.T) {
	const rate = 4000
	samples := make([]float64, 150*rate)
	addBurst := func(start, end float64) {
		for i := int(start * rate); i < int(end*rate); i++ {
			t := float64(i) / rate
			samples[i] = 0.8 * math.Sin(2*math.Pi*440*t)
		}
	}
	addBurst(30, 32)
	addBurst(100, 102)

	a, err := NewAnalyzer(Waveform{Samples: samples, SampleRate: rate})
	if err != nil {
		t.Fatal(err)
	}

	// 150s splits into two 75s segments; each should contribute its burst.
	peaks := a.EmotionalPeaks(10)
	if len(peaks) != 2 {
		t.Fatalf("got %d peaks, want 2 (one per segment): %v", len(peaks), peaks)
	}
	if math.Abs(peaks[0].Timestamp-31) > 2 {
		t.Fatalf("first peak at %v, want near 31", peaks[0].Timestamp)
	}
	if math.Abs(peaks[1].Timestamp-101) > 2 {
		t.Fatalf("second peak at %v, want near 101", peaks[1].Timestamp)
	}
}

func TestEmotionalPeaksLongVideoFallsBackToEnergy(t *testing.T) {
	const rate = 4000
	samples := make([]float64, 150*rate)
	for i := int(30 * rate); i < int(32*rate); i++ {
		t := float64(i) / rate
		samples[i] = 0.8 * math.Sin(2*math.Pi*440*t)
	}

	a, err := NewAnalyzer(Waveform{Samples: samples, SampleRate: rate})
	if err != nil {
		t.Fatal(err)
	}

	peaks := a.EmotionalPeaks(10)
	if len(peaks) != 2 {
		t.Fatalf("got %d peaks, want 2: %v", len(peaks), peaks)
	}

	// The silent second segment has no candidates and falls back to its
	// loudest instant at the fallback score.
	if peaks[1].Score != 1.0 {
		t.Fatalf("fallback peak score = %v, want 1.0", peaks[1].Score)
	}
	if peaks[1].Reason != "notable moment" {
		t.Fatalf("fallback peak reason = %q, want notable moment", peaks[1].Reason)
	}
}

func TestEmotionalPeaksZeroBudget(t *testing.T) {
	const rate = 8000
	a, err := NewAnalyzer(Waveform{Samples: toneWave(rate, 5, 440, 0.5), SampleRate: rate})
	if err != nil {
		t.Fatal(err)
	}
	if got := a.EmotionalPeaks(0); got != nil {
		t.Fatalf("EmotionalPeaks(0) = %v, want nil", got)
	}
}

func TestPeakReason(t *testing.T) {
	tests := []struct {
		name   string
		spikes []float64
		pitch  []float64
		want   string
	}{
		{"both", []float64{10}, []float64{11}, "high energy + emphasis"},
		{"volume only", []float64{10.5}, nil, "high energy"},
		{"pitch only", nil, []float64{9}, "emphasis"},
		{"neither", []float64{50}, []float64{80}, "notable moment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := peakReason(10, tt.spikes, tt.pitch); got != tt.want {
				t.Fatalf("peakReason = %q, want %q", got, tt.want)
			}
		})
	}
}

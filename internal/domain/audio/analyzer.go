package audio

import (
	"errors"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/pulsecut/pulsecut/internal/types"
)

// Analysis framing. A 2048-sample frame advanced by 512 samples matches the
// hop the grouping thresholds below were tuned against.
const (
	frameLength = 2048
	hopLength   = 512

	// Volume spikes closer than this many frames merge into one event.
	spikeFrameGap = 10

	// Pitch events are sustained emphasis rather than instantaneous spikes,
	// so they group on a coarser, time-based gap.
	pitchGroupGapSec = 5.0

	// Moving-average window (in frames) for smoothing pitch deltas.
	pitchSmoothWindow = 20

	// Dominant pitch below this frequency is treated as absent.
	minPitchHz = 50.0
)

// Analyzer owns one waveform for the lifetime of a single analysis pass.
type Analyzer struct {
	samples    []float64
	sampleRate int
	duration   float64
}

// NewAnalyzer wraps a decoded waveform. The waveform is not copied and must
// not be mutated while the analyzer is in use.
func NewAnalyzer(w Waveform) (*Analyzer, error) {
	if len(w.Samples) == 0 {
		return nil, errors.New("audio: empty waveform")
	}
	if w.SampleRate <= 0 {
		return nil, errors.New("audio: invalid sample rate")
	}
	return &Analyzer{
		samples:    w.Samples,
		sampleRate: w.SampleRate,
		duration:   float64(len(w.Samples)) / float64(w.SampleRate),
	}, nil
}

// Duration reports the waveform length in seconds.
func (a *Analyzer) Duration() float64 { return a.duration }

// EnergyTimeline produces ordered (time, rms) pairs at the fixed hop size.
// Deterministic for a given waveform.
func (a *Analyzer) EnergyTimeline() []types.EnergyFrame {
	n := numFrames(len(a.samples))
	out := make([]types.EnergyFrame, 0, n)
	for i := 0; i < n; i++ {
		start := i * hopLength
		end := start + frameLength
		if end > len(a.samples) {
			end = len(a.samples)
		}
		var sum float64
		for _, s := range a.samples[start:end] {
			sum += s * s
		}
		rms := math.Sqrt(sum / float64(end-start))
		out = append(out, types.EnergyFrame{Time: a.frameTime(i), RMS: rms})
	}
	return out
}

// VolumeSpikes detects high-energy moments. The threshold is the given
// percentile of the RMS distribution; consecutive frames above it (index gap
// at most spikeFrameGap) collapse to the mean time of the group. Silence or a
// near-constant signal yields few or no spikes rather than an error.
func (a *Analyzer) VolumeSpikes(percentile float64) []float64 {
	frames := a.EnergyTimeline()
	values := make([]float64, len(frames))
	for i, f := range frames {
		values[i] = f.RMS
	}

	threshold, err := stats.Percentile(values, percentile)
	if err != nil {
		return nil
	}

	var spikeIdx []int
	for i, v := range values {
		if v > threshold {
			spikeIdx = append(spikeIdx, i)
		}
	}
	if len(spikeIdx) == 0 {
		return nil
	}

	var out []float64
	group := []float64{frames[spikeIdx[0]].Time}
	for i := 1; i < len(spikeIdx); i++ {
		if spikeIdx[i]-spikeIdx[i-1] > spikeFrameGap {
			out = append(out, mean(group))
			group = group[:0]
		}
		group = append(group, frames[spikeIdx[i]].Time)
	}
	out = append(out, mean(group))
	return out
}

// PitchVariationMoments detects sustained pitch movement (excitement,
// emphasis). Per-frame dominant pitch deltas are smoothed with a moving
// average, thresholded at the 80th percentile, and grouped by a 5-second gap.
func (a *Analyzer) PitchVariationMoments() []float64 {
	pitches := a.pitchSeries()
	if len(pitches) < 2 {
		return nil
	}

	deltas := make([]float64, len(pitches)-1)
	for i := 1; i < len(pitches); i++ {
		deltas[i-1] = math.Abs(pitches[i] - pitches[i-1])
	}
	smoothed := movingAverage(deltas, pitchSmoothWindow)

	threshold, err := stats.Percentile(smoothed, 80)
	if err != nil {
		return nil
	}

	var times []float64
	for i, v := range smoothed {
		if v > threshold {
			times = append(times, a.frameTime(i))
		}
	}
	if len(times) == 0 {
		return nil
	}

	var out []float64
	group := []float64{times[0]}
	for i := 1; i < len(times); i++ {
		if times[i]-times[i-1] > pitchGroupGapSec {
			out = append(out, mean(group))
			group = group[:0]
		}
		group = append(group, times[i])
	}
	out = append(out, mean(group))
	return out
}

// pitchSeries extracts the dominant pitch per frame: the highest-magnitude
// spectral bin at or above minPitchHz. Frames with no detected pitch
// contribute 0.
func (a *Analyzer) pitchSeries() []float64 {
	n := numFrames(len(a.samples))
	binHz := float64(a.sampleRate) / float64(frameLength)
	minBin := int(math.Ceil(minPitchHz / binHz))
	if minBin < 1 {
		minBin = 1
	}

	out := make([]float64, 0, n)
	frame := make([]float64, frameLength)
	for i := 0; i < n; i++ {
		start := i * hopLength
		for j := range frame {
			if start+j < len(a.samples) {
				frame[j] = a.samples[start+j]
			} else {
				frame[j] = 0
			}
		}
		hannWindow(frame)
		spectrum := fft(frame)

		bestBin := 0
		bestMag := 0.0
		for b := minBin; b < frameLength/2; b++ {
			mag := cmplxAbs(spectrum[b])
			if mag > bestMag {
				bestMag = mag
				bestBin = b
			}
		}
		if bestBin == 0 || bestMag == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, float64(bestBin)*binHz)
	}
	return out
}

func (a *Analyzer) frameTime(i int) float64 {
	return float64(i*hopLength) / float64(a.sampleRate)
}

func numFrames(sampleCount int) int {
	if sampleCount <= 0 {
		return 0
	}
	return (sampleCount-1)/hopLength + 1
}

// movingAverage is a zero-padded centered moving average, matching a
// same-length convolution with a box kernel.
func movingAverage(x []float64, window int) []float64 {
	if window <= 1 || len(x) == 0 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	half := (window - 1) / 2
	out := make([]float64, len(x))
	for i := range x {
		var sum float64
		for j := i - half; j < i-half+window; j++ {
			if j >= 0 && j < len(x) {
				sum += x[j]
			}
		}
		out[i] = sum / float64(window)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

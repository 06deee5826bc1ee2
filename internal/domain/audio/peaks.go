package audio

import (
	"math"
	"sort"
	"strings"

	"github.com/pulsecut/pulsecut/internal/types"
)

// Source weights for the combined score map. Colliding timestamps from both
// sources sum rather than overwrite.
const (
	volumeSpikeWeight   = 2.0
	pitchMomentWeight   = 1.5
	fallbackEnergyScore = 1.0

	// A peak within this many seconds of a recorded source event inherits
	// that event's reason label.
	reasonWindowSec = 2.0

	// Videos longer than this get per-segment distribution instead of a
	// global top-N, so peaks spread across the whole timeline.
	distributionCutoffSec = 120.0
)

type scoredMoment struct {
	time  float64
	score float64
}

// EmotionalPeaks fuses volume spikes and pitch-variation moments into at most
// numPeaks candidates, sorted ascending by timestamp.
func (a *Analyzer) EmotionalPeaks(numPeaks int) []types.PeakCandidate {
	if numPeaks <= 0 {
		return nil
	}

	spikes := a.VolumeSpikes(85)
	pitchMoments := a.PitchVariationMoments()
	frames := a.EnergyTimeline()

	scores := map[float64]float64{}
	for _, t := range spikes {
		scores[t] += volumeSpikeWeight
	}
	for _, t := range pitchMoments {
		scores[t] += pitchMomentWeight
	}

	var top []scoredMoment
	if a.duration > distributionCutoffSec {
		top = a.distributeAcrossTimeline(scores, frames, numPeaks)
	} else {
		top = topByScore(scores, numPeaks)
	}

	peaks := make([]types.PeakCandidate, 0, len(top))
	for _, m := range top {
		peaks = append(peaks, types.PeakCandidate{
			Timestamp: m.time,
			Score:     m.score,
			Energy:    nearestEnergy(frames, m.time),
			Reason:    peakReason(m.time, spikes, pitchMoments),
		})
	}

	// Selection works on scores; callers depend on temporal order.
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Timestamp < peaks[j].Timestamp })
	return peaks
}

// distributeAcrossTimeline splits the timeline into equal segments and keeps
// the best candidate per segment, falling back to the segment's highest-RMS
// instant when a segment has no candidate. This keeps output from clustering
// in one loud section of a long video.
func (a *Analyzer) distributeAcrossTimeline(
	scores map[float64]float64,
	frames []types.EnergyFrame,
	numPeaks int,
) []scoredMoment {
	numSegments := int(a.duration / 60)
	if numSegments > numPeaks {
		numSegments = numPeaks
	}
	if numSegments < 1 {
		numSegments = 1
	}
	segDur := a.duration / float64(numSegments)

	var out []scoredMoment
	for seg := 0; seg < numSegments; seg++ {
		segStart := float64(seg) * segDur
		segEnd := segStart + segDur

		best := scoredMoment{score: -1}
		for t, s := range scores {
			if t < segStart || t >= segEnd {
				continue
			}
			if s > best.score || (s == best.score && t < best.time) {
				best = scoredMoment{time: t, score: s}
			}
		}
		if best.score >= 0 {
			out = append(out, best)
			continue
		}

		// No candidate here: take the loudest instant of the segment.
		maxRMS := -1.0
		maxTime := 0.0
		for _, f := range frames {
			if f.Time < segStart || f.Time >= segEnd {
				continue
			}
			if f.RMS > maxRMS {
				maxRMS = f.RMS
				maxTime = f.Time
			}
		}
		if maxRMS >= 0 {
			out = append(out, scoredMoment{time: maxTime, score: fallbackEnergyScore})
		}
	}
	return out
}

func topByScore(scores map[float64]float64, numPeaks int) []scoredMoment {
	all := make([]scoredMoment, 0, len(scores))
	for t, s := range scores {
		all = append(all, scoredMoment{time: t, score: s})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].time < all[j].time
	})
	if len(all) > numPeaks {
		all = all[:numPeaks]
	}
	return all
}

func nearestEnergy(frames []types.EnergyFrame, t float64) float64 {
	bestDist := math.Inf(1)
	best := 0.0
	for _, f := range frames {
		d := math.Abs(f.Time - t)
		if d < bestDist {
			bestDist = d
			best = f.RMS
		}
	}
	return best
}

func peakReason(t float64, spikes, pitchMoments []float64) string {
	var reasons []string
	if withinWindow(t, spikes, reasonWindowSec) {
		reasons = append(reasons, "high energy")
	}
	if withinWindow(t, pitchMoments, reasonWindowSec) {
		reasons = append(reasons, "emphasis")
	}
	if len(reasons) == 0 {
		return "notable moment"
	}
	return strings.Join(reasons, " + ")
}

func withinWindow(t float64, events []float64, window float64) bool {
	for _, e := range events {
		if math.Abs(e-t) < window {
			return true
		}
	}
	return false
}

// Package fusion merges audio-derived and semantically-derived moment
// candidates into the final ordered clip moment list.
package fusion

import (
	"math"
	"sort"

	"github.com/pulsecut/pulsecut/internal/types"
)

const (
	// Preferred and relaxed minimum spacing between selected moments. The
	// relaxed value is the hard floor: it holds under all circumstances.
	preferredSpacingSec = 30.0
	relaxedSpacingSec   = 15.0

	// A candidate within this distance of an already-accepted moment counts
	// as the same moment during the relaxed pass.
	duplicateWindowSec = 1.0

	// Semantic moments within this distance of an accepted moment boost it.
	semanticMatchWindowSec = 10.0
	semanticBoost          = 5.0

	defaultHeadline        = "Peak Moment"
	defaultEmotionalAppeal = "energetic"
	defaultDurationSec     = 40
)

// Select runs the two-pass greedy selection with spacing relaxation, then
// enriches accepted moments with semantic context. The result is sorted by
// timestamp ascending and holds at most maxClips entries. It is independent
// of candidate input order: ties between equal scores break on timestamp.
func Select(
	peaks []types.PeakCandidate,
	semantic []types.ResolvedSemanticMoment,
	maxClips int,
) []types.FinalMoment {
	if maxClips <= 0 || len(peaks) == 0 {
		return nil
	}

	ranked := make([]types.PeakCandidate, len(peaks))
	copy(ranked, peaks)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Timestamp < ranked[j].Timestamp
	})

	// Pass 1: well-separated clips are preferred.
	accepted := acceptWithSpacing(ranked, nil, maxClips, preferredSpacingSec)

	// Pass 2: never silently under-deliver on short or peak-dense material.
	if len(accepted) < maxClips {
		accepted = acceptWithSpacing(ranked, accepted, maxClips, relaxedSpacingSec)
	}

	// Semantic context enriches but never replaces an audio-grounded
	// timestamp: each semantic moment boosts the closest accepted moment
	// within range, once.
	for _, sm := range semantic {
		bestIdx := -1
		bestDist := semanticMatchWindowSec
		for i, m := range accepted {
			d := math.Abs(m.Timestamp - sm.Timestamp)
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			continue
		}
		accepted[bestIdx].Score += semanticBoost
		accepted[bestIdx].Provenance = types.ProvenanceAudioSemantic
		if sm.Headline != "" {
			accepted[bestIdx].Headline = sm.Headline
		}
		if sm.EmotionalAppeal != "" {
			accepted[bestIdx].EmotionalAppeal = sm.EmotionalAppeal
		}
		if sm.EstimatedDuration > 0 {
			accepted[bestIdx].EstimatedDuration = sm.EstimatedDuration
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Timestamp < accepted[j].Timestamp
	})
	return accepted
}

func acceptWithSpacing(
	ranked []types.PeakCandidate,
	accepted []types.FinalMoment,
	maxClips int,
	spacing float64,
) []types.FinalMoment {
	for _, p := range ranked {
		if len(accepted) >= maxClips {
			break
		}
		if alreadyAccepted(accepted, p.Timestamp) {
			continue
		}
		if tooClose(accepted, p.Timestamp, spacing) {
			continue
		}
		accepted = append(accepted, types.FinalMoment{
			Timestamp:         p.Timestamp,
			Score:             p.Score,
			Headline:          defaultHeadline,
			Reason:            "audio: " + p.Reason,
			EmotionalAppeal:   defaultEmotionalAppeal,
			EstimatedDuration: defaultDurationSec,
			Provenance:        types.ProvenanceAudio,
		})
	}
	return accepted
}

func alreadyAccepted(accepted []types.FinalMoment, t float64) bool {
	for _, m := range accepted {
		if math.Abs(m.Timestamp-t) < duplicateWindowSec {
			return true
		}
	}
	return false
}

func tooClose(accepted []types.FinalMoment, t, spacing float64) bool {
	for _, m := range accepted {
		if math.Abs(m.Timestamp-t) < spacing {
			return true
		}
	}
	return false
}

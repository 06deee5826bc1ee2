package ports

import (
	"context"

	"github.com/pulsecut/pulsecut/internal/types"
)

// VideoInfo is the probe result for a source video.
type VideoInfo struct {
	Duration float64
	Width    int
	Height   int
}

// VideoTool wraps the external media toolchain.
type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error
	Probe(ctx context.Context, inVideo string) (VideoInfo, error)
	RenderClip(ctx context.Context, inVideo string, plan types.ClipPlan, outPath string) error
}

// Transcriber produces a timestamped transcript from extracted audio. A
// failure here degrades semantic alignment, never the audio analysis.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (types.Transcript, error)
}

// MomentFinder asks a semantic source for interesting moments in the
// transcript. Moments arrive unresolved (phrase-based, no timestamps).
type MomentFinder interface {
	FindMoments(ctx context.Context, transcript string, numClips int) ([]types.SemanticMoment, error)
}

// FaceSampler returns face-center positions sampled across a time window.
// An empty result is a valid outcome, not an error.
type FaceSampler interface {
	SampleFaces(ctx context.Context, inVideo string, start, duration float64, stride int) ([]types.FacePosition, error)
}

// JobStore is the externally owned job-status registry. The core never
// touches process-wide state directly; it reports through this contract.
type JobStore interface {
	Create(ctx context.Context, job types.JobRecord) error
	Update(ctx context.Context, id string, status types.JobStatus, progress int, message string) error
	Complete(ctx context.Context, id string, manifest types.Manifest) error
	Fail(ctx context.Context, id string, message string) error
	Get(ctx context.Context, id string) (types.JobRecord, error)
}

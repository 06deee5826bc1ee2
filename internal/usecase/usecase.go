package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsecut/pulsecut/internal/domain/align"
	"github.com/pulsecut/pulsecut/internal/domain/audio"
	"github.com/pulsecut/pulsecut/internal/domain/fusion"
	"github.com/pulsecut/pulsecut/internal/domain/renderplan"
	"github.com/pulsecut/pulsecut/internal/ports"
	"github.com/pulsecut/pulsecut/internal/types"
)

const (
	faceSampleStride  = 5
	faceSampleTimeout = 30 * time.Second
)

type Deps struct {
	Video       ports.VideoTool
	Transcriber ports.Transcriber
	Moments     ports.MomentFinder
	Faces       ports.FaceSampler
	Store       ports.JobStore
	Log         zerolog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	JobID      string
	InputVideo string

	MaxClips int
	MinClip  time.Duration
	MaxClip  time.Duration
	NumPeaks int
	AspectW  int
	AspectH  int

	OutputDir string
	TempDir   string
}

type Result struct {
	Manifest types.Manifest
}

// Run executes one job end to end: audio analysis, transcript alignment,
// fusion, and per-moment render planning. The only fatal failures are on the
// audio path (unreadable source); transcription and semantic analysis
// degrade to empty signals, and per-clip render failures skip that clip.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	log := u.d.Log.With().Str("job", in.JobID).Logger()
	manifest := types.Manifest{JobID: in.JobID, Input: in.InputVideo}

	u.report(ctx, in.JobID, types.JobProcessing, 10, "probing source video")
	info, err := u.d.Video.Probe(ctx, in.InputVideo)
	if err != nil {
		return u.fail(ctx, in.JobID, fmt.Errorf("probe video: %w", err))
	}

	u.report(ctx, in.JobID, types.JobProcessing, 20, "extracting audio")
	wavPath := filepath.Join(in.TempDir, in.JobID+"_audio.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.InputVideo, wavPath); err != nil {
		return u.fail(ctx, in.JobID, fmt.Errorf("extract audio: %w", err))
	}
	defer os.Remove(wavPath)

	waveform, err := audio.ReadWAV(wavPath)
	if err != nil {
		return u.fail(ctx, in.JobID, fmt.Errorf("decode audio: %w", err))
	}
	analyzer, err := audio.NewAnalyzer(waveform)
	if err != nil {
		return u.fail(ctx, in.JobID, fmt.Errorf("analyze audio: %w", err))
	}

	u.report(ctx, in.JobID, types.JobProcessing, 35, "detecting emotional peaks")
	peaks := analyzer.EmotionalPeaks(in.NumPeaks)
	manifest.EmotionalPeaks = peaks
	manifest.Signals.AudioPeaks = len(peaks)
	log.Info().Int("peaks", len(peaks)).Msg("audio analysis complete")

	u.report(ctx, in.JobID, types.JobProcessing, 50, "transcribing audio")
	transcript := u.transcribe(ctx, wavPath, &manifest.Signals, log)

	u.report(ctx, in.JobID, types.JobProcessing, 65, "finding semantic moments")
	semantic := u.semanticMoments(ctx, transcript, in.MaxClips, &manifest.Signals, log)
	manifest.SemanticMoments = semantic

	u.report(ctx, in.JobID, types.JobProcessing, 75, "selecting final moments")
	selected := fusion.Select(peaks, semantic, in.MaxClips)
	manifest.SelectedMoments = selected
	manifest.Signals.MomentsSelected = len(selected)
	if len(selected) == 0 {
		// Not an error: the source simply offered nothing to clip.
		log.Warn().Msg("no clip moments producible")
	}

	u.report(ctx, in.JobID, types.JobProcessing, 85, "rendering clips")
	manifest.Clips = u.renderMoments(ctx, in, info, selected, &manifest.Signals, log)
	manifest.Signals.ClipsRendered = len(manifest.Clips)

	if err := u.writeManifest(in, manifest); err != nil {
		log.Warn().Err(err).Msg("write manifest failed")
	}

	if u.d.Store != nil {
		if err := u.d.Store.Complete(ctx, in.JobID, manifest); err != nil {
			log.Warn().Err(err).Msg("job store complete failed")
		}
	}
	log.Info().
		Int("clips", len(manifest.Clips)).
		Bool("transcript_degraded", manifest.Signals.TranscriptDegraded).
		Bool("semantic_degraded", manifest.Signals.SemanticDegraded).
		Msg("job complete")
	return Result{Manifest: manifest}, nil
}

// transcribe degrades to an empty transcript on any failure; audio analysis
// does not depend on it.
func (u Usecase) transcribe(ctx context.Context, wavPath string, signals *types.SignalReport, log zerolog.Logger) types.Transcript {
	if u.d.Transcriber == nil {
		signals.TranscriptDegraded = true
		return types.Transcript{Language: "unknown"}
	}
	tr, err := u.d.Transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		log.Warn().Err(err).Msg("transcription failed, continuing with audio-only analysis")
		signals.TranscriptDegraded = true
		return types.Transcript{Language: "unknown"}
	}
	signals.TranscriptSegments = len(tr.Segments)
	return tr
}

// semanticMoments degrades to zero moments on any failure; fusion then runs
// on audio peaks alone.
func (u Usecase) semanticMoments(
	ctx context.Context,
	tr types.Transcript,
	maxClips int,
	signals *types.SignalReport,
	log zerolog.Logger,
) []types.ResolvedSemanticMoment {
	if u.d.Moments == nil || tr.Text == "" {
		signals.SemanticDegraded = true
		return nil
	}
	moments, err := u.d.Moments.FindMoments(ctx, tr.Text, maxClips)
	if err != nil {
		log.Warn().Err(err).Msg("semantic analysis failed, using audio peaks only")
		signals.SemanticDegraded = true
		return nil
	}
	signals.SemanticMoments = len(moments)
	return align.Resolve(moments, tr.Segments)
}

// renderMoments plans and renders each selected moment. Moments are
// independent: they run concurrently, results keep timestamp order via
// per-index slots, and one failure never aborts siblings.
func (u Usecase) renderMoments(
	ctx context.Context,
	in Input,
	info ports.VideoInfo,
	selected []types.FinalMoment,
	signals *types.SignalReport,
	log zerolog.Logger,
) []types.ClipResult {
	planner := renderplan.Planner{
		MinClipSec:    in.MinClip.Seconds(),
		MaxClipSec:    in.MaxClip.Seconds(),
		VideoDuration: info.Duration,
		AspectW:       in.AspectW,
		AspectH:       in.AspectH,
	}

	slots := make([]*types.ClipResult, len(selected))
	var (
		wg sync.WaitGroup
		mu sync.Mutex // guards signals counters
	)
	for i, m := range selected {
		wg.Add(1)
		go func(idx int, moment types.FinalMoment) {
			defer wg.Done()

			start, end := planner.Window(moment)
			positions, fellBack := u.sampleFaces(ctx, in.InputVideo, start, end-start, log)
			plan := planner.Build(moment, positions, info.Width, info.Height)

			file := fmt.Sprintf("%s_clip_%d.mp4", in.JobID, idx+1)
			outPath := filepath.Join(in.OutputDir, file)
			if err := u.d.Video.RenderClip(ctx, in.InputVideo, plan, outPath); err != nil {
				log.Error().Err(err).Int("clip", idx+1).Msg("render failed, skipping clip")
				mu.Lock()
				signals.RenderFailures++
				mu.Unlock()
				return
			}

			if fellBack {
				mu.Lock()
				signals.CropFallbacks++
				mu.Unlock()
			}
			slots[idx] = &types.ClipResult{
				Index:           idx + 1,
				File:            file,
				Start:           plan.Start,
				End:             plan.End,
				Duration:        plan.End - plan.Start,
				Headline:        moment.Headline,
				EmotionalAppeal: moment.EmotionalAppeal,
			}
		}(i, m)
	}
	wg.Wait()

	out := make([]types.ClipResult, 0, len(selected))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// sampleFaces asks the face collaborator for positions over the window. Any
// failure or empty result means center-crop fallback, never a job abort.
func (u Usecase) sampleFaces(ctx context.Context, inVideo string, start, duration float64, log zerolog.Logger) ([]types.FacePosition, bool) {
	if u.d.Faces == nil {
		return nil, true
	}
	sampleCtx, cancel := context.WithTimeout(ctx, faceSampleTimeout)
	defer cancel()

	positions, err := u.d.Faces.SampleFaces(sampleCtx, inVideo, start, duration, faceSampleStride)
	if err != nil {
		log.Warn().Err(err).Msg("face sampling failed, using center crop")
		return nil, true
	}
	if len(positions) == 0 {
		return nil, true
	}
	return positions, false
}

func (u Usecase) writeManifest(in Input, m types.Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(in.OutputDir, in.JobID+"_metadata.json")
	return os.WriteFile(path, b, 0o644)
}

func (u Usecase) report(ctx context.Context, jobID string, status types.JobStatus, progress int, message string) {
	if u.d.Store == nil {
		return
	}
	if err := u.d.Store.Update(ctx, jobID, status, progress, message); err != nil {
		u.d.Log.Warn().Err(err).Str("job", jobID).Msg("job store update failed")
	}
}

func (u Usecase) fail(ctx context.Context, jobID string, err error) (Result, error) {
	if u.d.Store != nil {
		if serr := u.d.Store.Fail(ctx, jobID, err.Error()); serr != nil {
			u.d.Log.Warn().Err(serr).Str("job", jobID).Msg("job store fail-update failed")
		}
	}
	return Result{}, err
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulsecut/pulsecut/internal/config"
	"github.com/pulsecut/pulsecut/internal/jobs"
	"github.com/pulsecut/pulsecut/internal/ports"
	"github.com/pulsecut/pulsecut/internal/ports/adapters/assemblyai"
	"github.com/pulsecut/pulsecut/internal/ports/adapters/facedet"
	"github.com/pulsecut/pulsecut/internal/ports/adapters/ffmpeg"
	"github.com/pulsecut/pulsecut/internal/ports/adapters/gemini"
	"github.com/pulsecut/pulsecut/internal/types"
	"github.com/pulsecut/pulsecut/internal/usecase"
)

type Config struct {
	InputVideo string
	Settings   config.Settings
	Log        zerolog.Logger
}

func (c Config) Validate() error {
	if c.InputVideo == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputVideo); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	return c.Settings.Validate()
}

// Run wires the adapters and executes one job. Missing collaborator
// credentials degrade that signal instead of blocking the run; only the
// media toolchain is mandatory.
func Run(ctx context.Context, cfg Config) (types.Manifest, error) {
	log := cfg.Log
	s := cfg.Settings

	if err := s.EnsureDirectories(); err != nil {
		return types.Manifest{}, err
	}

	video := ffmpeg.New(s.FFmpegPath, s.FFprobePath, log.With().Str("component", "ffmpeg").Logger())

	var transcriber ports.Transcriber
	if s.AssemblyAIAPIKey != "" {
		transcriber = assemblyai.New(s.AssemblyAIAPIKey, "")
	} else {
		log.Warn().Msg("no AssemblyAI key configured; transcription disabled")
	}

	var moments ports.MomentFinder
	if s.GeminiAPIKey != "" {
		g, err := gemini.New(ctx, s.GeminiAPIKey, s.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("gemini client unavailable; semantic analysis disabled")
		} else {
			moments = g
		}
	} else {
		log.Warn().Msg("no Gemini key configured; semantic analysis disabled")
	}

	store, closeStore, err := openStore(s.JobStoreDSN)
	if err != nil {
		return types.Manifest{}, err
	}
	defer closeStore()

	jobID := uuid.NewString()
	if err := store.Create(ctx, types.JobRecord{
		ID:      jobID,
		Input:   cfg.InputVideo,
		Message: "video accepted, processing queued",
	}); err != nil {
		return types.Manifest{}, fmt.Errorf("create job: %w", err)
	}
	log.Info().Str("job", jobID).Str("input", cfg.InputVideo).Msg("job created")

	uc := usecase.New(usecase.Deps{
		Video:       video,
		Transcriber: transcriber,
		Moments:     moments,
		Faces:       facedet.New(s.FaceDetBin),
		Store:       store,
		Log:         log,
	})

	res, err := uc.Run(ctx, usecase.Input{
		JobID:      jobID,
		InputVideo: cfg.InputVideo,
		MaxClips:   s.MaxClips,
		MinClip:    s.MinClip,
		MaxClip:    s.MaxClip,
		NumPeaks:   s.NumPeaks,
		AspectW:    s.AspectW,
		AspectH:    s.AspectH,
		OutputDir:  s.OutputDir,
		TempDir:    s.TempDir,
	})
	if err != nil {
		return types.Manifest{}, err
	}
	return res.Manifest, nil
}

func openStore(dsn string) (ports.JobStore, func(), error) {
	if dsn == "" {
		return jobs.NewMemoryStore(), func() {}, nil
	}
	store, err := jobs.NewSQLiteStore(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open job store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// ensure adapters implement ports
var (
	_ ports.VideoTool    = (*ffmpeg.Adapter)(nil)
	_ ports.Transcriber  = (*assemblyai.Adapter)(nil)
	_ ports.MomentFinder = (*gemini.Adapter)(nil)
	_ ports.FaceSampler  = (*facedet.Adapter)(nil)
	_ ports.JobStore     = (*jobs.MemoryStore)(nil)
	_ ports.JobStore     = (*jobs.SQLiteStore)(nil)
)

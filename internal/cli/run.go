package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsecut/pulsecut/internal/config"
	"github.com/pulsecut/pulsecut/internal/logging"
	"github.com/pulsecut/pulsecut/internal/pipeline"
)

// One job covers download-scale inputs; renders of a few dozen clips finish
// well inside this.
const jobTimeout = 3 * time.Hour

func run(cmd *cobra.Command, input string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logging.Init(verbose)
	log := logging.New()

	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyFlags(cmd, &settings)

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cfg := pipeline.Config{
		InputVideo: absIn,
		Settings:   settings,
		Log:        log,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	manifest, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "job %s: %d clips in %s\n",
		manifest.JobID, len(manifest.Clips), settings.OutputDir)
	for _, c := range manifest.Clips {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %.1fs-%.1fs  %s\n", c.File, c.Start, c.End, c.Headline)
	}
	return nil
}

// applyFlags overrides loaded settings with explicitly set flags.
func applyFlags(cmd *cobra.Command, s *config.Settings) {
	if cmd.Flags().Changed("out") {
		s.OutputDir, _ = cmd.Flags().GetString("out")
	}
	if cmd.Flags().Changed("clips") {
		s.MaxClips, _ = cmd.Flags().GetInt("clips")
	}
	if cmd.Flags().Changed("min") {
		sec, _ := cmd.Flags().GetInt("min")
		s.MinClip = time.Duration(sec) * time.Second
	}
	if cmd.Flags().Changed("max") {
		sec, _ := cmd.Flags().GetInt("max")
		s.MaxClip = time.Duration(sec) * time.Second
	}
	if cmd.Flags().Changed("job-db") {
		s.JobStoreDSN, _ = cmd.Flags().GetString("job-db")
	}
}

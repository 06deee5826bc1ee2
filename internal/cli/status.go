package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsecut/pulsecut/internal/config"
	"github.com/pulsecut/pulsecut/internal/jobs"
)

// statusCmd reports a persisted job's state. It only works against a SQLite
// job store; in-memory records die with the process that made them.
func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "status <job-id>",
		Short:        "Show the state of a previously started job",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, _ := cmd.Flags().GetString("job-db")
			if dsn == "" {
				settings, err := config.Load()
				if err != nil {
					return fmt.Errorf("config: %w", err)
				}
				dsn = settings.JobStoreDSN
			}
			if dsn == "" {
				return fmt.Errorf("no job store configured; pass --job-db or set job_store_dsn")
			}

			store, err := jobs.NewSQLiteStore(dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			job, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "job:      %s\n", job.ID)
			fmt.Fprintf(out, "input:    %s\n", job.Input)
			fmt.Fprintf(out, "status:   %s (%d%%)\n", job.Status, job.Progress)
			fmt.Fprintf(out, "message:  %s\n", job.Message)
			fmt.Fprintf(out, "updated:  %s\n", job.UpdatedAt.Format(time.RFC3339))
			if job.Manifest != nil {
				fmt.Fprintf(out, "clips:    %d\n", len(job.Manifest.Clips))
				for _, c := range job.Manifest.Clips {
					fmt.Fprintf(out, "  %s  %.1fs-%.1fs  %s\n", c.File, c.Start, c.End, c.Headline)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("job-db", "", "SQLite path for persistent job records")
	return cmd
}

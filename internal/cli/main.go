package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "pulsecut <input>",
		Short:        "Cut short vertical clips from a long-form video",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "", "Output directory (default from config)")
	root.Flags().Int("clips", 0, "Number of clips (default from config)")
	root.Flags().BoolP("verbose", "v", false, "Debug logging")
	root.Flags().String("job-db", "", "SQLite path for persistent job records")

	// Hidden tuning flags (internal)
	root.Flags().Int("min", 0, "Min clip duration seconds")
	root.Flags().Int("max", 0, "Max clip duration seconds")
	_ = root.Flags().MarkHidden("min")
	_ = root.Flags().MarkHidden("max")

	root.AddCommand(statusCmd())

	if err := root.Execute(); err != nil {
		// Attach a stack trace at the boundary so failures deep in the
		// pipeline stay diagnosable.
		fmt.Fprintln(os.Stderr, xerrors.New(err))
		os.Exit(1)
	}
}

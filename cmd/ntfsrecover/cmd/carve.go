package cmd

import (
	"fmt"
	"os"

	"github.com/shubham030/ntfsrecover/internal/carver"
	"github.com/shubham030/ntfsrecover/internal/segment"
	"github.com/spf13/cobra"
)

func newCarveCommand() *cobra.Command {
	var scanOnly bool

	cmd := &cobra.Command{
		Use:          "carve <image> <output-dir>",
		Short:        "Filesystem-agnostic signature-based file carving",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := segment.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer reader.Close()

			if err := os.MkdirAll(args[1], 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			reporter := newCLIReporter()
			recovered, err := carver.Recover(reader, args[1], scanOnly, reporter, newLogger())
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}

			fmt.Printf("Recovered %d carved files.\n", recovered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&scanOnly, "scan-only", false, "scan for signatures without writing recovered files")
	return cmd
}

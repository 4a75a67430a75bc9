package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newExtractDeletedCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "extract-deleted <image> <output-dir>",
		Short:        "Best-effort recover $DATA content for every deleted file",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			outputDir := args[1]
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			reporter := newCLIReporter()
			recovered, err := v.ExtractDeletedFiles(reporter)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}

			for name, data := range recovered {
				dest := filepath.Join(outputDir, name)
				if err := os.WriteFile(dest, data, 0o644); err != nil {
					fmt.Fprintf(os.Stderr, "  failed to write %s: %v\n", name, err)
					continue
				}
				fmt.Printf("  recovered %s (%d bytes)\n", name, len(data))
			}
			fmt.Printf("Recovered %d deleted files.\n", len(recovered))
			return nil
		},
	}
}

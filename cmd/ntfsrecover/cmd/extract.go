package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "extract <image> <path> <output-file>",
		Short:        "Extract a single file's contents",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			data, err := v.ExtractFile(args[1])
			if err != nil {
				return err
			}

			if err := os.WriteFile(args[2], data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[2], err)
			}
			fmt.Printf("Wrote %d bytes to %s\n", len(data), args[2])
			return nil
		},
	}
}

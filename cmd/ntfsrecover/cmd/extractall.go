package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newExtractAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "extract-all <image> <path> <output-dir>",
		Short:        "Recursively extract every file under a directory",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			outputDir := args[2]
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			var count int
			err = v.ExtractAllFiles(args[1], func(path string, data []byte) error {
				dest := filepath.Join(outputDir, filepath.FromSlash(path))
				if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(dest, data, 0o644); err != nil {
					return err
				}
				count++
				fmt.Printf("  extracted %s\n", path)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Printf("Extracted %d files.\n", count)
			return nil
		},
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "search <image> <substring>",
		Short:        "Search every MFT record for a name match",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			reporter := newCLIReporter()
			matches, err := v.SearchFiles(args[1], reporter)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}

			for _, m := range matches {
				fmt.Printf("%d\t%s\n", m.RecordIndex, m.Name)
			}
			fmt.Printf("%d matches.\n", len(matches))
			return nil
		},
	}
}

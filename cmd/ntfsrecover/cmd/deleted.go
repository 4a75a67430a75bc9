package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDeletedCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "deleted <image>",
		Short:        "List deleted files recoverable from the MFT",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			reporter := newCLIReporter()
			deleted, err := v.ListDeletedFiles(reporter)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}

			for _, view := range deleted {
				fmt.Printf("%d\t%12d\t%s\n", view.RecordIndex, view.Size, view.Name)
			}
			fmt.Printf("%d deleted files found.\n", len(deleted))
			return nil
		},
	}
}

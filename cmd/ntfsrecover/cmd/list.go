package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "list <image> [path]",
		Short:        "List files in a directory (volume root by default)",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			path := ""
			if len(args) == 2 {
				path = args[1]
			}

			views, err := v.ListFiles(path)
			if err != nil {
				return err
			}

			for _, view := range views {
				kind := "file"
				if view.IsDirectory {
					kind = "dir"
				}
				fmt.Printf("%-5s %12d  %s\n", kind, view.Size, view.Name)
			}
			return nil
		},
	}
}

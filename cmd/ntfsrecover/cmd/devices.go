package cmd

import (
	"fmt"

	"github.com/shubham030/ntfsrecover/internal/device"
	"github.com/spf13/cobra"
)

func newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "devices",
		Short:        "List locally attached block devices as candidate mount targets",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := device.List()
			if err != nil {
				return fmt.Errorf("list devices: %w", err)
			}

			for _, d := range devices {
				fmt.Printf("%s\t%s\t%s\t%s\n", d.Path, d.SizeHuman, d.Filesystem, d.Name)
			}
			fmt.Printf("%d devices found.\n", len(devices))
			return nil
		},
	}
}

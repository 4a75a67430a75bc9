package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "info <image>",
		Short:        "Print volume geometry for an NTFS image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			info, err := v.GetVolumeInfo()
			if err != nil {
				return err
			}

			fmt.Printf("Bytes per sector:    %d\n", info.BytesPerSector)
			fmt.Printf("Sectors per cluster: %d\n", info.SectorsPerCluster)
			fmt.Printf("Cluster size:        %d bytes\n", info.ClusterBytes)
			fmt.Printf("Total sectors:       %d\n", info.TotalSectors)
			fmt.Printf("MFT LCN:             %d\n", info.MFTLCN)
			fmt.Printf("Partition offset:    %d\n", info.PartitionOffset)
			return nil
		},
	}
}

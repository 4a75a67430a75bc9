package cmd

import (
	"github.com/spf13/cobra"
)

const appName = "ntfsrecover"

var logLevel string

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: appName + " - NTFS forensic recovery tool",
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level: DEBUG, INFO, WARN, ERROR")

	rootCmd.AddCommand(
		newInfoCommand(),
		newListCommand(),
		newExtractCommand(),
		newExtractAllCommand(),
		newSearchCommand(),
		newDeletedCommand(),
		newExtractDeletedCommand(),
		newCarveCommand(),
		newDevicesCommand(),
	)

	return rootCmd.Execute()
}

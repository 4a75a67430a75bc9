package cmd

import (
	"fmt"
	"os"

	"github.com/shubham030/ntfsrecover/internal/logging"
	"github.com/shubham030/ntfsrecover/internal/ntfs"
	"github.com/shubham030/ntfsrecover/internal/progress"
)

func newLogger() *logging.Logger {
	return logging.New(os.Stderr, logging.ParseLevel(logLevel))
}

func openVolume(image string) (*ntfs.Volume, error) {
	v, err := ntfs.Mount(image)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", image, err)
	}
	return v, nil
}

// newCLIReporter prints a single-line progress update to stderr, rate
// limited by internal/progress, matching the plain scan-progress style of
// this tool's CLI output.
func newCLIReporter() *progress.Reporter {
	return progress.New(func(u progress.Update) {
		if u.Total > 0 {
			pct := float64(u.Processed) / float64(u.Total) * 100
			fmt.Fprintf(os.Stderr, "\r  %.1f%% scanned, %d found...", pct, u.Found)
		} else {
			fmt.Fprintf(os.Stderr, "\r  %d scanned, %d found...", u.Processed, u.Found)
		}
	})
}

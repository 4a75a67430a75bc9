package main

import (
	"fmt"
	"os"

	"github.com/shubham030/ntfsrecover/cmd/ntfsrecover/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

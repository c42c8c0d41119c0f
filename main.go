package main

import (
	"fmt"
	"os"

	"github.com/spiffcs/racefinder/cmd"
)

// Set via ldflags.
var (
	version string
	commit  string
	date    string
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build details of citecheck",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		printVersion(cmd.OutOrStdout(), version, info)
	},
}

// printVersion writes the stamped version followed by whatever the Go
// toolchain embedded in the binary. info may be nil.
func printVersion(w io.Writer, v string, info *debug.BuildInfo) {
	fmt.Fprintf(w, "citecheck %s\n", v)
	if info == nil {
		return
	}
	fmt.Fprintf(w, "  module:   %s\n", info.Main.Path)
	fmt.Fprintf(w, "  go:       %s\n", info.GoVersion)
	var revision, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if revision != "" {
		if modified == "true" {
			revision += " (modified)"
		}
		fmt.Fprintf(w, "  revision: %s\n", revision)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

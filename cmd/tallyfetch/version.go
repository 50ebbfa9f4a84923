package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags:
//
//	-X main.version=v1.0.0 -X main.commit=abc1234 -X main.date=2024-05-01
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion returns the version: ldflags, then the module version, then "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit returns the short commit hash: ldflags, then vcs.revision, then "unknown".
func getCommit() string {
	if commit != "" {
		return commit
	}
	rev := vcsSetting("vcs.revision")
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev == "" {
		return "unknown"
	}
	return rev
}

// getDate returns the build date: ldflags, then vcs.time, then "unknown".
func getDate() string {
	if date != "" {
		return date
	}
	if t := vcsSetting("vcs.time"); t != "" {
		return t
	}
	return "unknown"
}

// vcsSetting returns a build setting recorded by the go command, or "".
func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, build date and Go version of tallyfetch.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tallyfetch version %s\n", getVersion())
			fmt.Fprintf(out, "  commit: %s\n", getCommit())
			fmt.Fprintf(out, "  built:  %s\n", getDate())
			fmt.Fprintf(out, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

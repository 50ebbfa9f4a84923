package main

import (
	"fmt"
	"os"

	"github.com/nao1215/tallyfetch/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for tallyfetch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tallyfetch",
		Short: "Fetch datasets and count how often each value occurs",
		Long: `tallyfetch downloads four datasets (a text, a CSV file, an Excel
spreadsheet and a JSON document), stores them in local folders and writes a
frequency report for each one: every distinct value with its count, in
first-seen order.

Each format runs as its own pipeline. A failing download or an unreadable
file is reported and the other formats carry on; the exit status is zero
unless the configuration itself is invalid.

Examples:
  # Fetch and process all datasets
  tallyfetch

  # Run the four pipelines concurrently and write a Markdown summary
  tallyfetch -n 4 --summary summary.md

  # Use a configuration file and a SOCKS5 proxy
  tallyfetch -c tallyfetch.yaml --proxy 127.0.0.1:1080

Configuration file (.tallyfetch) example:
  defaults:
    timeout: 30s
    headers:
      User-Agent: "tallyfetch"
  sources:
    csv:
      url: https://example.com/2021.csv`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .tallyfetch in current or home directory)")

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of format pipelines run at once (1 fetches everything first, then processes)")
	cmd.Flags().String("html-strip", config.DefaultHTMLStrip,
		"How markup is removed from the text source: regex or tokenizer")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")

	// Summary flags
	cmd.Flags().StringP("summary", "s", "",
		"Write a run summary to the specified file path (creates directories if needed)")
	cmd.Flags().String("summary-format", "",
		"Summary format: text, markdown or json (default: inferred from the file extension)")
	cmd.Flags().Int("top", config.DefaultTopN,
		"Number of most frequent values listed per format in the summary")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not store this run in the history database")

	// Add subcommands
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

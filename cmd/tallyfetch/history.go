package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/tallyfetch/internal/config"
	"github.com/nao1215/tallyfetch/internal/database"
	"github.com/nao1215/tallyfetch/internal/model"
	"github.com/nao1215/tallyfetch/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command reads the runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show and compare stored runs",
		Long: `History lists past runs, shows the frequency table a run stored for a
format, and compares the tables of two runs.

A comparison shows:
- New values that appeared since the previous run
- Vanished values that are no longer present
- Values whose count changed

Run identifiers may be abbreviated to any unique prefix.

Examples:
  # List stored runs
  tallyfetch history --list

  # Show the outcomes of a run
  tallyfetch history --run 3f2a9c1e

  # Show the CSV frequency table of a run
  tallyfetch history --run 3f2a9c1e --format csv

  # Compare the latest two runs that processed the CSV dataset
  tallyfetch history --compare --format csv

  # Compare a specific run with the latest one, in Markdown
  tallyfetch history --compare --format json --run 3f2a9c1e --markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (used for the database directory)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	cmd.Flags().BoolP("list", "l", false,
		"List stored runs, most recent first")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs listed (0 lists all)")
	cmd.Flags().StringP("run", "r", "",
		"Run identifier or unique prefix")
	cmd.Flags().StringP("format", "f", "",
		"Dataset format: text, csv, spreadsheet or json")
	cmd.Flags().Bool("compare", false,
		"Compare the frequency tables of two runs for --format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	list     bool
	limit    int
	runID    string
	format   model.Format
	compare  bool
	markdown bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	dbDir, err := historyDBDir(cmd)
	if err != nil {
		return err
	}

	// a missing database means nothing was stored yet
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No run history found.")
		fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'tallyfetch' to fetch and process the datasets.")
		return nil
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case opts.compare:
		return compareRuns(ctx, db, out, opts)
	case opts.runID != "":
		return showRun(ctx, db, out, opts)
	default:
		return listRuns(ctx, db, out, opts.limit)
	}
}

// parseHistoryFlags validates the flag combination before the database
// is opened.
func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	var opts historyOptions
	var err error
	flags := cmd.Flags()

	if opts.list, err = flags.GetBool("list"); err != nil {
		return opts, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.runID, err = flags.GetString("run"); err != nil {
		return opts, err
	}
	if opts.compare, err = flags.GetBool("compare"); err != nil {
		return opts, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return opts, err
	}

	formatName, err := flags.GetString("format")
	if err != nil {
		return opts, err
	}
	if formatName != "" {
		if opts.format, err = model.ParseFormat(formatName); err != nil {
			return opts, err
		}
	}

	if opts.list && (opts.compare || opts.runID != "") {
		return opts, errors.New("--list cannot be combined with --run or --compare")
	}
	if opts.compare && opts.format == "" {
		return opts, errors.New("--compare requires --format")
	}
	return opts, nil
}

// historyDBDir returns the database directory from the flag or the
// configuration.
func historyDBDir(cmd *cobra.Command) (string, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return "", err
	}
	if dbDir != "" {
		return dbDir, nil
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.DBDir, nil
}

// listRuns prints the stored runs.
func listRuns(ctx context.Context, db *database.HistoryDB, out io.Writer, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored yet.")
		fmt.Fprintln(out, "\nUse 'tallyfetch' to fetch and process the datasets.")
		return nil
	}

	fmt.Fprintf(out, "Stored runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %-10s  %s\n", "ID", "Started", "Elapsed", "Failures")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 80))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %-10s  %d\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.Failures,
		)
	}

	fmt.Fprintln(out, "\nUse 'tallyfetch history --run <id>' to see the outcomes of a run.")
	fmt.Fprintln(out, "Use 'tallyfetch history --compare --format <format>' to compare the latest two runs.")
	return nil
}

// showRun prints the outcomes of a run, or its stored table for a format.
func showRun(ctx context.Context, db *database.HistoryDB, out io.Writer, opts historyOptions) error {
	id, err := db.ResolveRunID(ctx, opts.runID)
	if err != nil {
		return err
	}

	if opts.format != "" {
		table, err := db.GetTable(ctx, id, opts.format)
		if err != nil {
			return err
		}
		if len(table) == 0 {
			fmt.Fprintf(out, "Run %s stored no %s table.\n", id, opts.format.Noun())
			return nil
		}
		_, err = fmt.Fprintln(out, report.Format(table))
		return err
	}

	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	outcomes, err := db.GetOutcomes(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "  Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Failures: %d\n\n", run.Failures)
	for _, o := range outcomes {
		status := "ok"
		if !o.OK {
			status = "failed (" + o.ErrorKind + "): " + o.Error
		}
		fmt.Fprintf(out, "  %-12s %-8s %s\n", o.Format, o.Operation, status)
		if o.OK && o.Operation == model.OperationProcess {
			fmt.Fprintf(out, "  %-12s %-8s %d values, %d distinct\n", "", "", o.Values, o.Distinct)
		}
	}
	return nil
}

// compareRuns compares the tables of two runs for a format. Without --run
// the latest two runs are compared; with --run that run is compared with
// the latest one.
func compareRuns(ctx context.Context, db *database.HistoryDB, out io.Writer, opts historyOptions) error {
	latest, err := db.LatestRunIDs(ctx, opts.format, 2)
	if err != nil {
		return err
	}

	var previousID, currentID string
	switch {
	case opts.runID != "":
		if len(latest) == 0 {
			return fmt.Errorf("no run has processed the %s dataset", opts.format.Noun())
		}
		if previousID, err = db.ResolveRunID(ctx, opts.runID); err != nil {
			return err
		}
		currentID = latest[0]
		if previousID == currentID {
			return fmt.Errorf("run %s is the latest %s run; nothing to compare", currentID, opts.format.Noun())
		}
	case len(latest) < 2:
		return fmt.Errorf("at least 2 runs with a %s table are required for comparison (found %d)", opts.format.Noun(), len(latest))
	default:
		currentID, previousID = latest[0], latest[1]
	}

	previous, err := loadRunTable(ctx, db, previousID, opts.format)
	if err != nil {
		return err
	}
	current, err := loadRunTable(ctx, db, currentID, opts.format)
	if err != nil {
		return err
	}

	comparison := report.NewComparison(opts.format, previous.ref, current.ref, previous.table, current.table)
	if opts.markdown {
		return report.WriteComparisonMarkdown(out, comparison)
	}
	return report.WriteComparisonText(out, comparison)
}

type runTable struct {
	ref   report.RunRef
	table model.FrequencyTable
}

func loadRunTable(ctx context.Context, db *database.HistoryDB, id string, f model.Format) (runTable, error) {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return runTable{}, err
	}
	table, err := db.GetTable(ctx, id, f)
	if err != nil {
		return runTable{}, err
	}
	return runTable{ref: report.RunRef{ID: run.ID, StartedAt: run.StartedAt}, table: table}, nil
}

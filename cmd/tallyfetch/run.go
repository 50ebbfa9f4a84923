package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/tallyfetch/internal/config"
	"github.com/nao1215/tallyfetch/internal/database"
	"github.com/nao1215/tallyfetch/internal/fetch"
	"github.com/nao1215/tallyfetch/internal/log"
	"github.com/nao1215/tallyfetch/internal/model"
	"github.com/nao1215/tallyfetch/internal/pipeline"
	"github.com/nao1215/tallyfetch/internal/report"
	"github.com/spf13/cobra"
)

// runRootCmd executes the pipelines.
func runRootCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, getBoolFlag(cmd, "log-json"))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runPipelines(ctx, cfg, logger, cmd.OutOrStdout())
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig loads the configuration and applies the flags the user set.
// Flags left at their defaults do not override the file or environment.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("html-strip") {
		if cfg.HTMLStrip, err = flags.GetString("html-strip"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("top") {
		if cfg.TopN, err = flags.GetInt("top"); err != nil {
			return nil, err
		}
	}

	if cfg.SummaryFile, err = flags.GetString("summary"); err != nil {
		return nil, err
	}
	if cfg.SummaryFormat, err = flags.GetString("summary-format"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")

	return cfg, nil
}

// setupLogger creates the secure structured logger.
func setupLogger(w io.Writer, verbose, jsonOutput bool) *slog.Logger {
	if jsonOutput {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}

// runPipelines runs every configured source, prints one status line per
// operation to out, then stores the batch and writes the summary.
// Operation failures are reported, never returned.
func runPipelines(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	client, err := fetch.NewHTTPClient(cfg.Timeout, cfg.ProxyAddress)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	strategy, err := fetch.ParseStripStrategy(cfg.HTMLStrip)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	fetcher := fetch.NewFetcher(client,
		fetch.WithHeaders(cfg.Headers),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithStripStrategy(strategy),
		fetch.WithLogger(logger),
	)

	runner := pipeline.NewRunner(
		pipeline.NewFetchStep(fetcher, logger),
		pipeline.NewProcessStep(logger),
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithRunnerLogger(logger),
	)

	batch, runErr := runner.RunWithCallback(ctx, cfg.Sources, func(o *model.Outcome) {
		fmt.Fprintln(out, o.Message())
	})

	// store what completed even when interrupted
	saveCtx := context.WithoutCancel(ctx)
	if err := saveBatch(saveCtx, cfg, batch, logger); err != nil {
		logger.Error("failed to save run history", "id", batch.ID, "error", err)
	}

	if err := writeSummary(cfg, batch); err != nil {
		logger.Error("failed to write run summary", "path", cfg.SummaryFile, "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	return nil
}

// saveBatch stores the batch in the history database if enabled.
func saveBatch(ctx context.Context, cfg *config.Config, batch *model.Batch, logger *slog.Logger) error {
	if !cfg.SaveHistory {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	start := time.Now()
	if err := db.SaveBatch(ctx, batch); err != nil {
		return err
	}

	logger.Info("run saved to history",
		"id", batch.ID,
		"path", db.Path(),
		"duration", time.Since(start),
	)
	return nil
}

// writeSummary writes the batch summary to the configured file.
func writeSummary(cfg *config.Config, batch *model.Batch) error {
	if cfg.SummaryFile == "" {
		return nil
	}

	dir := filepath.Dir(cfg.SummaryFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.SummaryFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	if _, err := newSummaryWriter(f, cfg).Write(batch); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// newSummaryWriter returns the report writer for the configured format.
func newSummaryWriter(w io.Writer, cfg *config.Config) report.Writer {
	switch cfg.EffectiveSummaryFormat() {
	case config.SummaryMarkdown:
		return report.NewMarkdownWriter(w, report.WithMarkdownTopN(cfg.TopN))
	case config.SummaryJSON:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithJSONTopN(cfg.TopN))
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose), report.WithSimpleTopN(cfg.TopN))
	}
}

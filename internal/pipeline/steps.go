package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/tallyfetch/internal/fetch"
	"github.com/nao1215/tallyfetch/internal/frequency"
	"github.com/nao1215/tallyfetch/internal/model"
	"github.com/nao1215/tallyfetch/internal/reader"
	"github.com/nao1215/tallyfetch/internal/report"
)

// Fetcher downloads a source and persists it.
type Fetcher interface {
	FetchAndStore(ctx context.Context, src model.Source, mode fetch.Mode) (*fetch.Artifact, error)
}

// FetchStep downloads the run's source and writes it to the artifact path.
type FetchStep struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewFetchStep creates a fetch step using fetcher.
func NewFetchStep(fetcher Fetcher, logger *slog.Logger) *FetchStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchStep{fetcher: fetcher, logger: logger}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return string(model.OperationFetch)
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, run *model.Run) error {
	src := run.Source
	start := time.Now()

	outcome := &model.Outcome{
		Format:    src.Format,
		Operation: model.OperationFetch,
		Path:      src.ArtifactPath(),
	}
	run.Fetch = outcome

	mode, err := fetch.ModeFor(src.Format)
	if err != nil {
		outcome.Err = model.NewFormatError("fetch", src.URL, err)
		return outcome.Err
	}

	artifact, err := s.fetcher.FetchAndStore(ctx, src, mode)
	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Err = err
		return err
	}

	outcome.Bytes = artifact.Bytes
	outcome.Digest = artifact.Digest

	s.logger.Debug("fetch completed",
		"format", src.Format,
		"path", artifact.Path,
		"bytes", artifact.Bytes,
		"duration", outcome.Duration,
	)
	return nil
}

// ProcessStep reads the run's artifact, counts its values and writes the
// frequency report.
type ProcessStep struct {
	logger *slog.Logger
}

// NewProcessStep creates a process step.
func NewProcessStep(logger *slog.Logger) *ProcessStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessStep{logger: logger}
}

// Name returns the step name.
func (s *ProcessStep) Name() string {
	return string(model.OperationProcess)
}

// Do executes the process step. It reads whatever file is at the artifact
// path, so it runs even when the fetch of the same run failed.
func (s *ProcessStep) Do(_ context.Context, run *model.Run) error {
	src := run.Source
	start := time.Now()

	outcome := &model.Outcome{
		Format:    src.Format,
		Operation: model.OperationProcess,
		Path:      src.ReportPath(),
	}
	run.Process = outcome

	r, err := reader.ForFormat(src.Format)
	if err != nil {
		outcome.Err = model.NewFormatError("read", src.ArtifactPath(), err)
		return outcome.Err
	}

	values, err := r.Read(src.ArtifactPath())
	if err != nil {
		outcome.Err = err
		outcome.Duration = time.Since(start)
		return err
	}

	table := frequency.Count(values)
	if err := report.WriteTable(src.ReportPath(), table); err != nil {
		outcome.Err = err
		outcome.Duration = time.Since(start)
		return err
	}

	run.Table = table
	outcome.Values = len(values)
	outcome.Distinct = len(table)
	outcome.Duration = time.Since(start)

	s.logger.Debug("process completed",
		"format", src.Format,
		"path", outcome.Path,
		"values", outcome.Values,
		"distinct", outcome.Distinct,
	)
	return nil
}

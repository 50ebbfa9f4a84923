package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/tallyfetch/internal/model"
	"golang.org/x/sync/errgroup"
)

// OutcomeFunc receives each outcome of a batch, in format order.
type OutcomeFunc func(outcome *model.Outcome)

// Runner executes the pipelines of all configured sources.
type Runner struct {
	// fetch and process are shared by all runs and must be safe for
	// concurrent use.
	fetch   Step
	process Step

	// concurrency is the maximum number of pipelines running at once.
	// 1 selects the sequential two-phase mode.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// newID creates batch identifiers.
	newID func() string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent pipelines.
// Default is 1 (sequential).
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithIDGenerator sets the function creating batch identifiers.
func WithIDGenerator(fn func() string) RunnerOption {
	return func(r *Runner) {
		r.newID = fn
	}
}

// NewRunner creates a Runner executing fetch then process for every source.
func NewRunner(fetch, process Step, opts ...RunnerOption) *Runner {
	r := &Runner{
		fetch:       fetch,
		process:     process,
		concurrency: 1,
		newID:       func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Run executes the pipelines of sources and returns the batch.
// See RunWithCallback.
func (r *Runner) Run(ctx context.Context, sources []model.Source) (*model.Batch, error) {
	return r.RunWithCallback(ctx, sources, nil)
}

// RunWithCallback executes the pipelines of sources and calls callback for
// each outcome in format order. In sequential mode the callback follows
// each operation as it completes; in concurrent mode it is called after all
// pipelines finished. The callback is never called concurrently.
//
// Operation failures are recorded in the batch and never returned. The
// error is non-nil only if ctx was cancelled; the partial batch is still
// returned.
func (r *Runner) RunWithCallback(ctx context.Context, sources []model.Source, callback OutcomeFunc) (*model.Batch, error) {
	batch := &model.Batch{
		ID:        r.newID(),
		StartedAt: time.Now(),
		Runs:      make([]*model.Run, len(sources)),
	}
	for i, src := range sources {
		batch.Runs[i] = model.NewRun(batch.ID, src)
	}

	r.logger.Info("starting batch",
		"id", batch.ID,
		"sources", len(sources),
		"concurrency", r.concurrency,
	)

	var err error
	if r.concurrency <= 1 {
		err = r.runSequential(ctx, batch, callback)
	} else {
		err = r.runConcurrent(ctx, batch, callback)
	}

	batch.FinishedAt = time.Now()
	r.logger.Info("batch complete",
		"id", batch.ID,
		"failures", batch.Failures(),
		"elapsed", batch.Elapsed(),
	)

	return batch, err
}

// runSequential runs every fetch in format order, then every process.
func (r *Runner) runSequential(ctx context.Context, batch *model.Batch, callback OutcomeFunc) error {
	afterStep := func(step Step, run *model.Run) {
		if callback == nil {
			return
		}
		if o := run.OutcomeOf(model.Operation(step.Name())); o != nil {
			callback(o)
		}
	}

	for _, step := range []Step{r.fetch, r.process} {
		p := New(
			WithLogger(r.logger),
			WithContinueOnError(true),
			WithAfterStep(afterStep),
		)
		p.AddStep(step)

		for _, run := range batch.Runs {
			if err := p.Execute(ctx, run); err != nil {
				return err
			}
		}
	}
	return nil
}

// runConcurrent runs each format's whole pipeline in its own goroutine.
func (r *Runner) runConcurrent(ctx context.Context, batch *model.Batch, callback OutcomeFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, run := range batch.Runs {
		g.Go(func() error {
			p := New(WithLogger(r.logger), WithContinueOnError(true))
			p.AddSteps(r.fetch, r.process)
			r.logger.Debug("pipeline started", "format", run.Source.Format, "steps", p.StepNames())
			// runs share no state; only cancellation is returned
			return p.Execute(ctx, run)
		})
	}

	err := g.Wait()

	if callback != nil {
		for _, run := range batch.Runs {
			for _, o := range run.Outcomes() {
				callback(o)
			}
		}
	}
	return err
}

package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/tallyfetch/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step for run and records its outcome on run.
	// The returned error is the recorded outcome's error.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the operation the step performs.
	Name() string
}

// StepFunc is called after every executed step.
type StepFunc func(step Step, run *model.Run)

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool

	// afterStep is called after each executed step. May be nil.
	afterStep StepFunc
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Failed steps are logged and their errors
// are recorded on the run, but subsequent steps still execute.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// WithAfterStep registers a function called after each executed step.
func WithAfterStep(fn StepFunc) Option {
	return func(p *Pipeline) {
		p.afterStep = fn
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps for run in sequence.
// Cancellation is checked before each step; a cancelled pipeline leaves the
// remaining steps unrecorded and returns the context error.
//
// Returns the first step error if continueOnError is false, or nil
// otherwise (errors are recorded on the run).
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"format", run.Source.Format,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"format", run.Source.Format,
		)

		err := step.Do(ctx, run)
		if err != nil {
			p.logger.Info("step failed",
				"step", step.Name(),
				"format", run.Source.Format,
				"error", err,
			)
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"format", run.Source.Format,
			)
		}

		if p.afterStep != nil {
			p.afterStep(step, run)
		}

		if err != nil && !p.continueOnError {
			return err
		}
	}

	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

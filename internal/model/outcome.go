package model

import (
	"fmt"
	"strings"
	"time"
)

// Operation names a pipeline operation.
type Operation string

const (
	// OperationFetch fetches a dataset and persists it.
	OperationFetch Operation = "fetch"

	// OperationProcess reads a persisted dataset, counts its values and
	// writes the report.
	OperationProcess Operation = "process"
)

// Outcome is the result of one operation for one format.
type Outcome struct {
	Format    Format
	Operation Operation

	// Path is the artifact path for fetches and the report path for
	// processing.
	Path string

	// Err is nil on success.
	Err error

	// Bytes and Digest describe the persisted artifact (fetch only).
	Bytes  int64
	Digest string

	// Values and Distinct describe the frequency table (process only).
	Values   int
	Distinct int

	Duration time.Duration
}

// Succeeded reports whether the operation completed without error.
func (o *Outcome) Succeeded() bool {
	return o.Err == nil
}

// Message returns the one-line status printed for the operation.
func (o *Outcome) Message() string {
	noun := o.Format.Noun()
	switch o.Operation {
	case OperationFetch:
		if o.Err != nil {
			return fmt.Sprintf("Error fetching or writing %s data: %v", noun, o.Err)
		}
		return fmt.Sprintf("%s data successfully written to '%s'.", capitalize(noun), o.Path)
	case OperationProcess:
		if o.Err != nil {
			return fmt.Sprintf("Error processing %s file: %v", noun, o.Err)
		}
		return fmt.Sprintf("Processed data written to '%s'", o.Path)
	default:
		if o.Err != nil {
			return fmt.Sprintf("Error in %s %s: %v", o.Operation, noun, o.Err)
		}
		return fmt.Sprintf("%s %s completed", o.Operation, noun)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Run holds the state of one format's pipeline.
type Run struct {
	// ID identifies the run the pipeline belongs to.
	ID string

	Source Source

	Fetch   *Outcome
	Process *Outcome

	// Table is the frequency table computed by the process operation.
	Table FrequencyTable
}

// NewRun creates the pipeline state for src.
func NewRun(id string, src Source) *Run {
	return &Run{ID: id, Source: src}
}

// OutcomeOf returns the recorded outcome of op, or nil if op has not run.
func (r *Run) OutcomeOf(op Operation) *Outcome {
	switch op {
	case OperationFetch:
		return r.Fetch
	case OperationProcess:
		return r.Process
	default:
		return nil
	}
}

// Outcomes returns the recorded outcomes in execution order.
func (r *Run) Outcomes() []*Outcome {
	outcomes := make([]*Outcome, 0, 2)
	if r.Fetch != nil {
		outcomes = append(outcomes, r.Fetch)
	}
	if r.Process != nil {
		outcomes = append(outcomes, r.Process)
	}
	return outcomes
}

// Batch is one invocation of the tool: every format's pipeline run.
type Batch struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	// Runs are ordered by format, in pipeline order.
	Runs []*Run
}

// Failures returns the number of failed operations across all runs.
func (b *Batch) Failures() int {
	failures := 0
	for _, r := range b.Runs {
		for _, o := range r.Outcomes() {
			if !o.Succeeded() {
				failures++
			}
		}
	}
	return failures
}

// Elapsed returns the wall time of the batch.
func (b *Batch) Elapsed() time.Duration {
	if b.FinishedAt.IsZero() {
		return 0
	}
	return b.FinishedAt.Sub(b.StartedAt)
}

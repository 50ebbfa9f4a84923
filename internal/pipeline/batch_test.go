package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/tallyfetch/internal/fetch"
	"github.com/nao1215/tallyfetch/internal/model"
)

// funcStep is a Step safe for concurrent use.
type funcStep struct {
	name string
	fn   func(ctx context.Context, run *model.Run) error
}

// Do implements Step.Do.
func (s *funcStep) Do(ctx context.Context, run *model.Run) error {
	if s.fn != nil {
		return s.fn(ctx, run)
	}
	return nil
}

// Name implements Step.Name.
func (s *funcStep) Name() string {
	return s.name
}

func allContent() map[model.Format]string {
	return map[model.Format]string{
		model.FormatText:        "aab",
		model.FormatCSV:         "x,y\n1,2\n1,3\n",
		model.FormatSpreadsheet: "not a spreadsheet",
		model.FormatJSON:        `{"a": {"b": 1}, "c": 1}`,
	}
}

// TestRunnerNew tests the Runner constructor.
func TestRunnerNew(t *testing.T) {
	t.Parallel()

	t.Run("creates runner with defaults", func(t *testing.T) {
		t.Parallel()

		r := NewRunner(&mockStep{name: "fetch"}, &mockStep{name: "process"})
		if r.concurrency != 1 {
			t.Errorf("expected default concurrency 1, got %d", r.concurrency)
		}
		if r.logger == nil {
			t.Error("expected non-nil logger")
		}
		if r.newID() == "" {
			t.Error("expected generated id")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		r := NewRunner(&mockStep{name: "fetch"}, &mockStep{name: "process"}, WithConcurrency(4))
		if r.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", r.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		r := NewRunner(&mockStep{name: "fetch"}, &mockStep{name: "process"}, WithConcurrency(0))
		if r.concurrency != 1 {
			t.Errorf("expected concurrency 1, got %d", r.concurrency)
		}
	})

	t.Run("WithRunnerLogger nil keeps default", func(t *testing.T) {
		t.Parallel()

		r := NewRunner(&mockStep{name: "fetch"}, &mockStep{name: "process"}, WithRunnerLogger(nil))
		if r.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

type outcomeKey struct {
	format model.Format
	op     model.Operation
}

func collect(outcomes *[]outcomeKey) OutcomeFunc {
	return func(o *model.Outcome) {
		*outcomes = append(*outcomes, outcomeKey{o.Format, o.Operation})
	}
}

// TestRunnerSequential tests the default two-phase mode.
func TestRunnerSequential(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sources := testSources(dir)
	fetcher := &fakeFetcher{content: allContent()}
	r := NewRunner(NewFetchStep(fetcher, nil), NewProcessStep(nil), WithIDGenerator(func() string { return "fixed" }))

	var got []outcomeKey
	batch, err := r.RunWithCallback(context.Background(), sources, collect(&got))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []outcomeKey{
		{model.FormatText, model.OperationFetch},
		{model.FormatCSV, model.OperationFetch},
		{model.FormatSpreadsheet, model.OperationFetch},
		{model.FormatJSON, model.OperationFetch},
		{model.FormatText, model.OperationProcess},
		{model.FormatCSV, model.OperationProcess},
		{model.FormatSpreadsheet, model.OperationProcess},
		{model.FormatJSON, model.OperationProcess},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d outcomes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("outcome %d = %v, want %v", i, got[i], want[i])
		}
	}

	if batch.ID != "fixed" {
		t.Errorf("ID = %q, want fixed", batch.ID)
	}
	if batch.FinishedAt.Before(batch.StartedAt) {
		t.Error("expected FinishedAt after StartedAt")
	}
	// the fake spreadsheet cannot be read
	if batch.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1", batch.Failures())
	}
	if got := readReport(t, sources[0].ReportPath()); got != "a: 2\nb: 1" {
		t.Errorf("text report = %q", got)
	}
	if got := readReport(t, sources[3].ReportPath()); got != "1: 2" {
		t.Errorf("json report = %q", got)
	}
}

// TestRunnerFailureIsolation tests that one failing format does not affect
// the others.
func TestRunnerFailureIsolation(t *testing.T) {
	t.Parallel()

	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			t.Parallel()

			sources := testSources(t.TempDir())
			fetcher := &fakeFetcher{
				content: allContent(),
				fail: map[model.Format]error{
					model.FormatCSV: model.NewTransportError("get", sources[1].URL, errors.New("503")),
				},
			}
			r := NewRunner(NewFetchStep(fetcher, nil), NewProcessStep(nil), WithConcurrency(concurrency))

			batch, err := r.Run(context.Background(), sources)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			csv := batch.Runs[1]
			if csv.Fetch.Succeeded() {
				t.Error("expected csv fetch to fail")
			}
			// process still runs and finds no artifact
			if csv.Process == nil || csv.Process.Succeeded() {
				t.Error("expected csv process to run and fail")
			}
			if !batch.Runs[0].Process.Succeeded() || !batch.Runs[3].Process.Succeeded() {
				t.Error("expected text and json to succeed")
			}
		})
	}
}

// TestRunnerConcurrent tests the concurrent mode.
func TestRunnerConcurrent(t *testing.T) {
	t.Parallel()

	t.Run("reports outcomes in format order", func(t *testing.T) {
		t.Parallel()

		sources := testSources(t.TempDir())
		r := NewRunner(NewFetchStep(&fakeFetcher{content: allContent()}, nil), NewProcessStep(nil), WithConcurrency(4))

		var got []outcomeKey
		if _, err := r.RunWithCallback(context.Background(), sources, collect(&got)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(got) != 8 {
			t.Fatalf("got %d outcomes, want 8", len(got))
		}
		for i, src := range sources {
			if got[2*i] != (outcomeKey{src.Format, model.OperationFetch}) {
				t.Errorf("outcome %d = %v", 2*i, got[2*i])
			}
			if got[2*i+1] != (outcomeKey{src.Format, model.OperationProcess}) {
				t.Errorf("outcome %d = %v", 2*i+1, got[2*i+1])
			}
		}
	})

	t.Run("logs the steps of each pipeline", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		r := NewRunner(&funcStep{name: "fetch"}, &funcStep{name: "process"}, WithConcurrency(2), WithRunnerLogger(logger))

		if _, err := r.Run(context.Background(), testSources(t.TempDir())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.Count(buf.String(), `msg="pipeline started"`); got != 4 {
			t.Errorf("expected 4 pipeline start logs, got %d:\n%s", got, buf.String())
		}
		if !strings.Contains(buf.String(), "steps=\"[fetch process]\"") {
			t.Errorf("expected step names in log:\n%s", buf.String())
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, maxSeen atomic.Int32
		var mu sync.Mutex
		slow := &funcStep{
			name: "fetch",
			fn: func(_ context.Context, _ *model.Run) error {
				n := current.Add(1)
				mu.Lock()
				if n > maxSeen.Load() {
					maxSeen.Store(n)
				}
				mu.Unlock()
				time.Sleep(20 * time.Millisecond)
				current.Add(-1)
				return nil
			},
		}
		r := NewRunner(slow, &funcStep{name: "process"}, WithConcurrency(2))

		if _, err := r.Run(context.Background(), testSources(t.TempDir())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if maxSeen.Load() > 2 {
			t.Errorf("expected at most 2 concurrent pipelines, saw %d", maxSeen.Load())
		}
	})
}

// TestRunnerCancellation tests that a cancelled context stops the batch.
func TestRunnerCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(NewFetchStep(&fakeFetcher{content: allContent()}, nil), NewProcessStep(nil))
	batch, err := r.Run(ctx, testSources(t.TempDir()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if batch == nil || len(batch.Runs) != 4 {
		t.Fatal("expected partial batch")
	}
	if batch.Runs[0].Fetch != nil {
		t.Error("expected no outcome for a cancelled batch")
	}
}

// TestRunnerWithHTTPFetcher runs the pipelines against a local server, one
// source of which fails.
func TestRunnerWithHTTPFetcher(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/t":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<p>aab</p>"))
		case "/c":
			w.WriteHeader(http.StatusInternalServerError)
		case "/j":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"a": {"b": 1}, "c": 1}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	sources := testSources(t.TempDir())
	for i := range sources {
		sources[i].URL = srv.URL + sources[i].URL[len("http://example.com"):]
	}

	r := NewRunner(NewFetchStep(fetch.NewFetcher(srv.Client()), nil), NewProcessStep(nil))
	var messages []string
	batch, err := r.RunWithCallback(context.Background(), sources, func(o *model.Outcome) {
		messages = append(messages, o.Message())
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messages) != 8 {
		t.Fatalf("expected 8 messages, got %d", len(messages))
	}
	if want := "Text data successfully written to '" + sources[0].ArtifactPath() + "'."; messages[0] != want {
		t.Errorf("messages[0] = %q, want %q", messages[0], want)
	}
	if _, statErr := os.Stat(sources[1].ArtifactPath()); !os.IsNotExist(statErr) {
		t.Error("expected no csv artifact after server error")
	}
	if model.KindOf(batch.Runs[1].Fetch.Err) != model.ErrorKindTransport {
		t.Errorf("csv fetch kind = %v, want transport", model.KindOf(batch.Runs[1].Fetch.Err))
	}
	if got := readReport(t, sources[0].ReportPath()); got != "a: 2\nb: 1" {
		t.Errorf("text report = %q", got)
	}
	if got := readReport(t, sources[3].ReportPath()); got != "1: 2" {
		t.Errorf("json report = %q", got)
	}
}

package main

// Notes:
// - runBatch: we test ordering of results, acquire failures, cancellation,
//   and that output is written even when the job reports an error.
// - printResults and batchError: we test summaries and error selection.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	gfmrender "github.com/alnah/go-gfmrender"
)

// failingPool never hands out an enhancer.
type failingPool struct{}

func (failingPool) Acquire(context.Context) (*gfmrender.Enhancer, error) {
	return nil, gfmrender.ErrPoolClosed
}
func (failingPool) Release(*gfmrender.Enhancer) {}
func (failingPool) Size() int                   { return 2 }
func (failingPool) Close() error                { return nil }

func plainPool(n int) *gfmrender.Pool {
	return gfmrender.NewPool(n, func() (*gfmrender.Enhancer, io.Closer) {
		return gfmrender.NewEnhancer(), nil
	})
}

func echoJob(_ context.Context, _ *gfmrender.Enhancer, job fileJob) (string, gfmrender.Report, error) {
	return "out:" + filepath.Base(job.InputPath), gfmrender.Report{Highlighted: 1}, nil
}

// ---------------------------------------------------------------------------
// TestRunBatch - Concurrent processing
// ---------------------------------------------------------------------------

func TestRunBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pool := plainPool(3)
	defer pool.Close()

	var files []fileJob
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		files = append(files, fileJob{InputPath: name + ".md", OutputPath: filepath.Join(dir, name+".html")})
	}

	results := runBatch(context.Background(), pool, files, echoJob, &bytes.Buffer{})

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.InputPath != files[i].InputPath {
			t.Errorf("results[%d] = %s, want input order", i, r.InputPath)
		}
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
		}
		if got := readFile(t, files[i].OutputPath); got != "out:"+files[i].InputPath {
			t.Errorf("output %d = %q", i, got)
		}
	}
}

func TestRunBatch_AcquireFailure(t *testing.T) {
	t.Parallel()

	files := []fileJob{{InputPath: "a.md"}, {InputPath: "b.md"}, {InputPath: "c.md"}}
	results := runBatch(context.Background(), failingPool{}, files, echoJob, &bytes.Buffer{})

	for i, r := range results {
		if !errors.Is(r.Err, ErrEnhancer) || !errors.Is(r.Err, gfmrender.ErrPoolClosed) {
			t.Errorf("results[%d].Err = %v, want ErrEnhancer wrapping ErrPoolClosed", i, r.Err)
		}
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	t.Parallel()

	pool := plainPool(1)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []fileJob{{InputPath: "a.md"}, {InputPath: "b.md"}}
	for i, r := range runBatch(ctx, pool, files, echoJob, &bytes.Buffer{}) {
		if r.Err == nil {
			t.Errorf("results[%d] should fail after cancellation", i)
		}
	}
}

func TestRunBatch_OutputWrittenWithError(t *testing.T) {
	t.Parallel()

	pool := plainPool(1)
	defer pool.Close()

	jobErr := errors.New("1 diagram failed")
	partial := func(context.Context, *gfmrender.Enhancer, fileJob) (string, gfmrender.Report, error) {
		return "partial", gfmrender.Report{DiagramsFailed: 1}, jobErr
	}

	var stdout bytes.Buffer
	results := runBatch(context.Background(), pool, []fileJob{{InputPath: "a.md"}}, partial, &stdout)

	if stdout.String() != "partial" {
		t.Errorf("stdout = %q, want partial output", stdout.String())
	}
	if !errors.Is(results[0].Err, jobErr) {
		t.Errorf("Err = %v, want job error", results[0].Err)
	}
	if results[0].Report.DiagramsFailed != 1 {
		t.Error("report not carried into result")
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults - Result reporting
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []jobResult{
		{InputPath: "a.md", OutputPath: "a.html"},
		{InputPath: "b.md", Err: errors.New("boom")},
		{InputPath: "c.md"}, // stdout
	}

	t.Run("normal", func(t *testing.T) {
		t.Parallel()
		env, stdout, stderr := testEnv()

		failed := printResults(results, false, false, env)

		if failed != 1 {
			t.Errorf("failed = %d, want 1", failed)
		}
		if !strings.Contains(stdout.String(), "Created a.html") {
			t.Errorf("stdout = %q", stdout.String())
		}
		if strings.Contains(stdout.String(), "c.md") {
			t.Error("stdout results should not print a status line")
		}
		if !strings.Contains(stdout.String(), "2 succeeded, 1 failed") {
			t.Errorf("stdout = %q, want summary", stdout.String())
		}
		if !strings.Contains(stderr.String(), "FAILED b.md: boom") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()
		env, stdout, stderr := testEnv()

		printResults(results, true, false, env)

		if stdout.Len() != 0 {
			t.Errorf("quiet stdout = %q", stdout.String())
		}
		if !strings.Contains(stderr.String(), "FAILED") {
			t.Error("failures are printed even when quiet")
		}
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		printResults([]jobResult{{InputPath: "a.md", OutputPath: "a.html", Report: gfmrender.Report{Highlighted: 2, MathRendered: 1, MathFailed: 1}}}, false, true, env)

		if !strings.Contains(stdout.String(), "a.md -> a.html") || !strings.Contains(stdout.String(), "[code 2, math 1/2, diagrams 0/0]") {
			t.Errorf("verbose stdout = %q", stdout.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestBatchError - Aggregate error
// ---------------------------------------------------------------------------

func TestBatchError(t *testing.T) {
	t.Parallel()

	if err := batchError(nil, 0); err != nil {
		t.Errorf("batchError(0) = %v, want nil", err)
	}

	first := ErrReadInput
	results := []jobResult{{}, {Err: first}, {Err: errors.New("other")}}

	err := batchError(results, 2)
	if !errors.Is(err, first) {
		t.Errorf("batchError() = %v, want first failure in chain", err)
	}
	if !strings.Contains(err.Error(), "2 file(s) failed") {
		t.Errorf("batchError() = %q, want count", err.Error())
	}
	if exitCodeFor(err) != ExitIO {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitIO)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	gfmrender "github.com/alnah/go-gfmrender"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
	ErrEnhancer    = errors.New("failed to acquire enhancer")
)

// jobFunc produces the output for one file with an acquired enhancer.
// It may return output alongside an error (failed diagrams): the output is
// still written.
type jobFunc func(ctx context.Context, e *gfmrender.Enhancer, job fileJob) (string, gfmrender.Report, error)

// jobResult holds the outcome of a single file.
type jobResult struct {
	InputPath  string
	OutputPath string
	Report     gfmrender.Report
	Err        error
	Duration   time.Duration
}

// runBatch processes files concurrently, one pooled enhancer per worker.
func runBatch(ctx context.Context, pool EnhancerPool, files []fileJob, fn jobFunc, stdout io.Writer) []jobResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]jobResult, len(files))
	var wg sync.WaitGroup
	var stdoutMu sync.Mutex
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			e, err := pool.Acquire(ctx)
			if err != nil {
				// Mark the jobs this worker would have taken as failed
				for idx := range jobs {
					results[idx] = jobResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %w", ErrEnhancer, err),
					}
				}
				return
			}
			defer pool.Release(e)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = jobResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = processFile(ctx, e, files[idx], fn, stdout, &stdoutMu)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// processFile runs fn for one file and writes its output.
func processFile(ctx context.Context, e *gfmrender.Enhancer, f fileJob, fn jobFunc, stdout io.Writer, stdoutMu *sync.Mutex) jobResult {
	start := time.Now()
	result := jobResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	out, report, jobErr := fn(ctx, e, f)
	result.Report = report
	if out == "" && jobErr != nil {
		result.Err = jobErr
		result.Duration = time.Since(start)
		return result
	}

	if err := writeOutput(f.OutputPath, out, stdout, stdoutMu); err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	result.Err = jobErr
	result.Duration = time.Since(start)
	return result
}

// writeOutput writes content to path, creating parent directories, or to
// stdout when path is empty.
func writeOutput(path, content string, stdout io.Writer, stdoutMu *sync.Mutex) error {
	if path == "" {
		stdoutMu.Lock()
		defer stdoutMu.Unlock()
		if _, err := io.WriteString(stdout, content); err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %w", ErrWriteOutput, err)
	}
	// #nosec G306 -- pages are meant to be readable
	if err := os.WriteFile(path, []byte(content), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// readInput reads a discovered file.
func readInput(path string) (string, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- discovered path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(content), nil
}

// readAll reads a whole stream, such as stdin.
func readAll(r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(content), nil
}

// ResultSummary holds the count of succeeded and failed files.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed files.
func countResults(results []jobResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs per-file results and returns the failure count.
// Nothing is printed to stdout for files written there.
func printResults(results []jobResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet || r.OutputPath == "" {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v) %s\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond), formatReport(r.Report))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// formatReport summarizes a pass for verbose output.
func formatReport(r gfmrender.Report) string {
	return fmt.Sprintf("[code %d, math %d/%d, diagrams %d/%d]",
		r.Highlighted,
		r.MathRendered, r.MathRendered+r.MathFailed,
		r.DiagramsRendered, r.DiagramsRendered+r.DiagramsFailed)
}

// batchError reports the failure count as an error, keeping the first
// failure in the chain so its exit code applies.
func batchError(results []jobResult, failed int) error {
	if failed == 0 {
		return nil
	}
	for _, r := range results {
		if r.Err != nil {
			if failed == 1 {
				return r.Err
			}
			return fmt.Errorf("%d file(s) failed: %w", failed, r.Err)
		}
	}
	return nil
}

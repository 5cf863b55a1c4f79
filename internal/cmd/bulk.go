package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 5

// BulkResult is the outcome of one item of a bulk run.
type BulkResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   error  `json:"-"`
	Message string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// runBulk applies operation to every id with bounded parallelism. Results
// keep the order of ids; items skipped by cancellation are reported failed.
func runBulk[T any](
	ctx context.Context,
	ids []string,
	concurrency int64,
	progress bool,
	errOut io.Writer,
	operation func(ctx context.Context, id string) (T, error),
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]BulkResult, len(ids))
	total := len(ids)
	var done int64
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		results[i] = BulkResult{ID: id}
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i].Error = err
				return nil
			}
			defer sem.Release(1)

			data, err := operation(gctx, id)
			if err != nil {
				results[i].Error = err
			} else {
				results[i].Success = true
				results[i].Data = data
			}

			if progress {
				current := atomic.AddInt64(&done, 1)
				progressMu.Lock()
				_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d", current, total)
				progressMu.Unlock()
			}
			// individual failures never cancel the rest
			return nil
		})
	}
	_ = g.Wait()

	if progress && total > 0 {
		_, _ = fmt.Fprintln(errOut)
	}
	for i := range results {
		if results[i].Error != nil {
			results[i].Message = results[i].Error.Error()
		}
	}
	return results
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}

// bulkError folds the failures of a bulk run into one error, or nil.
func bulkError(results []BulkResult) error {
	var merr *multierror.Error
	for _, r := range results {
		if r.Error != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", r.ID, r.Error))
		}
	}
	return merr.ErrorOrNil()
}

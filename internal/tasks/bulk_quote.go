package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/steamwatch/internal/shared"
	"golang.org/x/time/rate"
)

// BulkQuoteOpts contains configuration for a bulk price lookup.
type BulkQuoteOpts struct {
	NumWorkers int     // Concurrent workers (default: 3, max: 8)
	RateLimit  float64 // Jobs handed out per second (default: 2)
}

type quoteJob struct {
	index    int
	hashName string
}

type quoteOutcome struct {
	index int
	res   QuoteResult
}

// BulkQuote fetches the price of every name with a worker pool.
//
// Per-item failures are recorded in the result. The returned error is non-nil only when the engine
// has no quoter or ctx was cancelled before every name was quoted; in that case the skipped names
// carry the context error.
func (e *QuoteEngine) BulkQuote(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	names []string,
	opts BulkQuoteOpts,
) (*BulkQuoteResult, error) {
	if e.quoter == nil {
		return nil, fmt.Errorf("%w: quoter not initialized", shared.ErrServiceUnavailable)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one item name", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	result := &BulkQuoteResult{Total: len(names), Results: make([]QuoteResult, len(names))}
	for i, name := range names {
		result.Results[i] = QuoteResult{HashName: name}
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan quoteJob, len(names))
	results := make(chan quoteOutcome, len(names))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- quoteOutcome{job.index, e.quote(ctx, job.hashName)}
			}
		}()
	}

	var queueErr error
	queueDone := make(chan struct{})
	go func() {
		defer close(queueDone)
		defer close(jobs)
		sendProgress(prog, queuedUpdate(0, len(names)))
		for i, name := range names {
			if err := limiter.Wait(ctx); err != nil {
				queueErr = err
				return
			}
			jobs <- quoteJob{index: i, hashName: name}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	seen := make([]bool, len(names))
	completed := 0
	for r := range results {
		completed++
		seen[r.index] = true
		result.Results[r.index] = r.res

		if r.res.OK() {
			result.Succeeded++
			sendProgress(prog, quotedUpdate(completed, len(names), r.res))
		} else {
			result.Failed++
			sendProgress(prog, quoteFailedUpdate(completed, len(names), r.res))
		}
	}

	<-queueDone
	if completed == len(names) {
		return result, nil
	}

	// Workers stop early only on cancellation, so anything unseen was never quoted.
	err := queueErr
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = context.Canceled
	}
	for i := range result.Results {
		if !seen[i] {
			result.Results[i].Error = err
			result.Failed++
		}
	}
	return result, err
}

func (e *QuoteEngine) quote(ctx context.Context, hashName string) QuoteResult {
	start := time.Now()
	price, err := e.quoter.Price(ctx, hashName)
	return QuoteResult{HashName: hashName, Price: price, Error: err, Took: time.Since(start)}
}

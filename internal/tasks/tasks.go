package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/shopspring/decimal"
)

// Quoter looks up the current lowest price of a market item.
type Quoter interface {
	Price(ctx context.Context, hashName string) (decimal.Decimal, error)
}

// Importer tracks one listing URL at a target price.
type Importer func(ctx context.Context, rawURL string, target decimal.Decimal) error

// QuoteResult is the outcome for one item of a [QuoteEngine.BulkQuote] batch.
type QuoteResult struct {
	HashName string
	Price    decimal.Decimal
	Error    error
	Took     time.Duration
}

func (r QuoteResult) OK() bool { return r.Error == nil }

// BulkQuoteResult collects a whole batch. Results has one entry per input name, in input order.
type BulkQuoteResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []QuoteResult
}

// ImportResult is the outcome of one URL in [QuoteEngine.ImportAll].
type ImportResult struct {
	URL   string
	Error error
}

// ImportAllResult collects an import batch.
type ImportAllResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []ImportResult
}

// QuoteEngine runs batched price lookups against a [Quoter].
type QuoteEngine struct {
	quoter Quoter
}

// NewQuoteEngine creates a new engine. quoter may be nil when only [QuoteEngine.ImportAll] is used.
func NewQuoteEngine(quoter Quoter) *QuoteEngine {
	return &QuoteEngine{quoter: quoter}
}

// ImportAll tracks every URL at target, one after another.
//
// A failed URL is recorded and the batch moves on; cancellation stops it and returns what completed.
func (e *QuoteEngine) ImportAll(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	importer Importer,
	urls []string,
	target decimal.Decimal,
) (*ImportAllResult, error) {
	if importer == nil {
		return nil, fmt.Errorf("%w: importer not initialized", shared.ErrServiceUnavailable)
	}

	result := &ImportAllResult{Total: len(urls), Results: make([]ImportResult, 0, len(urls))}
	for i, raw := range urls {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sendProgress(prog, importingUpdate(i+1, len(urls), raw))
		err := importer(ctx, raw, target)
		result.Results = append(result.Results, ImportResult{URL: raw, Error: err})

		if err != nil {
			result.Failed++
			sendProgress(prog, importFailedUpdate(i+1, len(urls), raw, err))
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

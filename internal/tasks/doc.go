// Package tasks runs batched market operations with real-time progress reporting.
//
// # Operations
//
//  1. [QuoteEngine.BulkQuote] : Look up current prices for many items
//     - A fixed worker pool pulls item names from a queue
//     - A token bucket throttles how fast jobs are handed out
//     - Results come back in input order; one failure never stops the batch
//
//  2. [QuoteEngine.ImportAll] : Track many market listing URLs
//     - Runs sequentially, since the session guards imports with a single loading flag
//     - Stops early only when the context is cancelled
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, and a display message.
// Updates use select with default so a slow or absent reader never blocks a batch.
package tasks

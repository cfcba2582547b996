package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	QueueQuotes Phase = iota
	QuotePrice
	ImportListing
)

func (p Phase) String() string {
	switch p {
	case QueueQuotes:
		return "queue_quotes"
	case QuotePrice:
		return "quote_price"
	case ImportListing:
		return "import_listing"
	default:
		return ""
	}
}

func queuedUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QueueQuotes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Looking up %d prices...", total),
	}
}

func quotedUpdate(step, total int, r QuoteResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QuotePrice,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s: $%s", step, total, r.HashName, r.Price.StringFixed(2)),
		Data:    r,
	}
}

func quoteFailedUpdate(step, total int, r QuoteResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QuotePrice,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, r.HashName, r.Error),
		Data:    r,
	}
}

func importingUpdate(step, total int, url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportListing,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Importing %s...", step, total, url),
	}
}

func importFailedUpdate(step, total int, url string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportListing,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, url, err),
	}
}

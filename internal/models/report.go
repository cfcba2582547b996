package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceDrop is an item whose refreshed price is at or below its target.
type PriceDrop struct {
	TrackID     int64           `json:"track_id"`
	ItemName    string          `json:"item_name"`
	OldPrice    decimal.Decimal `json:"old_price"`
	NewPrice    decimal.Decimal `json:"new_price"`
	TargetPrice decimal.Decimal `json:"target_price"`
}

// Purchase is an item the remote trigger bought during a refresh.
type Purchase struct {
	TrackID  int64           `json:"track_id"`
	ItemName string          `json:"item_name"`
	Price    decimal.Decimal `json:"price"`
}

// RefreshError is a per-item failure reported by the remote trigger.
type RefreshError struct {
	TrackID  int64  `json:"track_id"`
	ItemName string `json:"item_name"`
	Error    string `json:"error"`
}

// RefreshReport is the response of the price refresh / auto-purchase trigger.
type RefreshReport struct {
	Updated       int            `json:"updated"`
	Total         int            `json:"total"`
	PriceDrops    []PriceDrop    `json:"price_drops"`
	PurchasesMade []Purchase     `json:"purchases_made"`
	Errors        []RefreshError `json:"errors,omitempty"`
}

// Outcome classifies a report. Purchases win over drops, drops win over a plain update.
type Outcome int

const (
	OutcomeUpdated Outcome = iota
	OutcomeTargetReached
	OutcomePurchased
)

// Outcome returns the single outcome the user is told about.
func (r RefreshReport) Outcome() Outcome {
	switch {
	case len(r.PurchasesMade) > 0:
		return OutcomePurchased
	case len(r.PriceDrops) > 0:
		return OutcomeTargetReached
	default:
		return OutcomeUpdated
	}
}

// Summary renders the user-facing message for the report's outcome.
func (r RefreshReport) Summary() string {
	switch r.Outcome() {
	case OutcomePurchased:
		if len(r.PurchasesMade) == 1 {
			p := r.PurchasesMade[0]
			return fmt.Sprintf("Purchased %s for %s", p.ItemName, p.Price.StringFixed(2))
		}
		return fmt.Sprintf("Purchased %d items", len(r.PurchasesMade))
	case OutcomeTargetReached:
		if len(r.PriceDrops) == 1 {
			d := r.PriceDrops[0]
			return fmt.Sprintf("%s reached target: %s (target %s)", d.ItemName, d.NewPrice.StringFixed(2), d.TargetPrice.StringFixed(2))
		}
		return fmt.Sprintf("%d items reached their target price", len(r.PriceDrops))
	default:
		return fmt.Sprintf("Updated %d of %d prices", r.Updated, r.Total)
	}
}

// PurchasedIDs returns the track ids the trigger reported as bought.
func (r RefreshReport) PurchasedIDs() map[int64]bool {
	ids := make(map[int64]bool, len(r.PurchasesMade))
	for _, p := range r.PurchasesMade {
		ids[p.TrackID] = true
	}
	return ids
}

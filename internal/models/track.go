package models

import (
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a [TrackedItem].
//
// The only transition is active -> purchased, and only the remote refresh trigger performs it.
type Status string

const (
	StatusActive    Status = "active"
	StatusPurchased Status = "purchased"
)

// TrackedItem is a user's watch on one market item, as stored by the remote track store.
type TrackedItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"item_name"`
	HashName     string          `json:"item_hash_name"`
	Image        string          `json:"item_image"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	TargetPrice  decimal.Decimal `json:"target_price"`
	Status       Status          `json:"status"`
	AutoPurchase bool            `json:"auto_purchase"`
	CreatedAt    string          `json:"created_at,omitempty"`
	UpdatedAt    string          `json:"updated_at,omitempty"`
}

// TargetReached reports whether the current price is at or below the target.
//
// It does not look at Status: an item can be reached while still active when auto-purchase is off or hasn't run.
func (t TrackedItem) TargetReached() bool {
	return t.CurrentPrice.LessThanOrEqual(t.TargetPrice)
}

// Purchased reports whether the remote store marked the item as bought.
func (t TrackedItem) Purchased() bool {
	return t.Status == StatusPurchased
}

// SearchResult is a single market search hit.
//
// Price is the market's display string and is never used for stored records.
type SearchResult struct {
	Name         string `json:"name"`
	HashName     string `json:"hash_name"`
	Image        string `json:"image"`
	Price        string `json:"price"`
	SellListings int    `json:"sell_listings"`
}

// NewTrack is the create payload for the remote track store.
type NewTrack struct {
	Name         string
	HashName     string
	Image        string
	CurrentPrice decimal.Decimal
	TargetPrice  decimal.Decimal
}

// Credentials is the Steam cookie pair the remote purchase function needs to buy on the user's behalf.
type Credentials struct {
	SteamCookie string `json:"steam_cookie"`
	SessionID   string `json:"steam_session_id"`
}

// ValidatePrice checks that a price is usable as a target: non-negative.
func ValidatePrice(p decimal.Decimal) bool {
	return !p.IsNegative()
}

// TrackUpdate is a partial update. Nil fields are left untouched by the store.
type TrackUpdate struct {
	TargetPrice  *decimal.Decimal
	AutoPurchase *bool
}

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/shopspring/decimal"
)

// LoadTracks replaces the cached list with the remote store's list for the signed-in identity.
//
// On failure the cached list is left unchanged.
func (c *Controller) LoadTracks(ctx context.Context) error {
	id, err := c.requireIdentity("load your tracked items")
	if err != nil {
		return err
	}

	items, err := c.deps.Tracks.ListTracks(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			c.notify(models.KindError, "Authentication required: sign in with Steam again")
		} else {
			c.notifyf(models.KindError, "Load error: %v", err)
		}
		return err
	}

	c.mu.Lock()
	if c.identity == nil || c.identity.SteamID != id {
		// Signed out or switched accounts while the request was in flight.
		c.mu.Unlock()
		return nil
	}
	c.tracks = items
	c.syncPollerLocked()
	c.mu.Unlock()

	c.deps.Observer.ObserveTracks(items)
	c.logger.Debug("tracks loaded", "count", len(items))
	return nil
}

func validateTarget(target decimal.Decimal) error {
	if !models.ValidatePrice(target) {
		return fmt.Errorf("%w: target price %s must not be negative", shared.ErrInvalidInput, target)
	}
	return nil
}

// AddTrack starts tracking item at target. The stored current price comes from the price lookup,
// never from the search result's display price. The item shows up once the follow-up reload returns it.
func (c *Controller) AddTrack(ctx context.Context, item models.SearchResult, target decimal.Decimal) error {
	if err := validateTarget(target); err != nil {
		c.notifyf(models.KindError, "Add error: %v", err)
		return err
	}
	if item.HashName == "" {
		err := fmt.Errorf("%w: item has no market hash name", shared.ErrInvalidInput)
		c.notifyf(models.KindError, "Add error: %v", err)
		return err
	}

	id, err := c.requireIdentity("track items")
	if err != nil {
		return err
	}

	if err := c.begin(OpAdd); err != nil {
		return err
	}
	defer c.end(OpAdd)

	price, err := c.deps.Market.Price(ctx, item.HashName)
	if err != nil {
		c.notifyf(models.KindError, "Add error: could not get a price for %s: %v", item.Name, err)
		return err
	}

	name := item.Name
	if name == "" {
		name = item.HashName
	}

	_, err = c.deps.Tracks.CreateTrack(ctx, id, models.NewTrack{
		Name:         name,
		HashName:     item.HashName,
		Image:        item.Image,
		CurrentPrice: price,
		TargetPrice:  target,
	})
	if err != nil {
		c.notifyf(models.KindError, "Add error: %v", err)
		return err
	}

	c.notifyf(models.KindInfo, "Tracking %s at %s (target %s)", name, price.StringFixed(2), target.StringFixed(2))
	return c.LoadTracks(ctx)
}

// UpdateTarget changes the target price of one item. On failure the previous target stays in place.
func (c *Controller) UpdateTarget(ctx context.Context, trackID int64, target decimal.Decimal) error {
	if err := validateTarget(target); err != nil {
		c.notifyf(models.KindError, "Update error: %v", err)
		return err
	}

	id, err := c.requireIdentity("update tracked items")
	if err != nil {
		return err
	}

	if err := c.deps.Tracks.UpdateTrack(ctx, id, trackID, models.TrackUpdate{TargetPrice: &target}); err != nil {
		c.notifyf(models.KindError, "Update error: %v", err)
		return err
	}

	c.notifyf(models.KindInfo, "Target updated to %s", target.StringFixed(2))
	return c.LoadTracks(ctx)
}

// ToggleAutoPurchase enables or disables auto-purchase for one item.
func (c *Controller) ToggleAutoPurchase(ctx context.Context, trackID int64, enabled bool) error {
	id, err := c.requireIdentity("update tracked items")
	if err != nil {
		return err
	}

	if err := c.deps.Tracks.UpdateTrack(ctx, id, trackID, models.TrackUpdate{AutoPurchase: &enabled}); err != nil {
		c.notifyf(models.KindError, "Update error: %v", err)
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	c.notifyf(models.KindInfo, "Auto-purchase %s", state)
	return c.LoadTracks(ctx)
}

// DeleteTrack removes one item, then reloads whether or not the delete succeeded.
// A failed delete is reported as such and its error returned.
func (c *Controller) DeleteTrack(ctx context.Context, trackID int64) error {
	id, err := c.requireIdentity("remove tracked items")
	if err != nil {
		return err
	}

	deleteErr := c.deps.Tracks.DeleteTrack(ctx, id, trackID)
	if deleteErr != nil {
		c.notifyf(models.KindError, "Delete error: %v", deleteErr)
	} else {
		c.notify(models.KindInfo, "Item removed")
	}

	loadErr := c.LoadTracks(ctx)
	if deleteErr != nil {
		return deleteErr
	}
	return loadErr
}

// RefreshPrices runs the remote refresh trigger and always reloads afterwards.
func (c *Controller) RefreshPrices(ctx context.Context) (*models.RefreshReport, error) {
	return c.refresh(ctx, false)
}

// refresh is RefreshPrices; quiet suppresses the plain "updated" notice for scheduled runs.
// Scheduled runs deliberately report only drops, purchases and errors, so a background run
// that changes nothing stays silent.
func (c *Controller) refresh(ctx context.Context, quiet bool) (*models.RefreshReport, error) {
	id, err := c.requireIdentity("refresh prices")
	if err != nil {
		return nil, err
	}

	if err := c.begin(OpRefresh); err != nil {
		return nil, err
	}
	defer c.end(OpRefresh)

	start := time.Now()
	report, err := c.deps.Refresher.Refresh(ctx, id)
	c.deps.Observer.ObserveRefresh(report, err, time.Since(start))

	loadErr := c.LoadTracks(ctx)

	if err != nil {
		c.notifyf(models.KindError, "Refresh error: %v", err)
		return nil, err
	}

	for _, itemErr := range report.Errors {
		c.logger.Warn("item refresh failed", "track", itemErr.TrackID, "item", itemErr.ItemName, "err", itemErr.Error)
	}

	switch report.Outcome() {
	case models.OutcomePurchased:
		c.notify(models.KindPurchase, report.Summary())
	case models.OutcomeTargetReached:
		c.notify(models.KindPriceDrop, report.Summary())
	default:
		if !quiet {
			c.notify(models.KindInfo, report.Summary())
		}
	}
	return report, loadErr
}

// SaveCredentials stores the Steam cookie pair used by auto-purchase.
func (c *Controller) SaveCredentials(ctx context.Context, creds models.Credentials) error {
	id, err := c.requireIdentity("save Steam credentials")
	if err != nil {
		return err
	}

	if err := c.begin(OpCredentials); err != nil {
		return err
	}
	defer c.end(OpCredentials)

	if err := c.deps.Tracks.SaveCredentials(ctx, id, creds); err != nil {
		c.notifyf(models.KindError, "Credentials error: %v", err)
		return err
	}

	c.notify(models.KindInfo, "Steam credentials saved; auto-purchase can now buy on your behalf")
	return nil
}

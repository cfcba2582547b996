package session

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/server"
	"github.com/desertthunder/steamwatch/internal/shared"
)

// Start bootstraps the session: it loads the stored interval, restores a stored identity, and
// completes a login when callback carries an OpenID response.
//
// A failed callback keeps the restored identity. A failed track load is reported but does not
// fail startup.
func (c *Controller) Start(ctx context.Context, callback url.Values) error {
	if interval, ok, err := c.deps.Prefs.LoadInterval(); err != nil {
		c.logger.Warn("could not read stored interval", "err", err)
	} else if ok {
		c.mu.Lock()
		c.interval = interval
		c.mu.Unlock()
	}

	identity, err := c.deps.Prefs.LoadIdentity()
	if err != nil {
		c.logger.Warn("could not read stored identity", "err", err)
	} else if identity != nil {
		c.mu.Lock()
		c.identity = identity
		c.mu.Unlock()
	}

	if server.IsCallback(callback) {
		_, loginErr := c.CompleteLogin(ctx, callback)
		if loginErr == nil || c.Identity() == nil {
			return loginErr
		}
		if err := c.LoadTracks(ctx); err != nil {
			c.logger.Warn("initial load failed", "err", err)
		}
		return loginErr
	}

	if c.Identity() == nil {
		return nil
	}
	if err := c.LoadTracks(ctx); err != nil {
		c.logger.Warn("initial load failed", "err", err)
	}
	return nil
}

// Login returns the provider URL the browser should open; the provider redirects to returnTo.
func (c *Controller) Login(returnTo string) (string, error) {
	redirect, err := c.deps.Auth.BeginLogin(returnTo)
	if err != nil {
		c.notifyf(models.KindError, "Login error: %v", err)
		return "", err
	}
	return redirect, nil
}

// CompleteLogin validates the OpenID callback, resolves the profile (falling back to a
// placeholder), persists the identity and loads its tracked items.
func (c *Controller) CompleteLogin(ctx context.Context, params url.Values) (*models.Identity, error) {
	steamID, err := c.deps.Auth.CompleteLogin(ctx, params)
	if err != nil {
		c.notifyf(models.KindError, "Login failed: %v", err)
		return nil, err
	}

	identity, err := c.deps.Profiles.Profile(ctx, steamID)
	if err != nil {
		c.logger.Warn("profile lookup failed, using placeholder", "steam_id", steamID, "err", err)
		identity = models.PlaceholderIdentity(steamID)
	}

	if err := c.deps.Prefs.SaveIdentity(identity); err != nil {
		c.notifyf(models.KindError, "Login error: could not save identity: %v", err)
		return nil, fmt.Errorf("save identity: %w", err)
	}

	c.mu.Lock()
	switched := c.identity == nil || c.identity.SteamID != identity.SteamID
	c.identity = &identity
	if switched {
		c.tracks = nil
		c.syncPollerLocked()
	}
	c.mu.Unlock()

	c.notifyf(models.KindInfo, "Signed in as %s", identity.DisplayName)

	if err := c.LoadTracks(ctx); err != nil {
		c.logger.Warn("load after login failed", "err", err)
	}
	return &identity, nil
}

// Logout forgets the identity, clears the tracked items and disarms the poller.
func (c *Controller) Logout() error {
	if err := c.deps.Prefs.ClearIdentity(); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}

	c.mu.Lock()
	c.identity = nil
	c.tracks = nil
	c.syncPollerLocked()
	c.mu.Unlock()

	c.notify(models.KindInfo, "Signed out")
	return nil
}

// SetInterval validates, persists and applies a new refresh interval.
func (c *Controller) SetInterval(interval models.RefreshInterval) error {
	if err := interval.Validate(); err != nil {
		err = fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		c.notifyf(models.KindError, "Settings error: %v", err)
		return err
	}

	if err := c.deps.Prefs.SaveInterval(interval); err != nil {
		c.notifyf(models.KindError, "Settings error: %v", err)
		return err
	}

	c.mu.Lock()
	c.interval = interval
	c.syncPollerLocked()
	c.mu.Unlock()

	c.notifyf(models.KindInfo, "Refresh interval set to %s", interval)
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/shopspring/decimal"
)

func updateBody(u models.TrackUpdate) map[string]any {
	body := map[string]any{}
	if u.TargetPrice != nil {
		body["target_price"] = number(*u.TargetPrice)
	}
	if u.AutoPurchase != nil {
		body["auto_purchase"] = *u.AutoPurchase
	}
	return body
}

// number encodes a decimal as a bare JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func requireIdentity(steamID string) error {
	if steamID == "" {
		return fmt.Errorf("%w: no steam id", shared.ErrNotAuthenticated)
	}
	return nil
}

func (c *Client) trackURL(id int64) (string, error) {
	if id == 0 {
		return c.endpoints.Tracks, nil
	}
	return withQuery(c.endpoints.Tracks, url.Values{"id": {strconv.FormatInt(id, 10)}})
}

// ListTracks returns every tracked item belonging to steamID.
func (c *Client) ListTracks(ctx context.Context, steamID string) ([]models.TrackedItem, error) {
	if err := requireIdentity(steamID); err != nil {
		return nil, err
	}

	var tracks []models.TrackedItem
	r := request{method: http.MethodGet, url: c.endpoints.Tracks, steamID: steamID}
	if err := c.doRequest(ctx, r, &tracks); err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return tracks, nil
}

// CreateTrack submits a new active track and returns the stored row.
func (c *Client) CreateTrack(ctx context.Context, steamID string, t models.NewTrack) (*models.TrackedItem, error) {
	if err := requireIdentity(steamID); err != nil {
		return nil, err
	}

	body := map[string]any{
		"item_name":      t.Name,
		"item_hash_name": t.HashName,
		"item_image":     t.Image,
		"current_price":  number(t.CurrentPrice),
		"target_price":   number(t.TargetPrice),
		"status":         models.StatusActive,
	}

	var created models.TrackedItem
	r := request{method: http.MethodPost, url: c.endpoints.Tracks, steamID: steamID, body: body}
	if err := c.doRequest(ctx, r, &created); err != nil {
		return nil, fmt.Errorf("create track %q: %w", t.HashName, err)
	}
	return &created, nil
}

// UpdateTrack applies a partial update to one tracked item.
func (c *Client) UpdateTrack(ctx context.Context, steamID string, id int64, u models.TrackUpdate) error {
	if err := requireIdentity(steamID); err != nil {
		return err
	}

	body := updateBody(u)
	if len(body) == 0 {
		return fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput)
	}

	endpoint, err := c.trackURL(id)
	if err != nil {
		return err
	}

	r := request{method: http.MethodPut, url: endpoint, steamID: steamID, body: body, notFound: shared.ErrTrackNotFound}
	if err := c.doRequest(ctx, r, nil); err != nil {
		return fmt.Errorf("update track %d: %w", id, err)
	}
	return nil
}

// DeleteTrack removes one tracked item.
func (c *Client) DeleteTrack(ctx context.Context, steamID string, id int64) error {
	if err := requireIdentity(steamID); err != nil {
		return err
	}

	endpoint, err := c.trackURL(id)
	if err != nil {
		return err
	}

	r := request{method: http.MethodDelete, url: endpoint, steamID: steamID, notFound: shared.ErrTrackNotFound}
	if err := c.doRequest(ctx, r, nil); err != nil {
		return fmt.Errorf("delete track %d: %w", id, err)
	}
	return nil
}

// SaveCredentials stores the Steam cookie pair the refresh trigger uses for purchases.
func (c *Client) SaveCredentials(ctx context.Context, steamID string, creds models.Credentials) error {
	if err := requireIdentity(steamID); err != nil {
		return err
	}
	if creds.SteamCookie == "" || creds.SessionID == "" {
		return shared.ErrMissingCredentials
	}

	endpoint := strings.TrimRight(c.endpoints.Tracks, "/") + "/steam-credentials"
	r := request{method: http.MethodPut, url: endpoint, steamID: steamID, body: creds}
	if err := c.doRequest(ctx, r, nil); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Refresh runs the remote re-price and auto-purchase trigger for steamID.
func (c *Client) Refresh(ctx context.Context, steamID string) (*models.RefreshReport, error) {
	if err := requireIdentity(steamID); err != nil {
		return nil, err
	}

	var report models.RefreshReport
	r := request{method: http.MethodPost, url: c.endpoints.Refresh, steamID: steamID}
	if err := c.doRequest(ctx, r, &report); err != nil {
		return nil, fmt.Errorf("refresh prices: %w", err)
	}
	return &report, nil
}

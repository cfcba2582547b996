package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/steamwatch/internal/models"
)

const profileURLFormat = "https://steamcommunity.com/profiles/%s/?xml=1"

// steamProfile is the subset of the public profile XML we read.
type steamProfile struct {
	XMLName    xml.Name `xml:"profile"`
	SteamID64  string   `xml:"steamID64"`
	SteamID    string   `xml:"steamID"`
	AvatarFull string   `xml:"avatarFull"`
}

// Profile looks up the display name and avatar for a Steam account.
//
// Results are cached by id. Callers fall back to [models.PlaceholderIdentity] on error.
func (c *Client) Profile(ctx context.Context, steamID string) (models.Identity, error) {
	if identity, ok := c.profiles.Get(steamID); ok {
		return identity, nil
	}

	target := fmt.Sprintf(profileURLFormat, url.PathEscape(steamID))
	endpoint := target
	if c.endpoints.ProfileRelay != "" {
		var err error
		if endpoint, err = withQuery(c.endpoints.ProfileRelay, url.Values{"url": {target}}); err != nil {
			return models.Identity{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Identity{}, fmt.Errorf("profile lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Identity{}, fmt.Errorf("profile lookup: status %d", resp.StatusCode)
	}

	var profile steamProfile
	if err := xml.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return models.Identity{}, fmt.Errorf("failed to decode profile: %w", err)
	}

	name := strings.TrimSpace(profile.SteamID)
	if name == "" {
		return models.Identity{}, fmt.Errorf("profile lookup: no display name for %s", steamID)
	}

	identity := models.Identity{
		SteamID:     steamID,
		DisplayName: name,
		AvatarURL:   strings.TrimSpace(profile.AvatarFull),
	}
	c.profiles.Add(steamID, identity)

	c.logger.Debug("profile resolved", "steam_id", steamID, "name", name)
	return identity, nil
}

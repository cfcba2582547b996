package models

import (
	"fmt"
	"regexp"
)

var steamIDPattern = regexp.MustCompile(`^\d+$`)

// Identity is the Steam account that scopes every remote store call.
type Identity struct {
	SteamID     string `json:"steam_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// PlaceholderIdentity derives a display name and avatar from the account id alone.
//
// Used when the profile lookup fails; the same id always yields the same placeholder.
func PlaceholderIdentity(steamID string) Identity {
	suffix := steamID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return Identity{
		SteamID:     steamID,
		DisplayName: "User" + suffix,
		AvatarURL:   "https://api.dicebear.com/7.x/avataaars/svg?seed=" + steamID,
	}
}

// Validate checks the account id is numeric.
func (i Identity) Validate() error {
	if !steamIDPattern.MatchString(i.SteamID) {
		return fmt.Errorf("invalid steam id %q", i.SteamID)
	}
	return nil
}

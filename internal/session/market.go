package session

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/shopspring/decimal"
)

const listingsPrefix = "/market/listings/"

// Search queries the market. Zero results is reported with guidance and [shared.ErrNoResults].
func (c *Controller) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	results, err := c.deps.Market.Search(ctx, query)
	if err != nil {
		c.notifyf(models.KindError, "Search error: %v", err)
		return nil, err
	}

	if len(results) == 0 {
		c.notifyf(models.KindInfo,
			"Nothing found for %q. Try the exact English item name, e.g. AK-47 | Redline (Field-Tested)", query)
		return nil, fmt.Errorf("%w: %q", shared.ErrNoResults, query)
	}
	return results, nil
}

// Listing is a market listing reference parsed from a URL.
type Listing struct {
	AppID    int
	HashName string
}

// ParseListingURL parses a Steam market listing URL of the form
// https://steamcommunity.com/market/listings/<appid>/<market hash name>.
func ParseListingURL(raw string) (Listing, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Listing{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	rest, ok := strings.CutPrefix(u.Path, listingsPrefix)
	if !ok {
		return Listing{}, fmt.Errorf("%w: %q is not a market listing url", shared.ErrInvalidInput, raw)
	}

	app, hash, _ := strings.Cut(rest, "/")
	appID, err := strconv.Atoi(app)
	if err != nil {
		return Listing{}, fmt.Errorf("%w: bad app id %q", shared.ErrInvalidInput, app)
	}

	hash = strings.TrimSuffix(hash, "/")
	if hash == "" {
		return Listing{}, fmt.Errorf("%w: listing url has no item", shared.ErrInvalidInput)
	}
	return Listing{AppID: appID, HashName: hash}, nil
}

// ImportFromURL tracks the item behind a market listing URL. The item is resolved by search
// so it gets a display name and image; when search finds nothing the hash name is used as is.
func (c *Controller) ImportFromURL(ctx context.Context, rawURL string, target decimal.Decimal) error {
	if err := c.begin(OpImport); err != nil {
		return err
	}
	defer c.end(OpImport)

	listing, err := ParseListingURL(rawURL)
	if err != nil {
		c.notifyf(models.KindError, "Import error: %v", err)
		return err
	}

	item := models.SearchResult{Name: listing.HashName, HashName: listing.HashName}
	if results, err := c.deps.Market.Search(ctx, listing.HashName); err != nil {
		c.logger.Warn("import search failed, using hash name", "item", listing.HashName, "err", err)
	} else {
		for _, r := range results {
			if r.HashName == listing.HashName {
				item = r
				break
			}
		}
	}

	return c.AddTrack(ctx, item, target)
}

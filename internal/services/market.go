package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/shopspring/decimal"
)

// PriceQuote is the price function's answer for one market hash name.
type PriceQuote struct {
	ItemName    string              `json:"item_name"`
	LowestPrice string              `json:"lowest_price"`
	Value       decimal.NullDecimal `json:"price_value"`
	MedianPrice string              `json:"median_price"`
	Volume      string              `json:"volume"`
}

// Search queries the market by name. An empty result is not an error here.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", shared.ErrMissingArgument)
	}

	endpoint, err := withQuery(c.endpoints.Search, url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp struct {
		Results []models.SearchResult `json:"results"`
		Total   int                   `json:"total"`
	}
	if err := c.doRequest(ctx, request{method: http.MethodGet, url: endpoint}, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	return resp.Results, nil
}

// Quote fetches the full price function response for a market hash name.
func (c *Client) Quote(ctx context.Context, hashName string) (*PriceQuote, error) {
	if hashName == "" {
		return nil, fmt.Errorf("%w: market hash name is empty", shared.ErrMissingArgument)
	}

	endpoint, err := withQuery(c.endpoints.Price, url.Values{"item": {hashName}})
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var quote PriceQuote
	r := request{method: http.MethodGet, url: endpoint, notFound: shared.ErrItemNotFound}
	if err := c.doRequest(ctx, r, &quote); err != nil {
		return nil, fmt.Errorf("price %q: %w", hashName, err)
	}
	return &quote, nil
}

// Price returns the authoritative lowest price for a market hash name.
func (c *Client) Price(ctx context.Context, hashName string) (decimal.Decimal, error) {
	quote, err := c.Quote(ctx, hashName)
	if err != nil {
		return decimal.Zero, err
	}
	if !quote.Value.Valid {
		return decimal.Zero, fmt.Errorf("%w: %s", shared.ErrPriceUnavailable, hashName)
	}
	return quote.Value.Decimal, nil
}

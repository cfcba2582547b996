// HTTP client for the remote search, price, track store and refresh functions
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	steamIDHeader    = "X-Steam-Id"
	profileCacheSize = 128
)

// Endpoints holds the base URL of each remote function.
type Endpoints struct {
	Search       string
	Price        string
	Tracks       string
	Refresh      string
	ProfileRelay string
}

// EndpointsFromConfig maps the [remote] config section onto [Endpoints].
func EndpointsFromConfig(cfg shared.RemoteConfig) Endpoints {
	return Endpoints{
		Search:       cfg.SearchURL,
		Price:        cfg.PriceURL,
		Tracks:       cfg.TracksURL,
		Refresh:      cfg.RefreshURL,
		ProfileRelay: cfg.ProfileRelayURL,
	}
}

// Client talks to the remote functions. It is safe for concurrent use.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	limiter    *rate.Limiter
	profiles   *lru.Cache[string, models.Identity]
	logger     *log.Logger
}

// NewClient creates a [Client]. A nil client falls back to [http.DefaultClient];
// a non-positive marketRate disables throttling of search and price calls.
func NewClient(endpoints Endpoints, client *http.Client, marketRate float64) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	limit := rate.Inf
	if marketRate > 0 {
		limit = rate.Limit(marketRate)
	}

	profiles, _ := lru.New[string, models.Identity](profileCacheSize)

	return &Client{
		endpoints:  endpoints,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		profiles:   profiles,
		logger:     shared.NewLogger(nil),
	}
}

// NewClientFromConfig builds a [Client] with the configured endpoints, timeout and market rate.
func NewClientFromConfig(cfg shared.RemoteConfig) *Client {
	return NewClient(EndpointsFromConfig(cfg), &http.Client{Timeout: cfg.Timeout()}, cfg.MarketRate)
}

// SetLogger replaces the client's logger.
func (c *Client) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// request describes one call to a remote function.
type request struct {
	method   string
	url      string
	steamID  string
	body     any
	notFound error
}

func (c *Client) doRequest(ctx context.Context, r request, result any) error {
	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if r.steamID != "" {
		req.Header.Set(steamIDHeader, r.steamID)
	}

	c.logger.Debug("remote request", "method", r.method, "url", r.url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return fmt.Errorf("%w: request failed: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data, r.notFound)
	}

	if result != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// statusError maps a failure status onto a sentinel, carrying the remote message when there is one.
func statusError(status int, body []byte, notFound error) error {
	var errResp struct {
		Error string `json:"error"`
	}
	msg := fmt.Sprintf("status %d", status)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = fmt.Sprintf("status %d: %s", status, errResp.Error)
	}

	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, msg)
	case status == http.StatusNotFound && notFound != nil:
		return fmt.Errorf("%w: %s", notFound, msg)
	default:
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)
	}
}

// withQuery appends query parameters to a base URL that may already carry some.
func withQuery(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: invalid endpoint %q: %v", shared.ErrInvalidConfig, base, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

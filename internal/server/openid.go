package server

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/steamwatch/internal/shared"
)

const (
	openIDNamespace      = "http://specs.openid.net/auth/2.0"
	openIDIdentifierSel  = "http://specs.openid.net/auth/2.0/identifier_select"
	defaultSteamOpenID   = "https://steamcommunity.com/openid/login"
	steamClaimedIDPrefix = "https://steamcommunity.com/openid/id/"
)

var claimedIDPattern = regexp.MustCompile("^" + regexp.QuoteMeta(steamClaimedIDPrefix) + `(\d+)$`)

// SteamOpenID drives Steam's OpenID 2.0 login: it builds the redirect and validates the callback assertion.
type SteamOpenID struct {
	endpoint   string
	realm      string
	verify     bool
	httpClient *http.Client
}

// NewSteamOpenID creates a [SteamOpenID] for the given provider endpoint and realm.
//
// When verify is set, CompleteLogin confirms the signed assertion with Steam (check_authentication)
// before trusting the claimed id.
func NewSteamOpenID(endpoint, realm string, verify bool, client *http.Client) *SteamOpenID {
	if endpoint == "" {
		endpoint = defaultSteamOpenID
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SteamOpenID{endpoint: endpoint, realm: realm, verify: verify, httpClient: client}
}

// NewSteamOpenIDFromConfig builds a [SteamOpenID] from the [steam] config section.
func NewSteamOpenIDFromConfig(cfg shared.SteamConfig, client *http.Client) *SteamOpenID {
	return NewSteamOpenID(cfg.OpenIDURL, cfg.Realm, cfg.VerifyAssertion, client)
}

// BeginLogin returns the provider URL the user's browser should be sent to.
func (s *SteamOpenID) BeginLogin(returnTo string) (string, error) {
	if returnTo == "" {
		return "", fmt.Errorf("%w: return_to is required", shared.ErrMissingArgument)
	}

	realm := s.realm
	if realm == "" {
		u, err := url.Parse(returnTo)
		if err != nil {
			return "", fmt.Errorf("%w: return_to %q: %v", shared.ErrInvalidArgument, returnTo, err)
		}
		realm = u.Scheme + "://" + u.Host
	}

	params := url.Values{
		"openid.ns":         {openIDNamespace},
		"openid.mode":       {"checkid_setup"},
		"openid.return_to":  {returnTo},
		"openid.realm":      {realm},
		"openid.identity":   {openIDIdentifierSel},
		"openid.claimed_id": {openIDIdentifierSel},
	}
	return s.endpoint + "?" + params.Encode(), nil
}

// CompleteLogin validates callback parameters and returns the numeric Steam account id.
func (s *SteamOpenID) CompleteLogin(ctx context.Context, params url.Values) (string, error) {
	steamID, err := ParseClaimedID(params)
	if err != nil {
		return "", err
	}

	if s.verify {
		if err := s.checkAuthentication(ctx, params); err != nil {
			return "", err
		}
	}
	return steamID, nil
}

// ParseClaimedID extracts the account id from a positive OpenID assertion without contacting Steam.
func ParseClaimedID(params url.Values) (string, error) {
	switch mode := params.Get("openid.mode"); mode {
	case "id_res":
	case "cancel":
		return "", fmt.Errorf("%w: login cancelled", shared.ErrAuthFailed)
	case "":
		return "", fmt.Errorf("%w: no openid response", shared.ErrAuthFailed)
	default:
		return "", fmt.Errorf("%w: unexpected openid.mode %q", shared.ErrAuthFailed, mode)
	}

	claimed := params.Get("openid.claimed_id")
	m := claimedIDPattern.FindStringSubmatch(claimed)
	if m == nil {
		return "", fmt.Errorf("%w: claimed id %q is not a steam account", shared.ErrAuthFailed, claimed)
	}
	return m[1], nil
}

// checkAuthentication replays the assertion to the provider in check_authentication mode.
func (s *SteamOpenID) checkAuthentication(ctx context.Context, params url.Values) error {
	form := url.Values{}
	for k, v := range params {
		if strings.HasPrefix(k, "openid.") {
			form[k] = v
		}
	}
	form.Set("openid.mode", "check_authentication")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: check_authentication: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: check_authentication status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	// Key-value form: one "key:value" per line.
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if ok && key == "is_valid" {
			if strings.TrimSpace(value) == "true" {
				return nil
			}
			break
		}
	}
	return fmt.Errorf("%w: steam rejected the assertion", shared.ErrAuthFailed)
}

// IsCallback reports whether params carry an OpenID response, including a cancelled one.
func IsCallback(params url.Values) bool {
	return params.Get("openid.mode") != ""
}

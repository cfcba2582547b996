// Package services implements [Client], the HTTP client for the remote functions steamwatch talks to.
//
// # Remote Functions
//
// Each function lives at its own base URL (see [Endpoints]):
//   - search : GET ?q= market search, returns up to ten hits
//   - price : GET ?item= authoritative lowest price for a market hash name
//   - tracks : the per-user track store (GET/POST/PUT/DELETE), scoped by the X-Steam-Id header
//   - refresh : POST trigger that re-prices every active track and runs auto-purchase
//
// The profile lookup fetches Steam's public profile XML through a CORS relay and caches
// results in a bounded LRU, so repeated logins don't hit the relay.
//
// Search and price calls are throttled by a token bucket ([rate.Limiter]) since both
// fan out to the Steam market, which rate limits aggressively.
//
// # Error Handling
//
// Non-2xx responses are mapped onto sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : 401, missing or unknown X-Steam-Id
//   - [shared.ErrTrackNotFound] : 404 from the track store
//   - [shared.ErrItemNotFound] : 404 from the price function
//   - [shared.ErrPriceUnavailable] : price function answered but had no price
//   - [shared.ErrAPIRequest] : any other failure status
//
// The remote error message ({"error": "..."}) is appended when present.
package services

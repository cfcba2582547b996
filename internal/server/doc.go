// Package server provides Steam OpenID login and the small localhost HTTP surface steamwatch needs.
//
// # OpenID Login
//
// Steam signs users in with OpenID 2.0, not OAuth2. [SteamOpenID.BeginLogin] builds the
// checkid_setup redirect (identifier_select for both identity and claimed_id) and
// [SteamOpenID.CompleteLogin] validates the callback: mode must be id_res and the claimed id
// must be https://steamcommunity.com/openid/id/<digits>. With verification enabled the
// assertion is replayed to Steam in check_authentication mode before it is trusted.
//
// # Callback Handler
//
// [OpenIDHandler] serves /callback exactly once and sends the raw parameters through a channel.
// The CLI starts it on localhost:3000, opens the browser and shuts it down after the first hit,
// so callback parameters never outlive the login.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] uses
// [http.ServeMux] method patterns. [Middleware] added first runs outermost.
//
// The watch command mounts the Prometheus handler at /metrics on the same router type.
package server

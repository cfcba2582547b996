package server

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// CallbackResult carries the raw OpenID parameters from the browser redirect.
type CallbackResult struct {
	Params url.Values
	err    error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// OpenIDHandler serves the one-shot login callback on localhost.
// Implements the Handler interface for registration with a Router.
type OpenIDHandler struct {
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOpenIDHandler creates a handler ready to receive a single callback.
func NewOpenIDHandler() *OpenIDHandler {
	return &OpenIDHandler{resultChan: make(chan CallbackResult, 1)}
}

// Routes returns the HTTP routes this handler serves.
func (h *OpenIDHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP accepts the first callback and forwards its query parameters.
//
// Validation of the assertion happens in [SteamOpenID.CompleteLogin]; this only rejects requests
// that carry no OpenID response at all.
func (h *OpenIDHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	params := r.URL.Query()
	if params.Get("openid.mode") == "" {
		h.Send(CallbackResult{err: fmt.Errorf("callback without openid response")})
		http.Error(w, "Missing OpenID response", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Params: params})

	title, message := "Signed in with Steam", "You can close this window and return to the terminal."
	if params.Get("openid.mode") == "cancel" {
		title, message = "Login cancelled", "Run steamwatch auth login to try again."
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, callbackPage, title, title, message)
}

// Send sends the result through the channel (only once).
func (h *OpenIDHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel. It receives exactly one result and is then closed.
func (h *OpenIDHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const callbackPage = `<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #1b2838; color: #c7d5e0; }
        .container { text-align: center; background: #2a475e; padding: 2rem; border-radius: 8px; }
        h1 { color: #66c0f4; margin: 0 0 1rem 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`

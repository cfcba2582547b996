package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// launchers maps GOOS to the command that hands a URL to the desktop's default browser.
var launchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// OpenBrowser starts the default browser on rawURL without waiting for it.
//
// Only http and https URLs are opened.
func OpenBrowser(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: refusing to open %q", ErrInvalidInput, rawURL)
	}

	launcher, ok := launchers[getRuntime()]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", getRuntime())
	}

	args := append(launcher[1:len(launcher):len(launcher)], u.String())
	if err := exec.Command(launcher[0], args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

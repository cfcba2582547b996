package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/steamwatch/internal/server"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in with Steam: it serves the OpenID callback on localhost, sends the browser to
// Steam, and completes the session with whatever Steam redirects back.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	ctl, err := r.session(ctx)
	if err != nil {
		return err
	}

	callbackURL := r.config.Server.CallbackURL()
	loginURL, err := ctl.Login(callbackURL)
	if err != nil {
		return fmt.Errorf("failed to build login url: %w", err)
	}

	handler := server.NewOpenIDHandler()
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	srvCtx, stop := context.WithCancel(ctx)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting login callback server at %v", r.config.Server.Addr())
		serverErrors <- server.Serve(srvCtx, r.config.Server.Addr(), router)
	}()

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser to sign in:\n%s\n\n", loginURL)
	} else {
		r.writePlain("→ Opening browser for Steam sign-in...\n")
		if err := shared.OpenBrowser(loginURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", loginURL)
		}
	}

	wait := cmd.Duration("timeout")
	r.writePlain("→ Waiting for Steam (%v timeout)...\n", wait)

	timeout := time.NewTimer(wait)
	defer timeout.Stop()

	var result server.CallbackResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		if err == nil {
			err = errors.New("server stopped")
		}
		return fmt.Errorf("%w: callback server: %v", shared.ErrServiceUnavailable, err)
	case <-timeout.C:
		return fmt.Errorf("%w: sign-in timed out after %v", shared.ErrTimeout, wait)
	case <-ctx.Done():
		return ctx.Err()
	}
	stop()

	if err := result.Error(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	identity, err := ctl.CompleteLogin(ctx, result.Params)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Signed in as %s (%s)\n", identity.DisplayName, identity.SteamID)
}

// AuthLogout forgets the stored identity.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	ctl, err := r.session(ctx)
	if err != nil {
		return err
	}
	if ctl.Identity() == nil {
		return r.writePlain("Not signed in\n")
	}
	if err := ctl.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami prints the signed-in identity.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}
	identity := ctl.Identity()

	if cmd.Bool("json") {
		return r.writeJSON(identity, true)
	}

	r.writePlain("Name:     %s\n", identity.DisplayName)
	r.writePlain("Steam ID: %s\n", identity.SteamID)
	r.writePlain("Avatar:   %s\n", identity.AvatarURL)
	r.writePlain("Tracked:  %d items\n", len(ctl.Tracks()))
	return nil
}

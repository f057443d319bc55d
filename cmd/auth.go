package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mwojcik/artistmix/internal/formatter"
	"github.com/mwojcik/artistmix/internal/server"
	"github.com/mwojcik/artistmix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens stored against the CLI session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if r.tokens == nil {
		return fmt.Errorf("%w: Spotify credentials not configured, run 'artistmix setup' and fill in config.toml", shared.ErrServiceUnavailable)
	}

	code, err := r.doOAuth(ctx)
	if err != nil {
		return err
	}

	if err := r.tokens.Exchange(ctx, cliSession, code); err != nil {
		return err
	}

	r.writePlainln("✓ Login successful")
	r.writePlain("You can now use: artistmix create --name \"My Mix\" -a \"Some Artist\"\n")
	return nil
}

// Logout discards the CLI session's stored credentials.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if r.tokens == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrServiceUnavailable)
	}

	if err := r.tokens.Logout(cliSession); err != nil {
		return err
	}

	r.writePlain("✓ Logged out\n")
	return nil
}

// Whoami shows the profile behind the CLI session.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	builder, err := r.requireBuilder()
	if err != nil {
		return err
	}

	user, err := builder.CurrentUser(ctx, cliSession)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(user, pretty)
	}

	return r.writePlain("%s", formatter.FormatUser(user))
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
// and returns the captured authorization code.
func (r *Runner) doOAuth(ctx context.Context) (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := r.tokens.AuthURL(state)
	callback := server.NewCallbackHandler(state, r.callbackRoute())
	router := server.NewBasicRouter()
	router.Handler(callback)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-callback.Result():
		// Got result from callback
	case err := <-serverErrors:
		return "", fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return "", fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	return result.Code, nil
}

// callbackRoute derives the local callback path from the configured redirect URI.
func (r *Runner) callbackRoute() string {
	if parsed, err := url.Parse(r.config.Credentials.Spotify.RedirectURI); err == nil && parsed.Path != "" {
		return parsed.Path
	}
	return "/spotify/redirect"
}

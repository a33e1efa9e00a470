package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/topsync/internal/server"
	"github.com/desertthunder/topsync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// Auth performs the authorization-code flow against a temporary local callback server and prints the token.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if r.config.Spotify.ClientID == "" || r.config.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set in config.toml or the environment",
			shared.ErrMissingCredentials)
	}

	token, err := r.doOAuth(ctx, cmd.String("scopes"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(token, true)
	}

	r.writePlainln("%s", styles.OK("Authorization successful"))
	r.writePlain("Access token (expires %s):\n%s\n", token.Expiry.Format(time.Kitchen), token.AccessToken)
	r.writePlainln("%s", styles.Help("export SPOTIFY_ACCESS_TOKEN=<token> to use it with top, playlist and snapshot"))
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, scopes string) (*oauth2.Token, error) {
	state := shared.GenerateID()

	authURL := r.auth.AuthURL("", scopes, state)
	oauthHandler := server.NewOAuthHandler(r.auth, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	httpServer := server.New(r.config.Server.Addr(), router)

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", httpServer.Addr)
		serverErrors <- server.Serve(ctx, httpServer, r.logger)
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("%s", styles.Warn("⚠ Could not open browser automatically."))
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", authTimeout)

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("%w: callback server stopped: %v", shared.ErrAuthFailed, err)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrAuthFailed, authTimeout)
	}

	cancel()
	if err := <-serverErrors; err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if err := result.Error(); err != nil {
		return nil, err
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

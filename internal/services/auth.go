package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/topsync/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// DefaultScopes are requested when a login does not name any scopes.
var DefaultScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
}

// TokenExchanger trades an authorization code for an access token.
type TokenExchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// Authenticator drives the authorization-code flow against the Spotify accounts service.
//
// Client credentials are sent in the form body of the token request.
type Authenticator struct {
	config *oauth2.Config
}

// NewAuthenticator creates an [Authenticator] from the spotify section of the configuration.
func NewAuthenticator(cfg shared.SpotifyConfig) *Authenticator {
	authURL, tokenURL := cfg.AuthURL, cfg.TokenURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI(),
			Scopes:       DefaultScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// AuthURL builds the authorize URL the user is redirected to.
//
// clientID overrides the configured client id when set. scopes is a space or comma separated list;
// an empty list requests [DefaultScopes]. state is echoed back to the callback untouched.
func (a *Authenticator) AuthURL(clientID, scopes, state string) string {
	conf := *a.config
	if clientID != "" {
		conf.ClientID = clientID
	}

	if requested := splitScopes(scopes); len(requested) > 0 {
		conf.Scopes = requested
	}

	return conf.AuthCodeURL(state)
}

// Exchange trades code for a bearer token.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}
	return token, nil
}

func splitScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '+'
	})
}

package oauth2client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// RefreshEndpoint exchanges a refresh token for a new access token.
//
// The returned token must carry a non-empty AccessToken. RefreshToken is set
// only by servers that rotate refresh tokens.
type RefreshEndpoint interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// RefreshEndpointFunc adapts a function to RefreshEndpoint.
type RefreshEndpointFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

// Refresh calls f.
func (f RefreshEndpointFunc) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return f(ctx, refreshToken)
}

// OAuth2RefreshEndpoint refreshes tokens with the standard OAuth2
// refresh_token grant against an authorization server's token endpoint.
type OAuth2RefreshEndpoint struct {
	config *oauth2.Config
}

// NewOAuth2RefreshEndpoint creates a RefreshEndpoint for a standard OAuth2 token endpoint.
//
// Parameters:
//   - tokenURL: OAuth2 token endpoint (e.g., "https://auth.example.com/oauth/v2/token")
//   - clientID: OAuth2 client identifier
//   - clientSecret: OAuth2 client secret (may be empty for public clients)
//   - scopes: Space-separated list of OAuth2 scopes (e.g., "openid profile email")
func NewOAuth2RefreshEndpoint(tokenURL, clientID, clientSecret, scopes string) *OAuth2RefreshEndpoint {
	return &OAuth2RefreshEndpoint{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
			// Split scopes by whitespace to avoid sending a single concatenated scope.
			Scopes: strings.Fields(scopes),
		},
	}
}

// Refresh implements RefreshEndpoint. An *http.Client stored in ctx under
// oauth2.HTTPClient is used for the token request.
func (e *OAuth2RefreshEndpoint) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	// An already-expired token forces the token source to use the refresh grant.
	src := e.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, fmt.Errorf("oauth2: refresh token rejected: %w", err)
		}
		return nil, fmt.Errorf("oauth2: failed to refresh token: %w", err)
	}
	return token, nil
}

package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultRefreshPath is the GymView refresh endpoint, relative to the base URL.
const DefaultRefreshPath = "/auth/refresh"

// RefreshEndpoint exchanges a refresh token at the GymView refresh endpoint:
// POST {"refreshToken": "..."} answered by {"access_token": "..."}. The
// {"success": true, "data": {...}} envelope used by other auth endpoints is
// accepted too, as is a rotated "refresh_token".
//
// It talks to the Transport directly so refresh requests never pass through
// the authenticated Client.
type RefreshEndpoint struct {
	transport Transport
	path      string
}

// NewRefreshEndpoint creates a RefreshEndpoint. An empty path selects DefaultRefreshPath.
func NewRefreshEndpoint(transport Transport, path string) *RefreshEndpoint {
	if path == "" {
		path = DefaultRefreshPath
	}
	return &RefreshEndpoint{transport: transport, path: path}
}

type refreshTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	refreshTokens
	Data *refreshTokens `json:"data"`
}

// Refresh implements oauth2client.RefreshEndpoint.
func (e *RefreshEndpoint) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("httpclient: marshal refresh request: %w", err)
	}

	req := &Request{
		Method: http.MethodPost,
		Path:   e.path,
		Header: http.Header{HeaderRequestID: []string{uuid.NewString()}},
		Body:   body,
	}

	resp, err := e.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(req.Method, req.Path, resp)
	}

	var payload refreshResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &DecodeError{Method: req.Method, Path: req.Path, Body: resp.Body, Err: err}
	}

	tokens := payload.refreshTokens
	if tokens.AccessToken == "" && payload.Data != nil {
		tokens = *payload.Data
	}
	if tokens.AccessToken == "" {
		return nil, &DecodeError{Method: req.Method, Path: req.Path, Body: resp.Body, Err: errors.New("response has no access_token")}
	}

	return &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

package gymapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ironfitness/go-gymview/authz"
	"github.com/ironfitness/go-gymview/httpclient"
	"github.com/ironfitness/go-gymview/tokenstore"
)

// AuthService handles sign-in, sign-out and account recovery.
type AuthService struct {
	c *Client
}

// Login signs in and stores the access token, refresh token and user in one
// SetMany call. Rejected credentials yield an error matching ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, creds LoginCredentials) (*AuthResponse, error) {
	// A 401 here means bad credentials, not an expired session.
	data, err := doEnvelope[AuthResponse](ctx, s.c, http.MethodPost, "/auth/login", creds, httpclient.WithoutRefresh())
	if err != nil {
		var statusErr *httpclient.StatusError
		var apiErr *APIError
		if (errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized) || errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("gymapi: login: %w", err)
	}
	if data.AccessToken == "" {
		return nil, errors.New("gymapi: login: response has no access token")
	}

	user, err := json.Marshal(data.User)
	if err != nil {
		return nil, fmt.Errorf("gymapi: login: encode user: %w", err)
	}
	entries := map[string]string{
		tokenstore.KeyAccessToken:  data.AccessToken,
		tokenstore.KeyRefreshToken: data.RefreshToken,
		tokenstore.KeyUser:         string(user),
	}
	if err := s.c.store.SetMany(ctx, entries); err != nil {
		return nil, fmt.Errorf("gymapi: login: save session: %w", err)
	}
	return data, nil
}

// Register creates a user account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Usuario, error) {
	return doEnvelope[Usuario](ctx, s.c, http.MethodPost, "/auth/register", in)
}

// Logout notifies the API and clears the stored session. The session is
// cleared even if the API call fails; only a failure to clear is returned.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.c.http.Post(ctx, "/auth/logout", nil, nil, httpclient.WithoutRefresh()); err != nil {
		s.c.logf("gymapi: logout request failed: %v", err)
	}
	if err := s.c.store.RemoveMany(ctx, tokenstore.CredentialKeys...); err != nil {
		return fmt.Errorf("gymapi: logout: clear session: %w", err)
	}
	return nil
}

// VerifyCode checks a verification code sent to the user.
func (s *AuthService) VerifyCode(ctx context.Context, idUsuario int, codigo string) (bool, error) {
	body := map[string]any{"id_usuario": idUsuario, "codigo": codigo}
	return doBool(ctx, s.c, http.MethodPost, "/auth/verify-code", body)
}

// ChangePassword changes the password of a signed-in user.
func (s *AuthService) ChangePassword(ctx context.Context, idUsuario int, actual, nueva string) (bool, error) {
	body := map[string]string{"contrasenaActual": actual, "contrasenaNueva": nueva}
	return doBool(ctx, s.c, http.MethodPut, idPath("/usuarios/%d/password", idUsuario), body)
}

// RequestPasswordReset asks the API to send a reset code to email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (bool, error) {
	return doBool(ctx, s.c, http.MethodPost, "/auth/request-reset", map[string]string{"email": email})
}

// ResetPassword sets a new password using a reset code.
func (s *AuthService) ResetPassword(ctx context.Context, codigo, nueva string) (bool, error) {
	body := map[string]string{"codigo": codigo, "contrasenaNueva": nueva}
	return doBool(ctx, s.c, http.MethodPost, "/auth/reset-password", body)
}

// IsAuthenticated reports whether an access token is stored.
func (s *AuthService) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.AccessToken(ctx)
	return token != "", err
}

// AccessToken returns the stored access token, or "" when signed out.
func (s *AuthService) AccessToken(ctx context.Context) (string, error) {
	token, _, err := s.c.store.Get(ctx, tokenstore.KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("gymapi: read access token: %w", err)
	}
	return token, nil
}

// CurrentUser returns the stored user, or nil when signed out.
func (s *AuthService) CurrentUser(ctx context.Context) (*SessionUser, error) {
	raw, ok, err := s.c.store.Get(ctx, tokenstore.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("gymapi: read user: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var user SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("gymapi: decode stored user: %w", err)
	}
	return &user, nil
}

// Authorize reports whether the signed-in user's role may use feature. The
// error matches authz.ErrPermissionDenied when it may not, including when
// nobody is signed in.
func (s *AuthService) Authorize(ctx context.Context, feature authz.Feature) error {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return err
	}
	var role string
	if user != nil {
		role = string(user.Rol)
	}
	return s.c.policy.Authorize(role, feature)
}

// Features lists the features available to the signed-in user.
func (s *AuthService) Features(ctx context.Context) ([]authz.Feature, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil, err
	}
	return s.c.policy.Features(string(user.Rol)), nil
}

func doBool(ctx context.Context, c *Client, method, path string, body any) (bool, error) {
	ok, err := doEnvelope[bool](ctx, c, method, path, body)
	if err != nil {
		return false, err
	}
	return *ok, nil
}

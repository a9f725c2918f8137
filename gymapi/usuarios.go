package gymapi

import (
	"context"
	"net/http"
	"net/url"
)

// UsuariosService manages user accounts.
type UsuariosService struct {
	c *Client
}

// List returns every user.
func (s *UsuariosService) List(ctx context.Context) ([]Usuario, error) {
	return doList[Usuario](ctx, s.c, http.MethodGet, "/usuarios", nil)
}

// Get returns one user.
func (s *UsuariosService) Get(ctx context.Context, id int) (*Usuario, error) {
	return doRequest[Usuario](ctx, s.c, http.MethodGet, idPath("/usuarios/%d", id), nil)
}

// ListByRole returns the users with role rol.
func (s *UsuariosService) ListByRole(ctx context.Context, rol Role) ([]Usuario, error) {
	return doList[Usuario](ctx, s.c, http.MethodGet, "/usuarios/role/"+url.PathEscape(string(rol)), nil)
}

// Create creates a user.
func (s *UsuariosService) Create(ctx context.Context, in RegisterInput) (*Usuario, error) {
	return doRequest[Usuario](ctx, s.c, http.MethodPost, "/usuarios", in)
}

// Update changes the non-nil fields of a user.
func (s *UsuariosService) Update(ctx context.Context, id int, in UsuarioUpdate) (*Usuario, error) {
	return doRequest[Usuario](ctx, s.c, http.MethodPut, idPath("/usuarios/%d", id), in)
}

// Delete deletes a user.
func (s *UsuariosService) Delete(ctx context.Context, id int) error {
	return s.c.http.Delete(ctx, idPath("/usuarios/%d", id), nil)
}

package gymapi

import (
	"context"
	"net/http"
)

// ClientesService manages gym members.
type ClientesService struct {
	c *Client
}

// List returns every client.
func (s *ClientesService) List(ctx context.Context) ([]Cliente, error) {
	return doList[Cliente](ctx, s.c, http.MethodGet, "/clientes", nil)
}

// ListPage returns one page of clients.
func (s *ClientesService) ListPage(ctx context.Context, opts ListOptions) (*PaginatedResponse[Cliente], error) {
	return doRequest[PaginatedResponse[Cliente]](ctx, s.c, http.MethodGet, withQuery("/clientes", pageQuery(opts)), nil)
}

// Get returns one client.
func (s *ClientesService) Get(ctx context.Context, id int) (*Cliente, error) {
	return doRequest[Cliente](ctx, s.c, http.MethodGet, idPath("/clientes/%d", id), nil)
}

// Create registers a client together with its user account.
func (s *ClientesService) Create(ctx context.Context, in ClienteInput) (*Cliente, error) {
	return doRequest[Cliente](ctx, s.c, http.MethodPost, "/clientes", in)
}

// Update replaces a client's data.
func (s *ClientesService) Update(ctx context.Context, id int, in ClienteInput) (*Cliente, error) {
	return doRequest[Cliente](ctx, s.c, http.MethodPut, idPath("/clientes/%d", id), in)
}

// Delete deletes a client.
func (s *ClientesService) Delete(ctx context.Context, id int) error {
	return s.c.http.Delete(ctx, idPath("/clientes/%d", id), nil)
}

// Membresias returns a client's memberships.
func (s *ClientesService) Membresias(ctx context.Context, id int) ([]Membresia, error) {
	return doList[Membresia](ctx, s.c, http.MethodGet, idPath("/clientes/%d/membresias", id), nil)
}

// Rutinas returns a client's routines.
func (s *ClientesService) Rutinas(ctx context.Context, id int) ([]Rutina, error) {
	return doList[Rutina](ctx, s.c, http.MethodGet, idPath("/clientes/%d/rutinas", id), nil)
}

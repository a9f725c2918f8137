package gymapi

import (
	"context"
	"net/http"
)

// EntrenadoresService manages trainers.
type EntrenadoresService struct {
	c *Client
}

// List returns every trainer.
func (s *EntrenadoresService) List(ctx context.Context) ([]Entrenador, error) {
	return doList[Entrenador](ctx, s.c, http.MethodGet, "/entrenadores", nil)
}

// Get returns one trainer.
func (s *EntrenadoresService) Get(ctx context.Context, id int) (*Entrenador, error) {
	return doRequest[Entrenador](ctx, s.c, http.MethodGet, idPath("/entrenadores/%d", id), nil)
}

// Create registers a trainer together with its user account.
func (s *EntrenadoresService) Create(ctx context.Context, in EntrenadorInput) (*Entrenador, error) {
	return doRequest[Entrenador](ctx, s.c, http.MethodPost, "/entrenadores", in)
}

// Update replaces a trainer's data.
func (s *EntrenadoresService) Update(ctx context.Context, id int, in EntrenadorInput) (*Entrenador, error) {
	return doRequest[Entrenador](ctx, s.c, http.MethodPut, idPath("/entrenadores/%d", id), in)
}

// Delete deletes a trainer.
func (s *EntrenadoresService) Delete(ctx context.Context, id int) error {
	return s.c.http.Delete(ctx, idPath("/entrenadores/%d", id), nil)
}

// Clientes returns the clients assigned to a trainer.
func (s *EntrenadoresService) Clientes(ctx context.Context, id int) ([]Cliente, error) {
	return doList[Cliente](ctx, s.c, http.MethodGet, idPath("/entrenadores/%d/clientes", id), nil)
}

// Rutinas returns the routines written by a trainer.
func (s *EntrenadoresService) Rutinas(ctx context.Context, id int) ([]Rutina, error) {
	return doList[Rutina](ctx, s.c, http.MethodGet, idPath("/entrenadores/%d/rutinas", id), nil)
}

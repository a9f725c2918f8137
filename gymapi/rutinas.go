package gymapi

import (
	"context"
	"net/http"
)

// RutinasService manages training routines.
type RutinasService struct {
	c *Client
}

// List returns every routine.
func (s *RutinasService) List(ctx context.Context) ([]Rutina, error) {
	return doList[Rutina](ctx, s.c, http.MethodGet, "/rutinas", nil)
}

// Get returns one routine.
func (s *RutinasService) Get(ctx context.Context, id int) (*Rutina, error) {
	return doRequest[Rutina](ctx, s.c, http.MethodGet, idPath("/rutinas/%d", id), nil)
}

// Create creates a routine with its exercises.
func (s *RutinasService) Create(ctx context.Context, in RutinaInput) (*Rutina, error) {
	return doRequest[Rutina](ctx, s.c, http.MethodPost, "/rutinas", in)
}

// Update replaces a routine.
func (s *RutinasService) Update(ctx context.Context, id int, in RutinaInput) (*Rutina, error) {
	return doRequest[Rutina](ctx, s.c, http.MethodPut, idPath("/rutinas/%d", id), in)
}

// Delete deletes a routine.
func (s *RutinasService) Delete(ctx context.Context, id int) error {
	return s.c.http.Delete(ctx, idPath("/rutinas/%d", id), nil)
}

// Ejercicios returns the exercises of a routine.
func (s *RutinasService) Ejercicios(ctx context.Context, id int) ([]DetalleRutina, error) {
	return doList[DetalleRutina](ctx, s.c, http.MethodGet, idPath("/rutinas/%d/ejercicios", id), nil)
}

// AddEjercicio appends an exercise to a routine.
func (s *RutinasService) AddEjercicio(ctx context.Context, id int, in RutinaEjercicioInput) (*DetalleRutina, error) {
	return doRequest[DetalleRutina](ctx, s.c, http.MethodPost, idPath("/rutinas/%d/ejercicios", id), in)
}

package gymapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ReportesService fetches aggregate reports. Report bodies are returned raw
// since their shape depends on the report and the server version.
type ReportesService struct {
	c *Client
}

// Asistencia returns the attendance report.
func (s *ReportesService) Asistencia(ctx context.Context, r ReportRange) (json.RawMessage, error) {
	return s.get(ctx, "/reportes/asistencia", r)
}

// Ingresos returns the revenue report.
func (s *ReportesService) Ingresos(ctx context.Context, r ReportRange) (json.RawMessage, error) {
	return s.get(ctx, "/reportes/ingresos", r)
}

// Membresias returns the memberships report.
func (s *ReportesService) Membresias(ctx context.Context, r ReportRange) (json.RawMessage, error) {
	return s.get(ctx, "/reportes/membresias", r)
}

// Entrenadores returns the trainers report.
func (s *ReportesService) Entrenadores(ctx context.Context, r ReportRange) (json.RawMessage, error) {
	return s.get(ctx, "/reportes/entrenadores", r)
}

func (s *ReportesService) get(ctx context.Context, path string, r ReportRange) (json.RawMessage, error) {
	out, err := doRequest[json.RawMessage](ctx, s.c, http.MethodGet, withQuery(path, r.query()), nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (r ReportRange) query() url.Values {
	q := url.Values{}
	if !r.Desde.IsZero() {
		q.Set("desde", r.Desde.Format("2006-01-02"))
	}
	if !r.Hasta.IsZero() {
		q.Set("hasta", r.Hasta.Format("2006-01-02"))
	}
	return q
}

package gymapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AsistenciasService records and queries check-ins.
type AsistenciasService struct {
	c *Client
}

// List returns every check-in.
func (s *AsistenciasService) List(ctx context.Context) ([]Asistencia, error) {
	return doList[Asistencia](ctx, s.c, http.MethodGet, "/asistencias", nil)
}

// Register records a check-in without a QR code.
func (s *AsistenciasService) Register(ctx context.Context, in AsistenciaInput) (*Asistencia, error) {
	return doRequest[Asistencia](ctx, s.c, http.MethodPost, "/asistencias", in)
}

// ByCliente returns a client's check-ins.
func (s *AsistenciasService) ByCliente(ctx context.Context, idCliente int) ([]Asistencia, error) {
	return doList[Asistencia](ctx, s.c, http.MethodGet, idPath("/asistencias/cliente/%d", idCliente), nil)
}

// Today returns the check-ins of the current day.
func (s *AsistenciasService) Today(ctx context.Context) ([]Asistencia, error) {
	return doList[Asistencia](ctx, s.c, http.MethodGet, "/asistencias/today", nil)
}

// ValidateQR checks a scanned QR code locally and then asks the API to
// register the check-in. Malformed or expired codes are rejected without a request.
func (s *AsistenciasService) ValidateQR(ctx context.Context, qr QRData) (*QRValidationResponse, error) {
	if err := qr.Check(time.Now()); err != nil {
		return nil, err
	}
	return doRequest[QRValidationResponse](ctx, s.c, http.MethodPost, "/asistencias/validate-qr", qr)
}

// ParseQR decodes the JSON payload of a check-in QR code and checks it against now.
func ParseQR(payload string, now time.Time) (*QRData, error) {
	var qr QRData
	if err := json.Unmarshal([]byte(payload), &qr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQR, err)
	}
	if err := qr.Check(now); err != nil {
		return nil, err
	}
	return &qr, nil
}

// Check reports ErrInvalidQR if required fields are missing and ErrQRExpired
// if now is past the expiration. A zero Expiracion never expires.
func (q QRData) Check(now time.Time) error {
	if q.IDCliente == 0 || q.Codigo == "" || q.Timestamp == 0 {
		return ErrInvalidQR
	}
	if q.Expiracion != 0 && now.UnixMilli() > q.Expiracion {
		return ErrQRExpired
	}
	return nil
}

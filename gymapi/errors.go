package gymapi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials is returned by Login when the API rejects the credentials.
	ErrInvalidCredentials = errors.New("gymapi: invalid credentials")

	// ErrInvalidQR is returned for QR payloads missing required fields.
	ErrInvalidQR = errors.New("gymapi: invalid QR code")

	// ErrQRExpired is returned for QR payloads past their expiration.
	ErrQRExpired = errors.New("gymapi: QR code expired")
)

// APIError is returned when the API answers 2xx with "success": false.
type APIError struct {
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request was not successful"
	}
	if len(e.Errors) > 0 {
		return fmt.Sprintf("gymapi: %s (%s)", msg, strings.Join(e.Errors, "; "))
	}
	return "gymapi: " + msg
}

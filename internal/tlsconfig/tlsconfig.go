// Package tlsconfig loads the client TLS settings shared by the HTTP and gRPC
// builders.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// Files names the PEM files and overrides of a client TLS configuration.
// The zero value yields TLS 1.2+ with the system roots.
type Files struct {
	// CAFile verifies the server instead of the system roots when set.
	CAFile string
	// CertFile and KeyFile enable mTLS and must be set together.
	CertFile string
	KeyFile  string
	// ServerName overrides the name checked against the server certificate.
	ServerName string
	// SkipVerify disables certificate verification. Local development only.
	SkipVerify bool
}

// ErrHalfKeyPair is returned when only one of CertFile and KeyFile is set.
var ErrHalfKeyPair = errors.New("both TLS cert and key files must be provided for mTLS")

// Load reads the files and returns the resulting *tls.Config.
func (f Files) Load() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         f.ServerName,
		InsecureSkipVerify: f.SkipVerify, // #nosec G402
	}

	if f.CAFile != "" {
		pool, err := loadPool(f.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	switch {
	case f.CertFile != "" && f.KeyFile != "":
		cert, err := tls.LoadX509KeyPair(f.CertFile, f.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	case f.CertFile != "" || f.KeyFile != "":
		return nil, ErrHalfKeyPair
	}

	return cfg, nil
}

func loadPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("parse CA certificate %s: no PEM certificates found", path)
	}
	return pool, nil
}

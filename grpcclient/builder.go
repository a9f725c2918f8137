package grpcclient

import (
	"errors"
	"fmt"

	"github.com/ironfitness/go-gymview/internal/tlsconfig"
	"github.com/ironfitness/go-gymview/oauth2client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Builder provides a fluent interface for constructing gRPC client connections
// that carry the GymView session token and support TLS/mTLS.
type Builder struct {
	address string

	// Authentication
	refresher *oauth2client.Refresher

	// Transport security. A nil tls with plaintext unset means TLS with
	// the system roots.
	tls       *tlsconfig.Files
	plaintext bool

	// Additional dial options
	dialOpts []grpc.DialOption
}

// NewBuilder creates a new gRPC client builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithAddress sets the server address (e.g., "gym.example.com:9090").
func (b *Builder) WithAddress(address string) *Builder {
	b.address = address
	return b
}

// WithRefresher attaches the session token to every call and refreshes it
// on codes.Unauthenticated. Share the refresher with the httpclient.Client so
// both transports use the same session and the same in-flight refresh.
func (b *Builder) WithRefresher(r *oauth2client.Refresher) *Builder {
	b.refresher = r
	return b
}

// WithTLS enables TLS for the connection.
//
// Parameters:
//   - caFile: Path to CA certificate for server verification (optional, uses system roots if empty)
//   - certFile: Path to client certificate for mTLS (optional, must be paired with keyFile)
//   - keyFile: Path to client private key for mTLS (optional, must be paired with certFile)
//   - serverName: Expected server name for TLS verification (optional, overrides SNI)
func (b *Builder) WithTLS(caFile, certFile, keyFile, serverName string) *Builder {
	b.tls = &tlsconfig.Files{
		CAFile:     caFile,
		CertFile:   certFile,
		KeyFile:    keyFile,
		ServerName: serverName,
	}
	return b
}

// WithInsecure uses a plaintext connection. Only for local development
// backends; tokens travel unencrypted.
func (b *Builder) WithInsecure() *Builder {
	b.plaintext = true
	return b
}

// WithDialOptions adds custom gRPC dial options.
// These options are applied after the authentication and TLS options.
func (b *Builder) WithDialOptions(opts ...grpc.DialOption) *Builder {
	b.dialOpts = append(b.dialOpts, opts...)
	return b
}

// Build constructs the gRPC client connection with the configured options.
// The connection is established lazily on the first call.
func (b *Builder) Build() (*grpc.ClientConn, error) {
	if b.address == "" {
		return nil, errors.New("grpcclient: server address is required")
	}

	creds, err := b.transportCredentials()
	if err != nil {
		return nil, err
	}

	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if b.refresher != nil {
		opts = append(opts,
			grpc.WithUnaryInterceptor(b.refresher.UnaryClientInterceptor()),
			grpc.WithStreamInterceptor(b.refresher.StreamClientInterceptor()),
		)
	}
	opts = append(opts, b.dialOpts...)

	conn, err := grpc.NewClient(b.address, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcclient: dial failed: %w", err)
	}
	return conn, nil
}

// transportCredentials picks plaintext, the configured TLS files, or TLS
// with the system roots, in that order.
func (b *Builder) transportCredentials() (credentials.TransportCredentials, error) {
	if b.plaintext {
		if b.tls != nil {
			return nil, errors.New("grpcclient: WithInsecure and WithTLS are mutually exclusive")
		}
		return insecure.NewCredentials(), nil
	}

	var files tlsconfig.Files
	if b.tls != nil {
		files = *b.tls
	}
	cfg, err := files.Load()
	if err != nil {
		return nil, fmt.Errorf("grpcclient: TLS config failed: %w", err)
	}
	return credentials.NewTLS(cfg), nil
}

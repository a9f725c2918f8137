package httpclient

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/ironfitness/go-gymview/internal/tlsconfig"
	"github.com/ironfitness/go-gymview/oauth2client"
	"github.com/ironfitness/go-gymview/tokenstore"
)

// Builder provides a fluent interface for constructing an authenticated
// GymView Client with optional retries and TLS/mTLS support.
type Builder struct {
	baseURL string

	// Authentication
	store           tokenstore.Store
	refresher       *oauth2client.Refresher
	refreshEndpoint oauth2client.RefreshEndpoint
	refreshPath     string
	refresherOpts   []oauth2client.Option

	// TLS configuration
	tlsEnabled    bool
	tlsCAFile     string
	tlsCertFile   string
	tlsKeyFile    string
	tlsSkipVerify bool

	// HTTP configuration
	timeout         time.Duration
	baseTransport   http.RoundTripper
	followRedirects bool
	headers         map[string]string
	maxRetries      int
	retryDelay      time.Duration

	logger Logger
}

// NewBuilder creates a new client builder for the API at baseURL.
func NewBuilder(baseURL string) *Builder {
	return &Builder{
		baseURL:         baseURL,
		refreshPath:     DefaultRefreshPath,
		timeout:         DefaultTimeout,
		followRedirects: true,
		headers:         make(map[string]string),
	}
}

// WithTokenStore sets where credentials are kept. Defaults to a new MemoryStore.
func (b *Builder) WithTokenStore(store tokenstore.Store) *Builder {
	b.store = store
	return b
}

// WithRefresher uses an existing refresher, for example one shared with a
// gRPC connection. Its store takes precedence over WithTokenStore.
func (b *Builder) WithRefresher(r *oauth2client.Refresher) *Builder {
	b.refresher = r
	return b
}

// WithRefreshEndpoint replaces the GymView refresh endpoint, e.g. with an
// oauth2client.OAuth2RefreshEndpoint for a standard OAuth2 server.
func (b *Builder) WithRefreshEndpoint(endpoint oauth2client.RefreshEndpoint) *Builder {
	b.refreshEndpoint = endpoint
	return b
}

// WithRefreshPath changes the path of the GymView refresh endpoint.
// Default is "/auth/refresh".
func (b *Builder) WithRefreshPath(path string) *Builder {
	b.refreshPath = path
	return b
}

// WithRefresherOptions passes options to the refresher created by Build.
func (b *Builder) WithRefresherOptions(opts ...oauth2client.Option) *Builder {
	b.refresherOpts = append(b.refresherOpts, opts...)
	return b
}

// WithTLS enables TLS for the connection.
//
// Parameters:
//   - caFile: Path to CA certificate for server verification (optional, uses system roots if empty)
//   - certFile: Path to client certificate for mTLS (optional, must be paired with keyFile)
//   - keyFile: Path to client private key for mTLS (optional, must be paired with certFile)
func (b *Builder) WithTLS(caFile, certFile, keyFile string) *Builder {
	b.tlsEnabled = true
	b.tlsCAFile = caFile
	b.tlsCertFile = certFile
	b.tlsKeyFile = keyFile
	return b
}

// WithInsecureSkipVerify disables TLS certificate verification (NOT RECOMMENDED for production).
func (b *Builder) WithInsecureSkipVerify() *Builder {
	b.tlsSkipVerify = true
	return b
}

// WithTimeout sets the default request timeout. Default is 10 seconds.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithBaseTransport sets a custom base transport.
func (b *Builder) WithBaseTransport(transport http.RoundTripper) *Builder {
	b.baseTransport = transport
	return b
}

// WithoutRedirects disables automatic redirect following.
func (b *Builder) WithoutRedirects() *Builder {
	b.followRedirects = false
	return b
}

// WithHeader adds a header sent with every request.
func (b *Builder) WithHeader(key, value string) *Builder {
	b.headers[key] = value
	return b
}

// WithRetry retries network errors and 5xx answers up to maxRetries times,
// starting with delay between attempts. Disabled by default.
func (b *Builder) WithRetry(maxRetries int, delay time.Duration) *Builder {
	b.maxRetries = maxRetries
	b.retryDelay = delay
	return b
}

// WithLogger sets the logger used by the client and the refresher it creates.
func (b *Builder) WithLogger(logger Logger) *Builder {
	b.logger = logger
	return b
}

// Build constructs the Client.
func (b *Builder) Build() (*Client, error) {
	hc, err := b.BuildHTTPClient()
	if err != nil {
		return nil, err
	}

	opts := []TransportOption{WithDefaultTimeout(b.timeout)}
	for k, v := range b.headers {
		opts = append(opts, WithDefaultHeader(k, v))
	}
	if b.maxRetries > 0 {
		opts = append(opts, WithRetry(b.maxRetries, b.retryDelay))
	}

	transport, err := NewHTTPTransport(b.baseURL, hc, opts...)
	if err != nil {
		return nil, err
	}

	refresher := b.refresher
	if refresher == nil {
		store := b.store
		if store == nil {
			store = tokenstore.NewMemoryStore()
		}
		endpoint := b.refreshEndpoint
		if endpoint == nil {
			endpoint = NewRefreshEndpoint(transport, b.refreshPath)
		}

		var ropts []oauth2client.Option
		if b.logger != nil {
			ropts = append(ropts, oauth2client.WithLogger(b.logger))
		}
		ropts = append(ropts, b.refresherOpts...)
		refresher = oauth2client.NewRefresher(store, endpoint, ropts...)
	}

	var copts []ClientOption
	if b.logger != nil {
		copts = append(copts, WithLogger(b.logger))
	}
	return NewClient(transport, refresher, copts...), nil
}

// BuildHTTPClient constructs the underlying *http.Client with the configured
// TLS and redirect settings. Timeouts are applied per request by the transport.
func (b *Builder) BuildHTTPClient() (*http.Client, error) {
	transport := b.baseTransport
	if transport == nil {
		if httpTransport, ok := http.DefaultTransport.(*http.Transport); ok {
			httpTransport = httpTransport.Clone()

			if b.tlsEnabled || b.tlsSkipVerify {
				tlsConfig, err := b.buildTLSConfig()
				if err != nil {
					return nil, fmt.Errorf("httpclient: TLS config failed: %w", err)
				}
				httpTransport.TLSClientConfig = tlsConfig
			} else {
				httpTransport.TLSClientConfig = &tls.Config{
					MinVersion: tls.VersionTLS12,
				}
			}

			transport = httpTransport
		} else {
			// Whatever default transport is configured (e.g. a test stub).
			transport = http.DefaultTransport
		}
	}

	client := &http.Client{Transport: transport}
	if !b.followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client, nil
}

// buildTLSConfig constructs the TLS configuration for the HTTP client.
func (b *Builder) buildTLSConfig() (*tls.Config, error) {
	return tlsconfig.Files{
		CAFile:     b.tlsCAFile,
		CertFile:   b.tlsCertFile,
		KeyFile:    b.tlsKeyFile,
		SkipVerify: b.tlsSkipVerify,
	}.Load()
}

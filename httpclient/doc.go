// Package httpclient is the authenticated HTTP client for the GymView REST API.
//
// A Client attaches the stored access token to every request. When the API
// answers 401, the request is handed to an oauth2client.Refresher: the first
// such request triggers a single POST /auth/refresh, every other request that
// fails while it is in flight waits in a FIFO queue, and all of them are
// replayed with the new token once it arrives. If the refresh fails the stored
// credentials are cleared and every waiting request fails with ErrRefreshFailed.
//
// # Features
//
//   - Get/Post/Put/Patch/Delete with JSON bodies and typed decoding
//   - Single-flight token refresh shared by concurrent requests
//   - Typed errors: TransportError, StatusError, DecodeError
//   - Optional retries of network errors and 5xx answers via go-httpretry
//   - TLS 1.2+ by default, with custom CA/mTLS and optional InsecureSkipVerify
//
// # Quick Start
//
//	store, err := tokenstore.NewFileStore("/home/ana/.config/gymview/tokens.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := httpclient.NewBuilder("http://localhost:8080/api").
//	    WithTokenStore(store).
//	    WithRetry(httpclient.DefaultMaxRetries, httpclient.DefaultRetryDelay).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var cliente gymapi.Cliente
//	err = client.Get(ctx, "/clientes/1", &cliente)
//
// # Errors
//
// Transport failures are *TransportError. Non-2xx answers are *StatusError; a
// final 401 matches ErrAuthorizationExpired. Errors from a failed refresh
// match ErrRefreshFailed and wrap the cause.
//
// Client is safe for concurrent use.
package httpclient

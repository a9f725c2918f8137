// Package testutil provides test helpers for go-gymview packages.
//
// # Utilities
//
//   - FakeBackend: an http.Handler imitating the GymView API's login, refresh
//     and bearer-protected routes, with hooks to hold a refresh in flight
//   - NewLocalHTTPServer: start httptest server bound to 127.0.0.1
//   - MockOAuth2Server and StaticJSONResponse: stub OAuth2 token endpoints and capture requests
//   - RoundTripFunc: inline http.RoundTripper implementations
//   - WriteTestCACert / WriteTestCertAndKey: generate temporary CA and leaf certificates for tests
//
// MockOAuth2Server swaps http.DefaultTransport and http.DefaultClient and restores them via tb.Cleanup.
package testutil

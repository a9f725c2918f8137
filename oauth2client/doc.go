// Package oauth2client coordinates bearer-token refreshes for GymView API clients.
//
// A Refresher owns the refresh protocol shared by every client that uses the
// same token store: when requests are rejected as unauthorized, exactly one
// refresh call is made, the requests that were waiting are replayed once with
// the new access token (started in the order they arrived, then running
// concurrently), and a failed refresh clears
// the stored credentials and fails every waiting request with ErrRefreshFailed.
//
// # Features
//
//   - Single-flight refresh with an explicit Idle/Refreshing state
//   - FIFO replay of waiting requests, bounded by WithMaxPending
//   - Per-waiter cancellation through the request context
//   - Pluggable RefreshEndpoint, including the standard OAuth2 refresh grant
//   - gRPC unary and stream client interceptors that inject Bearer tokens
//   - Optional logging (WithLogger, WithLoggingEnabled) and a session-expired hook
//
// # Quick Start
//
//	store := tokenstore.NewMemoryStore()
//	endpoint := oauth2client.NewOAuth2RefreshEndpoint(
//	    "https://auth.example.com/oauth/v2/token",
//	    "client-id",
//	    "",
//	    "openid profile",
//	)
//	refresher := oauth2client.NewRefresher(store, endpoint,
//	    oauth2client.WithLoggingEnabled(),
//	    oauth2client.WithSessionExpiredHandler(func(err error) {
//	        showLogin()
//	    }),
//	)
//
//	conn, err := grpc.NewClient(
//	    "server:9090",
//	    grpc.WithUnaryInterceptor(refresher.UnaryClientInterceptor()),
//	    grpc.WithStreamInterceptor(refresher.StreamClientInterceptor()),
//	)
//
// HTTP clients use the Refresher through httpclient.Client.
//
// # Notes
//
//   - Token values are never logged.
//   - Refresher is safe for concurrent use.
package oauth2client

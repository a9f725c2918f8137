// Package grpcclient builds gRPC connections to GymView services that share
// the session of the HTTP client.
//
// Calls carry the stored access token as bearer metadata. A unary call that
// fails with codes.Unauthenticated joins the same single-flight refresh the
// HTTP client uses and is retried once with the new token.
//
// # Quick Start
//
//	store, _ := tokenstore.NewFileStore(path, key)
//	api, _ := httpclient.NewBuilder(baseURL).WithTokenStore(store).Build()
//
//	conn, err := grpcclient.NewBuilder().
//	    WithAddress("gym.example.com:9090").
//	    WithRefresher(api.Refresher()).
//	    WithTLS("/path/to/ca.crt", "", "", "gym.example.com").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
// # TLS Behavior
//
// TLS is enabled by default with system CAs and TLS 1.2 minimum. WithTLS allows supplying a custom
// root CA and optional client cert/key for mTLS; both cert and key must be provided together.
// WithInsecure switches to plaintext for local development backends.
package grpcclient

// Package tokenstore persists the credentials of a GymView session.
//
// A Store keeps opaque string values under well-known keys (KeyAccessToken,
// KeyRefreshToken, KeyUser). MemoryStore is suitable for tests and short-lived
// processes; FileStore writes a single file that survives restarts and can be
// encrypted at rest.
//
// # Quick Start
//
//	store, err := tokenstore.NewFileStore(
//	    "/home/me/.config/gymview/session.json",
//	    tokenstore.WithEncryptionSecret([]byte(os.Getenv("GYMVIEW_STORE_SECRET"))),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = store.SetMany(ctx, map[string]string{
//	    tokenstore.KeyAccessToken:  access,
//	    tokenstore.KeyRefreshToken: refresh,
//	})
//
// All stores are safe for concurrent use.
package tokenstore

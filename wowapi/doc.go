// Package wowapi provides a client for the regional World of Warcraft
// game-data API.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Endpoint catalog: a static table mapping endpoint names to URL templates
//   - Token manager: OAuth2 client-credentials exchange with lazy refresh
//   - Request executor: direct GETs returning JSON or raw bytes
//   - Search executor: single-page searches, with concurrent hydration of
//     item search results
//   - Retry policy: a bounded, generic retry loop shared by every call site
//
// # Usage
//
// Create a client for a region with battle.net API credentials:
//
//	creds, err := wowapi.CredentialsFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := wowapi.New(ctx, wowapi.RegionUS, creds, zerolog.New(os.Stderr))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	auctions, err := client.Auctions(ctx, 4)
//
// Every JSON response is a Response carrying the server's Date header under
// the "Date" key.
//
// # Error Handling
//
// Connection failures and non-2xx responses are retried immediately, without
// backoff, up to the call site's budget; once the budget is spent the call
// returns an *ExhaustedError wrapping the last failure. A *FormatError (unknown
// endpoint, missing path parameter) is returned at once and never retried.
//
// # Limitations
//
// Responses are not cached and requests are not rate limited. A token without
// an advertised expiry is used for the client's lifetime; recreate the client
// to force a new one.
package wowapi

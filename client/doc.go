// Package client provides a single configurable connection to a JSON
// API, built on [net/http].
//
// # Building a Connection
//
// Use [Build] to create a [Connection] with functional options:
//
//	conn, err := client.Build(
//		client.WithBasePath("https://api.example.com/v1"),
//		client.WithRedirectURL("https://example.com/login"),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// Every request carries the connection's default headers, which start
// out as Content-Type: application/json and can be changed with
// [Connection.AddHeader] and [Connection.RemoveHeader].
//
// # Making Requests
//
// A verb method returns a [Builder]; a terminal method performs the
// round trip:
//
//	res, err := conn.Get("users/42").JSON(ctx)
//	res, err = conn.Post("users", user).JSON(ctx, client.WithDestination(&created))
//	resp, err := conn.Delete("users/42").Request(ctx)
//
// Responses with a status from 200 to 399 are successes. Anything else
// is a [*ResponseError]; a 401 additionally hands the redirect URL to
// the connection's [Navigator]. A request that never completes is a
// [*TransportError], and a body that is not JSON is a [*DecodeError].
//
// # Cache busting
//
// GET builders created with [WithStaticReload], or on a connection with
// [Connection.SetAlwaysForceStaticReload] enabled, append r=<epoch ms>
// to the query string.
//
// # Files
//
// [Builder.File] returns the body with the filename taken from the
// Content-Disposition header:
//
//	f, err := conn.Get("reports/q3").File(ctx)
//	err = f.Save(ctx, "/tmp/"+f.Filename, client.WithChecksum(sha256.New(), expectedHex))
//	_, err = f.Open(ctx) // shows it in the platform viewer
package client

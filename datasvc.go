// Package datasvc exposes the connection builder.
package datasvc

import (
	"github.com/adamwoolhether/datasvc/client"
)

// New instantiates a *client.Connection with the provided options.
// If not specified, a fresh http.Client over http.DefaultTransport with
// its own cookie jar is used.
func New(opts ...client.Option) (*client.Connection, error) {
	return client.Build(opts...)
}

// Package throttle provides an opt-in [http.RoundTripper] that spaces
// outbound requests with a token bucket from [golang.org/x/time/rate].
//
// A [client.Connection] only installs it when built with
// client.WithThrottle. Each request still produces exactly one round
// trip; the transport merely delays it until a token is available or
// the request context ends, in which case the error surfaces as a
// transport failure.
//
//	rt, err := throttle.New(throttle.Config{RPS: 10, Burst: 5}, nil, http.DefaultTransport)
//	httpClient := &http.Client{Transport: rt}
package throttle

package client

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrBodySize caps the amount of response body buffered into a
// [ResponseError]. This prevents unbounded memory usage when a large
// response arrives with a failing status.
const maxErrBodySize = 1 << 20 // 1MB

// defaultFilename is used when a response carries no usable
// Content-Disposition filename.
const defaultFilename = "File"

// cacheBustParam is the query parameter appended by a forced static reload.
const cacheBustParam = "r"

var (
	// ErrTransport is wrapped by [TransportError].
	ErrTransport = errors.New("transport failure")
	// ErrUnexpectedStatusCode is wrapped by [ResponseError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrUnauthorized is joined with [ErrUnexpectedStatusCode] when the
	// server responds with 401 Unauthorized.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDecode is wrapped by [DecodeError].
	ErrDecode = errors.New("decoding response body")
)

// TransportError is returned when the request could not be completed:
// malformed URL, DNS failure, refused connection, ended context.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseError is returned when the server answered with a status
// code outside of 200-399. Response is the original response with its
// body replaced by the buffered copy in Body, so it can be read again.
type ResponseError struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Response   *http.Response
	Err        error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// DecodeError is returned by [Builder.JSON] when a non-empty body
// is not valid JSON.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("status %d: %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

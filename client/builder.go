package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Descriptor is the immutable description of one request.
type Descriptor struct {
	Method            string
	Path              string
	Body              any
	ForceStaticReload bool
}

// Builder binds a [Descriptor] to the [Connection] that issued it.
// Every terminal call (Request, JSON, File) performs a new round trip,
// so a Builder may be reused and shared between goroutines.
type Builder struct {
	conn *Connection
	desc Descriptor
}

// Descriptor returns the request this builder sends.
func (b *Builder) Descriptor() Descriptor {
	return b.desc
}

// Request sends the request and returns the raw successful response.
// The caller must close the response body.
func (b *Builder) Request(ctx context.Context) (*http.Response, error) {
	var body []byte
	if b.desc.Body != nil {
		var err error
		if body, err = json.Marshal(b.desc.Body); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	return b.conn.dispatch(ctx, b.desc, body)
}

// JSON sends the request and decodes the response body. A response
// declaring a zero Content-Length yields an empty result carrying the
// status text instead; see [JSONResult].
func (b *Builder) JSON(ctx context.Context, optFns ...DecodeOption) (JSONResult, error) {
	var opts decodeOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return JSONResult{}, err
		}
	}

	resp, err := b.Request(ctx)
	if err != nil {
		return JSONResult{}, err
	}
	defer b.conn.closeBody(resp)

	// net/http reports zero for statuses that cannot carry a body.
	if resp.ContentLength == 0 {
		return JSONResult{statusText: statusText(resp), empty: true}, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return JSONResult{}, b.readErr(resp, err)
	}

	var value any
	if err := decode(raw, &value, opts.useJSONNum); err != nil {
		return JSONResult{}, &DecodeError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %w", ErrDecode, err),
		}
	}

	if opts.dest != nil {
		if err := decode(raw, opts.dest, opts.useJSONNum); err != nil {
			return JSONResult{}, &DecodeError{
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("%w: into %T: %w", ErrDecode, opts.dest, err),
			}
		}
	}

	return JSONResult{raw: raw, value: value, useNumber: opts.useJSONNum}, nil
}

// File sends the request and returns the body as a [File] named after
// the Content-Disposition filename, or "File" when there is none.
func (b *Builder) File(ctx context.Context) (*File, error) {
	resp, err := b.Request(ctx)
	if err != nil {
		return nil, err
	}
	defer b.conn.closeBody(resp)

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, b.readErr(resp, err)
	}

	f := File{
		Filename:    filenameFrom(resp.Header.Get("Content-Disposition")),
		ContentType: contentTypeOf(resp.Header.Get("Content-Type"), blob),
		Blob:        blob,
		logger:      b.conn.logger,
		opener:      b.conn.opener,
	}

	return &f, nil
}

// readErr reports a body that failed mid-read as a transport failure.
func (b *Builder) readErr(resp *http.Response, err error) *TransportError {
	url := b.desc.Path
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}

	return &TransportError{
		Method: b.desc.Method,
		URL:    url,
		Err:    fmt.Errorf("%w: reading body: %w", ErrTransport, err),
	}
}

func (c *Connection) closeBody(resp *http.Response) {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		c.logger.Error("failed to discard unused body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}

// decode requires raw to hold exactly one JSON value.
func decode(raw []byte, dest any, useNumber bool) error {
	d := json.NewDecoder(bytes.NewReader(raw))
	if useNumber {
		d.UseNumber()
	}

	if err := d.Decode(dest); err != nil {
		return err
	}
	if d.More() {
		return errors.New("unexpected data after top-level value")
	}

	return nil
}

// JSONResult is the outcome of [Builder.JSON]: either a decoded body or,
// when the response declared a zero Content-Length, the status text.
type JSONResult struct {
	raw        json.RawMessage
	value      any
	statusText string
	empty      bool
	useNumber  bool
}

// Empty reports whether the response had no body to decode.
func (r JSONResult) Empty() bool { return r.empty }

// StatusText returns the response reason phrase of an empty result.
func (r JSONResult) StatusText() string { return r.statusText }

// Value returns the generically decoded body: map[string]any, []any,
// string, float64 (or json.Number), bool or nil. It is nil for an
// empty result.
func (r JSONResult) Value() any { return r.value }

// Raw returns the undecoded body.
func (r JSONResult) Raw() json.RawMessage { return r.raw }

// Decode unmarshals the body into v. It fails on an empty result.
func (r JSONResult) Decode(v any) error {
	if r.empty {
		return fmt.Errorf("%w: empty body (%s)", ErrDecode, r.statusText)
	}

	return decode(r.raw, v, r.useNumber)
}

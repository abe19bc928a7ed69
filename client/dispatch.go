package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// dispatch sends the request described by d and classifies the outcome.
// A 200-399 response is returned untouched and its body belongs to the
// caller. Anything else is returned as a *ResponseError, after handing
// the redirect URL to the navigator on 401. Failures to complete the
// round trip are returned as a *TransportError.
func (c *Connection) dispatch(ctx context.Context, d Descriptor, body []byte) (*http.Response, error) {
	cfg := c.snapshot()

	path := d.Path
	if d.ForceStaticReload {
		path = c.cacheBust(path)
	}
	fullURL := joinPath(cfg.basePath, path)

	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "client.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", d.Method),
		attribute.String("url.full", fullURL),
		attribute.String("request.id", requestID),
	)

	var payload io.Reader
	if body != nil {
		payload = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, fullURL, payload)
	if err != nil {
		return nil, c.transportErr(span, d.Method, fullURL, err)
	}
	for k, v := range cfg.headers {
		req.Header[k] = v
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.Debug("dispatching request", "request_id", requestID, "method", d.Method, "url", fullURL)

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, c.transportErr(span, d.Method, fullURL, err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("request completed", "request_id", requestID, "method", d.Method, "url", fullURL, "status", resp.StatusCode)

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	if resp.StatusCode == http.StatusUnauthorized && cfg.redirectURL != "" {
		c.logger.Info("unauthorized response, redirecting", "request_id", requestID, "url", fullURL, "redirect", cfg.redirectURL)
		c.navigator.Navigate(cfg.redirectURL)
	}

	respErr := c.responseErr(resp)
	span.RecordError(respErr)
	span.SetStatus(codes.Error, resp.Status)

	return nil, respErr
}

// responseErr buffers the failed response body, closes the original
// and re-attaches the buffered copy so the caller can still read it.
func (c *Connection) responseErr(resp *http.Response) *ResponseError {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		c.logger.Error("failed to read error body", "error", err)
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		c.logger.Error("failed to discard unused body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(b))

	sentinel := ErrUnexpectedStatusCode
	if resp.StatusCode == http.StatusUnauthorized {
		sentinel = fmt.Errorf("%w: %w", ErrUnauthorized, ErrUnexpectedStatusCode)
	}

	return &ResponseError{
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		Header:     resp.Header,
		Body:       b,
		Response:   resp,
		Err:        sentinel,
	}
}

func (c *Connection) transportErr(span trace.Span, method, url string, err error) *TransportError {
	span.RecordError(err)
	span.SetStatus(codes.Error, "transport failure")

	return &TransportError{
		Method: method,
		URL:    url,
		Err:    fmt.Errorf("%w: %w", ErrTransport, err),
	}
}

// cacheBust appends r=<epoch millis> to path, as a new query string or
// as an extra parameter when path already carries one.
func (c *Connection) cacheBust(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return path + sep + cacheBustParam + "=" + strconv.FormatInt(c.now().UnixMilli(), 10)
}

// joinPath joins prefix and path with exactly one slash. Trailing
// slashes on prefix and leading slashes on path are dropped first.
// An empty prefix leaves path unchanged.
func joinPath(prefix, path string) string {
	if prefix == "" {
		return path
	}

	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(path, "/")
}

// statusText returns the reason phrase of resp, e.g. "OK" for "200 OK".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}

	return text
}

package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/pkg/browser"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"

	"github.com/adamwoolhether/datasvc/client/throttle"
)

const tracerName = "github.com/adamwoolhether/datasvc/client"

// Connection holds the configuration shared by every request: base path,
// default headers, redirect target and cache-busting default. It is safe
// for concurrent use, but configuration is meant to be set up before
// requests are issued; an in-flight request keeps the header set it
// started with.
type Connection struct {
	c         *http.Client
	logger    *slog.Logger
	tracer    trace.Tracer
	navigator Navigator
	location  *Location
	opener    func(path string) error
	now       func() time.Time

	mu          sync.RWMutex
	basePath    string
	redirectURL string
	headers     http.Header
	forceReload bool
}

// Build instantiates a Connection with the provided options.
// The default headers always start with Content-Type: application/json.
func Build(optFns ...Option) (*Connection, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying connection option: %w", err)
		}
	}

	conn := &Connection{
		logger:      slog.Default(),
		location:    NewLocation(""),
		opener:      browser.OpenFile,
		now:         time.Now,
		basePath:    opts.basePath,
		redirectURL: opts.redirectURL,
		forceReload: opts.forceReload,
		headers:     http.Header{"Content-Type": {"application/json"}},
	}
	conn.navigator = conn.location

	if opts.logger != nil {
		conn.logger = opts.logger
	}
	if opts.navigator != nil {
		conn.navigator = opts.navigator
	}
	if opts.opener != nil {
		conn.opener = opts.opener
	}

	tp := opts.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	conn.tracer = tp.Tracer(tracerName)

	for k, v := range opts.headers {
		conn.headers.Set(k, v)
	}

	hc, err := buildHTTPClient(opts, func() *slog.Logger { return conn.logger })
	if err != nil {
		return nil, err
	}
	conn.c = hc

	return conn, nil
}

// buildHTTPClient assembles the transport chain. A caller supplied
// client is copied so its configuration is never mutated.
func buildHTTPClient(opts options, logFn func() *slog.Logger) (*http.Client, error) {
	hc := &http.Client{}
	if opts.client != nil {
		cpy := *opts.client
		hc = &cpy
	}

	if opts.noFollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	switch {
	case opts.jar != nil:
		hc.Jar = opts.jar
	case hc.Jar == nil:
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case hc.Transport != nil:
		transport = hc.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.throttle != nil {
		rt, err := throttle.New(*opts.throttle, logFn, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	hc.Transport = transport

	return hc, nil
}

// SetBasePath replaces the prefix joined in front of every request path.
// An empty path disables prefixing.
func (c *Connection) SetBasePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.basePath = path
}

// SetRedirectURL replaces the target handed to the [Navigator] when a
// request is rejected with 401 Unauthorized. Empty disables redirects.
func (c *Connection) SetRedirectURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.redirectURL = url
}

// SetAlwaysForceStaticReload makes every subsequently created GET
// builder cache-bust, as if built with [WithStaticReload].
func (c *Connection) SetAlwaysForceStaticReload(force bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forceReload = force
}

// AddHeader sets a default header, replacing any existing value.
func (c *Connection) AddHeader(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(name, value)
}

// RemoveHeader deletes a default header, including Content-Type.
func (c *Connection) RemoveHeader(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del(name)
}

// Headers returns a copy of the current default headers.
func (c *Connection) Headers() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Clone()
}

// Location returns the connection's own navigation slot. It only
// changes when no custom [Navigator] was configured.
func (c *Connection) Location() *Location {
	return c.location
}

// Get returns a builder for a GET request to path.
func (c *Connection) Get(path string, optFns ...VerbOption) *Builder {
	var opts verbOpts
	for _, opt := range optFns {
		opt(&opts)
	}

	c.mu.RLock()
	force := opts.forceStaticReload || c.forceReload
	c.mu.RUnlock()

	return c.builder(Descriptor{Method: http.MethodGet, Path: path, ForceStaticReload: force})
}

// Post returns a builder for a POST request to path. A nil body sends no body.
func (c *Connection) Post(path string, body any) *Builder {
	return c.builder(Descriptor{Method: http.MethodPost, Path: path, Body: body})
}

// Put returns a builder for a PUT request to path. A nil body sends no body.
func (c *Connection) Put(path string, body any) *Builder {
	return c.builder(Descriptor{Method: http.MethodPut, Path: path, Body: body})
}

// Patch returns a builder for a PATCH request to path. A nil body sends no body.
func (c *Connection) Patch(path string, body any) *Builder {
	return c.builder(Descriptor{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete returns a builder for a DELETE request to path.
func (c *Connection) Delete(path string) *Builder {
	return c.builder(Descriptor{Method: http.MethodDelete, Path: path})
}

func (c *Connection) builder(d Descriptor) *Builder {
	return &Builder{conn: c, desc: d}
}

// snapshot is the configuration a single dispatch works with.
type snapshot struct {
	basePath    string
	redirectURL string
	headers     http.Header
}

func (c *Connection) snapshot() snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return snapshot{
		basePath:    c.basePath,
		redirectURL: c.redirectURL,
		headers:     c.headers.Clone(),
	}
}

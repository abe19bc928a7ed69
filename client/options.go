package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/datasvc/client/throttle"
)

// Option is a functional option for configuring a [Connection] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	jar               http.CookieJar
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	tracerProvider    trace.TracerProvider
	navigator         Navigator
	opener            func(path string) error

	basePath    string
	redirectURL string
	headers     map[string]string
	forceReload bool
}

// WithClient replaces the default [http.Client] used by the [Connection].
// The provided client is copied, never mutated.
func WithClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithCookieJar replaces the default cookie jar. Cookies set by the
// server are sent back on subsequent requests.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) error {
		if jar == nil {
			return errors.New("cookie jar must not be nil")
		}
		o.jar = jar
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Connection] from following HTTP
// redirects. The 3xx response is then returned as a success.
func WithNoFollowRedirects() Option {
	return func(o *options) error {
		o.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Connection].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracerProvider sets the provider used to trace each dispatch.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) error {
		if tp == nil {
			return errors.New("tracer provider must not be nil")
		}
		o.tracerProvider = tp
		return nil
	}
}

// WithNavigator replaces the [Location] that receives the redirect URL
// on 401 responses.
func WithNavigator(n Navigator) Option {
	return func(o *options) error {
		if n == nil {
			return errors.New("navigator must not be nil")
		}
		o.navigator = n
		return nil
	}
}

// WithFileOpener replaces the function used by [File.Open] to show a
// saved file to the user.
func WithFileOpener(fn func(path string) error) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("file opener must not be nil")
		}
		o.opener = fn
		return nil
	}
}

// WithBasePath is equivalent to calling [Connection.SetBasePath] after Build.
func WithBasePath(path string) Option {
	return func(o *options) error {
		o.basePath = path
		return nil
	}
}

// WithRedirectURL is equivalent to calling [Connection.SetRedirectURL] after Build.
func WithRedirectURL(url string) Option {
	return func(o *options) error {
		o.redirectURL = url
		return nil
	}
}

// WithHeaders adds default headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) error {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent default header.
func WithUserAgent(header string) Option {
	return WithHeaders(map[string]string{"User-Agent": header})
}

// WithAlwaysForceStaticReload is equivalent to calling
// [Connection.SetAlwaysForceStaticReload] after Build.
func WithAlwaysForceStaticReload(force bool) Option {
	return func(o *options) error {
		o.forceReload = force
		return nil
	}
}

// VerbOption is a functional option for [Connection.Get].
type VerbOption func(*verbOpts)

type verbOpts struct {
	forceStaticReload bool
}

// WithStaticReload appends a cache-busting query parameter to this GET.
func WithStaticReload() VerbOption {
	return func(o *verbOpts) {
		o.forceStaticReload = true
	}
}

// DecodeOption is a functional option for [Builder.JSON].
type DecodeOption func(options *decodeOpts) error

type decodeOpts struct {
	dest       any
	useJSONNum bool
}

// WithDestination additionally decodes the JSON body into bodyTemplate.
// bodyTemplate must be a pointer.
func WithDestination[T any](bodyTemplate *T) DecodeOption {
	return func(opts *decodeOpts) error {
		if bodyTemplate == nil {
			return errors.New("destination must not be nil")
		}
		opts.dest = bodyTemplate

		return nil
	}
}

// WithJSONNumb tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumb() DecodeOption {
	return func(opts *decodeOpts) error {
		opts.useJSONNum = true

		return nil
	}
}

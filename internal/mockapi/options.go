package mockapi

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// AppOption configures an [App].
type AppOption func(*appOptions)

type appOptions struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	globalMW []Middleware
	mw       []Middleware
}

// WithGlobalMW appends middleware that runs on every request, before
// routing. Preflight handling such as CORS belongs here.
func WithGlobalMW(mw ...Middleware) AppOption {
	return func(opts *appOptions) {
		opts.globalMW = append(opts.globalMW, mw...)
	}
}

// WithMiddleware appends route level middleware, run in the order given.
func WithMiddleware(mw ...Middleware) AppOption {
	return func(opts *appOptions) {
		opts.mw = append(opts.mw, mw...)
	}
}

// WithTracer injects the given tracer into the App.
func WithTracer(tracer trace.Tracer) AppOption {
	return func(opts *appOptions) {
		opts.tracer = tracer
	}
}

// WithAppLogger sets the logger used by the App for unhandled errors.
func WithAppLogger(log *slog.Logger) AppOption {
	return func(opts *appOptions) {
		opts.logger = log
	}
}

package throttle

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Transport is an [http.RoundTripper] holding each outbound request
// until the token bucket grants it a slot.
type Transport struct {
	cfg     Config
	limiter *rate.Limiter
	next    http.RoundTripper
	logFn   func() *slog.Logger
}

// New wraps next with a limiter built from cfg. logFn lazily resolves
// the logger at request time; when it returns nil the wait is not logged.
func New(cfg Config, logFn func() *slog.Logger, next http.RoundTripper) (*Transport, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", cfg.RPS, cfg.Burst, err)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := Transport{
		cfg:     cfg,
		limiter: cfg.limiter(),
		next:    next,
		logFn:   logFn,
	}

	return &t, nil
}

// RoundTrip implements [http.RoundTripper].
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	if logger := t.logFn(); logger != nil && t.limiter.Tokens() < 1 {
		start := time.Now()
		logger.Debug("throttle holding request", "method", r.Method, "url", r.URL.Redacted(), "rate", t.cfg.RPS, "burst", t.cfg.Burst)
		defer func() {
			logger.Debug("throttle released request", "method", r.Method, "waited", time.Since(start).String())
		}()
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}

package client

import (
	"log/slog"
	"sync"

	"github.com/pkg/browser"
)

// Navigator receives the redirect target when a request is rejected
// with 401 Unauthorized. Navigate must not block the caller for long;
// implementations that do real work should do it in the background.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to a [Navigator].
type NavigatorFunc func(url string)

// Navigate implements [Navigator].
func (f NavigatorFunc) Navigate(url string) { f(url) }

// Location is the default [Navigator]: a settable "current location"
// slot. Every [Connection] owns one, see [Connection.Location].
type Location struct {
	mu   sync.RWMutex
	href string
}

// NewLocation returns a Location starting at href.
func NewLocation(href string) *Location {
	return &Location{href: href}
}

// Navigate implements [Navigator].
func (l *Location) Navigate(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.href = url
}

// Href returns the current location.
func (l *Location) Href() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.href
}

// BrowserNavigator opens the redirect target in the user's browser.
type BrowserNavigator struct {
	Logger *slog.Logger

	open func(url string) error
}

// Navigate implements [Navigator]. The browser is launched in the
// background; failures are only logged.
func (b BrowserNavigator) Navigate(url string) {
	open := b.open
	if open == nil {
		open = browser.OpenURL
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	go func() {
		if err := open(url); err != nil {
			logger.Error("opening redirect url", "url", url, "error", err)
		}
	}()
}

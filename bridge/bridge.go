// Package bridge mirrors the inert engine's markers into a live Chrome
// page over the DevTools protocol. The engine stays authoritative: the
// page is snapshotted into the in-memory tree, inert state is computed
// there, and the resulting attribute changes are pushed back by XPath.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Config configures the browser bridge.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headful disables headless mode for local launches.
	Headful bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Bridge owns the Chrome connection.
type Bridge struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// New creates a Bridge. Call Start to launch or connect.
func New(cfg Config) *Bridge {
	cfg.defaults()
	return &Bridge{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance).
func (b *Bridge) Start(ctx context.Context) error {
	log := b.cfg.Logger

	var wsURL string
	if b.cfg.RemoteURL != "" {
		wsURL = b.cfg.RemoteURL
		log.Info("bridge: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Headless(!b.cfg.Headful)
		l = l.Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("bridge: launch: %w", err)
		}
		wsURL = u
		b.lnch = l
		log.Info("bridge: launched local chrome", "url", wsURL)
	}

	br := rod.New().Context(ctx).ControlURL(wsURL)
	if err := br.Connect(); err != nil {
		return fmt.Errorf("bridge: connect: %w", err)
	}
	b.browser = br
	return nil
}

// Browser returns the Rod browser handle, nil before Start.
func (b *Bridge) Browser() *rod.Browser { return b.browser }

// Close shuts down the connection and any locally launched Chrome.
func (b *Bridge) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return fmt.Errorf("bridge: close browser: %w", err)
		}
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
	}
	return nil
}

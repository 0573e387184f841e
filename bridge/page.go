package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/domfence/dom"
)

const navigateTimeout = 30 * time.Second

// Page wraps a Rod page opened through the bridge.
type Page struct {
	page   *rod.Page
	url    string
	bridge *Bridge
}

// OpenPage creates a stealth tab and navigates it to the URL.
func (b *Bridge) OpenPage(ctx context.Context, pageURL string) (*Page, error) {
	if b.browser == nil {
		return nil, fmt.Errorf("bridge: not started")
	}

	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("bridge: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("bridge: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		b.cfg.Logger.Warn("bridge: wait load timeout", "url", pageURL, "error", err)
	}

	return &Page{page: page, url: pageURL, bridge: b}, nil
}

// URL returns the page's navigation URL.
func (p *Page) URL() string { return p.url }

// HTML serialises the live page as outer HTML.
func (p *Page) HTML(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("bridge: read page html: %w", err)
	}
	return res.Value.Str(), nil
}

// Snapshot parses the live page into an in-memory document.
func (p *Page) Snapshot(ctx context.Context, opts ...dom.ParseOption) (*dom.Document, error) {
	markup, err := p.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := dom.ParseString(markup, opts...)
	if err != nil {
		return nil, fmt.Errorf("bridge: parse snapshot: %w", err)
	}
	return doc, nil
}

// setAttribute locates an element by XPath and writes or removes one
// attribute. Returns false when the XPath matches nothing.
func (p *Page) setAttribute(ctx context.Context, xpath, name string, value *string) (bool, error) {
	res, err := p.page.Context(ctx).Eval(`(xpath, name, value) => {
		const r = document.evaluate(xpath, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
		const el = r.singleNodeValue;
		if (!el) return false;
		if (value === null) {
			el.removeAttribute(name);
		} else {
			el.setAttribute(name, value);
		}
		return true;
	}`, xpath, name, value)
	if err != nil {
		return false, fmt.Errorf("bridge: set attribute %s: %w", name, err)
	}
	return res.Value.Bool(), nil
}

// InjectStyle installs the engine's presentation rule once per page.
func (p *Page) InjectStyle(ctx context.Context, css string) error {
	_, err := p.page.Context(ctx).Eval(`(css) => {
		if (document.getElementById('domfence-style')) return false;
		const s = document.createElement('style');
		s.id = 'domfence-style';
		s.textContent = css;
		document.head.appendChild(s);
		return true;
	}`, css)
	if err != nil {
		return fmt.Errorf("bridge: inject style: %w", err)
	}
	return nil
}

// Close closes the tab.
func (p *Page) Close() error {
	if p.page != nil {
		return p.page.Close()
	}
	return nil
}

package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// ParseOption customises Parse behaviour.
type ParseOption func(*parseConfig)

type parseConfig struct {
	policy *bluemonday.Policy
}

// WithSanitizer runs the markup through a bluemonday policy before parsing.
// Use for untrusted input arriving over the control surface.
func WithSanitizer(p *bluemonday.Policy) ParseOption {
	return func(c *parseConfig) { c.policy = p }
}

// DefaultSanitizer is the policy used for untrusted markup: UGC whitelist
// plus the attributes the inert engine itself operates on.
func DefaultSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("inert", "tabindex", "aria-hidden", "id", "slot", "name", "contenteditable").Globally()
	p.AllowElements("slot", "template", "button", "input", "select", "textarea", "iframe", "object", "embed")
	p.AllowAttrs("shadowrootmode").OnElements("template")
	p.AllowAttrs("href").OnElements("a", "area")
	return p
}

// Parse builds a Document from HTML markup. Declarative shadow DOM
// (<template shadowrootmode="open">) is attached as a shadow tree on its
// host and removed from the host's declared children.
func Parse(r io.Reader, opts ...ParseOption) (*Document, error) {
	var cfg parseConfig
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.policy != nil {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("dom: read markup: %w", err)
		}
		r = bytes.NewReader(cfg.policy.SanitizeBytes(raw))
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse markup: %w", err)
	}

	htmlEl := findElement(root, "html")
	if htmlEl == nil {
		return nil, fmt.Errorf("dom: markup has no root element")
	}

	converted := convert(htmlEl)
	return NewDocument(converted), nil
}

// ParseString is a convenience wrapper over Parse.
func ParseString(markup string, opts ...ParseOption) (*Document, error) {
	return Parse(strings.NewReader(markup), opts...)
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func convert(src *html.Node) *Node {
	n := &Node{Type: ElementNode, Tag: src.Data}
	for _, a := range src.Attr {
		n.attrs = append(n.attrs, Attr{Name: a.Key, Value: a.Val})
	}
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			if c.Data == "template" && hasAttr(c, "shadowrootmode") {
				sr := n.AttachShadow()
				for t := templateContent(c); t != nil; t = t.NextSibling {
					appendConverted(sr, t)
				}
				continue
			}
			child := convert(c)
			child.parent = n
			n.children = append(n.children, child)
		case html.TextNode:
			n.children = append(n.children, &Node{Type: TextNode, Text: c.Data, parent: n})
		}
	}
	return n
}

func appendConverted(parent *Node, c *html.Node) {
	switch c.Type {
	case html.ElementNode:
		child := convert(c)
		child.parent = parent
		parent.children = append(parent.children, child)
	case html.TextNode:
		parent.children = append(parent.children, &Node{Type: TextNode, Text: c.Data, parent: parent})
	}
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

// templateContent returns the first node of a parsed <template>'s content.
// x/net/html parses template contents into a separate fragment rooted at
// the template node's first child in recent versions, or as direct children.
func templateContent(t *html.Node) *html.Node {
	return t.FirstChild
}

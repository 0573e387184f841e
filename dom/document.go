package dom

import (
	"errors"
	"sort"
)

// Document owns one composed tree: the root element, the focus model, the
// injected style rules, and the mutation record queue. It is not safe for
// concurrent use; the model is single-threaded and cooperative — callers
// serialise access and call Flush between edit batches.
type Document struct {
	root   *Node
	active *Node // focus holder, nil when nothing is focused

	styleRules []string

	subs    []*Subscription
	pending bool
}

// ErrNotFocusable is returned by Focus for elements the focus model rejects:
// no whitelist match and no usable tabindex, or a negative tabindex.
var ErrNotFocusable = errors.New("dom: element is not focusable")

// NewDocument creates a document around an existing root element, adopting
// the whole subtree. Most callers go through Parse instead.
func NewDocument(root *Node) *Document {
	d := &Document{root: root}
	root.setDocument(d)
	return d
}

// Root returns the document's root element.
func (d *Document) Root() *Node { return d.root }

// Body returns the <body> element, or the root when none exists.
func (d *Document) Body() *Node {
	for _, c := range d.root.children {
		if c.Type == ElementNode && c.Tag == "body" {
			return c
		}
	}
	return d.root
}

// CreateElement creates a detached element owned by this document.
func (d *Document) CreateElement(tag string) *Node {
	return &Node{Type: ElementNode, Tag: tag, doc: d}
}

// CreateText creates a detached text node owned by this document.
func (d *Document) CreateText(text string) *Node {
	return &Node{Type: TextNode, Text: text, doc: d}
}

// GetElementByID finds an element by id across the composed tree, shadow
// trees included. Returns nil when absent.
func (d *Document) GetElementByID(id string) *Node {
	var found *Node
	d.walkAll(d.root, func(n *Node) {
		if found == nil && n.Type == ElementNode && n.ID() == id {
			found = n
		}
	})
	return found
}

// ElementsWithAttribute returns, in tree order, every element across the
// composed tree carrying the named attribute.
func (d *Document) ElementsWithAttribute(name string) []*Node {
	var out []*Node
	d.walkAll(d.root, func(n *Node) {
		if n.Type == ElementNode && n.HasAttribute(name) {
			out = append(out, n)
		}
	})
	return out
}

// walkAll visits every node in the light tree and attached shadow trees.
// This is the exhaustive walk used for lookups; the inert engine uses its
// own composed-order walker for membership semantics.
func (d *Document) walkAll(n *Node, visit func(*Node)) {
	visit(n)
	if n.shadow != nil {
		d.walkAll(n.shadow, visit)
	}
	for _, c := range n.children {
		d.walkAll(c, visit)
	}
}

// AddStyleRule appends a style rule rendered into the document's head.
// Duplicate rules are kept once.
func (d *Document) AddStyleRule(rule string) {
	for _, r := range d.styleRules {
		if r == rule {
			return
		}
	}
	d.styleRules = append(d.styleRules, rule)
}

// StyleRules returns the injected rules in insertion order.
func (d *Document) StyleRules() []string {
	out := make([]string, len(d.styleRules))
	copy(out, d.styleRules)
	return out
}

// Focusable reports whether the focus model accepts the element: it matches
// the native-focusable whitelist or carries a tabindex, and its effective
// tabindex is not negative.
func (d *Document) Focusable(n *Node) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	ti, hasTI := n.TabIndex()
	if hasTI && ti < 0 {
		return false
	}
	return IsNativelyFocusable(n) || hasTI
}

// Focus moves focus to the element, or returns ErrNotFocusable when the
// focus model rejects it. Rejection leaves the current focus untouched.
func (d *Document) Focus(n *Node) error {
	if !d.Focusable(n) {
		return ErrNotFocusable
	}
	d.active = n
	return nil
}

// Blur clears focus.
func (d *Document) Blur() { d.active = nil }

// ActiveElement returns the focus holder, nil when nothing is focused.
func (d *Document) ActiveElement() *Node { return d.active }

// TabOrder returns the sequential keyboard navigation order: elements with a
// positive tabindex first (ascending, tree order within equal values), then
// whitelist-focusable and tabindex=0 elements in composed tree order.
func (d *Document) TabOrder() []*Node {
	type entry struct {
		n  *Node
		ti int
		at int
	}
	var positive, zero []entry
	pos := 0
	d.walkAll(d.root, func(n *Node) {
		if !d.Focusable(n) {
			return
		}
		pos++
		ti, _ := n.TabIndex()
		if ti > 0 {
			positive = append(positive, entry{n, ti, pos})
		} else {
			zero = append(zero, entry{n, ti, pos})
		}
	})
	sort.SliceStable(positive, func(i, j int) bool {
		if positive[i].ti != positive[j].ti {
			return positive[i].ti < positive[j].ti
		}
		return positive[i].at < positive[j].at
	})
	out := make([]*Node, 0, len(positive)+len(zero))
	for _, e := range positive {
		out = append(out, e.n)
	}
	for _, e := range zero {
		out = append(out, e.n)
	}
	return out
}

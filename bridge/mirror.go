package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/domfence/dom"
	"github.com/hazyhaar/domfence/inert"
)

// mirroredAttrs are the attributes the engine owns on elements it touches.
var mirroredAttrs = []string{"inert", "aria-hidden", "tabindex"}

// attrOp is a single attribute write to push to the page. A nil Value
// removes the attribute.
type attrOp struct {
	Path  string
	Name  string
	Value *string
}

// Mirror pushes a manager's marker state into a live page. The in-memory
// document is authoritative; the page only ever receives its attribute
// values.
type Mirror struct {
	page *Page
	mgr  *inert.Manager
	// prev holds the elements whose attributes were pushed on the last
	// apply, so releases get mirrored too.
	prev map[*dom.Node]struct{}
}

// NewMirror creates a Mirror for a page and the manager computed from its
// snapshot.
func NewMirror(page *Page, mgr *inert.Manager) *Mirror {
	return &Mirror{page: page, mgr: mgr, prev: make(map[*dom.Node]struct{})}
}

// Apply pushes the current marker state to the page: the presentation
// rule, every active root's markers, every restrained element's tabindex,
// and the restored attributes of elements released since the last apply.
// Elements inside shadow trees are skipped; top-level XPath cannot reach
// them.
func (m *Mirror) Apply(ctx context.Context) error {
	if err := m.page.InjectStyle(ctx, inert.StyleRule); err != nil {
		return err
	}

	ops, next := markerOps(m.mgr, m.prev)
	for _, op := range ops {
		ok, err := m.page.setAttribute(ctx, op.Path, op.Name, op.Value)
		if err != nil {
			return fmt.Errorf("bridge: mirror %s on %s: %w", op.Name, op.Path, err)
		}
		if !ok {
			m.page.bridge.cfg.Logger.Warn("bridge: element not found in page",
				"path", op.Path, "attribute", op.Name)
		}
	}
	m.prev = next
	return nil
}

// Run re-applies the marker state at the given interval until the context
// ends. Pages mutate themselves; periodic re-application keeps markers in
// place on elements scripts rewrite.
func (m *Mirror) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.Apply(ctx); err != nil {
				return err
			}
		}
	}
}

// markerOps computes the attribute writes that make the page agree with
// the manager. Every element the manager currently touches, plus every
// element it touched last round, gets its three owned attributes mirrored
// from the in-memory tree.
func markerOps(mgr *inert.Manager, prev map[*dom.Node]struct{}) ([]attrOp, map[*dom.Node]struct{}) {
	desired := make(map[*dom.Node]struct{})
	for _, root := range mgr.Roots() {
		desired[root.Element()] = struct{}{}
		for _, rec := range root.ManagedRecords() {
			el, err := rec.Element()
			if err != nil {
				continue
			}
			desired[el] = struct{}{}
		}
	}

	targets := make(map[*dom.Node]struct{}, len(desired)+len(prev))
	for n := range desired {
		targets[n] = struct{}{}
	}
	for n := range prev {
		targets[n] = struct{}{}
	}

	var ops []attrOp
	for n := range targets {
		if dom.InShadow(n) {
			continue
		}
		path := dom.Path(n)
		for _, attr := range mirroredAttrs {
			op := attrOp{Path: path, Name: attr}
			if v, ok := n.GetAttribute(attr); ok {
				val := v
				op.Value = &val
			}
			ops = append(ops, op)
		}
	}
	return ops, desired
}

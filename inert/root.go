package inert

import (
	"github.com/hazyhaar/domfence/dom"
)

// Root owns one subtree marked inert. It registers every focusable element
// genealogically within the subtree with the Manager, hides the subtree from
// assistive technology, and keeps membership consistent as the subtree
// mutates. Roots are created and destroyed only by the Manager.
type Root struct {
	element *dom.Node
	manager *Manager
	managed map[*Record]struct{}
	sub     *dom.Subscription
}

func newRoot(el *dom.Node, m *Manager) *Root {
	r := &Root{
		element: el,
		manager: m,
		managed: make(map[*Record]struct{}),
	}

	el.SetAttribute(attrAriaHidden, "true")

	walkComposed(el, r.visitNode)

	r.sub = el.Document().Observe(el, dom.ObserverOptions{
		Attributes: true,
		ChildList:  true,
		Subtree:    true,
	}, r.onMutation)

	return r
}

// Element returns the subtree root this Root governs.
func (r *Root) Element() *dom.Node { return r.element }

// ManagedCount returns how many element records this root currently claims.
func (r *Root) ManagedCount() int { return len(r.managed) }

// ManagedRecords returns the current membership set.
func (r *Root) ManagedRecords() []*Record {
	out := make([]*Record, 0, len(r.managed))
	for rec := range r.managed {
		out = append(out, rec)
	}
	return out
}

// destroy cancels the mutation subscription, unhides the subtree from
// assistive technology, and returns every managed element to the Manager,
// which restores any the last claiming root just released. Called exactly
// once, by the Manager.
func (r *Root) destroy() {
	r.sub.Cancel()
	r.element.RemoveAttribute(attrAriaHidden)

	for rec := range r.managed {
		el, err := rec.Element()
		if err != nil {
			continue
		}
		r.manager.Deregister(el, r)
	}
	r.managed = nil
	r.manager = nil
}

// visitNode is the walker callback used at construction and for every
// subtree added later. Descendants that are themselves inert roots are
// adopted instead of double-processed; their managed sets fold into ours so
// deactivating the inner root alone cannot release elements we still claim.
func (r *Root) visitNode(n *dom.Node) {
	if n != r.element && n.HasAttribute(attrInert) {
		r.adoptInertRoot(n)
	}
	if dom.IsNativelyFocusable(n) || n.HasAttribute(attrTabIndex) {
		r.manage(n)
	}
}

func (r *Root) manage(n *dom.Node) {
	rec := r.manager.Register(n, r)
	if rec != nil {
		r.managed[rec] = struct{}{}
	}
}

func (r *Root) unmanage(n *dom.Node) {
	rec := r.manager.Deregister(n, r)
	if rec != nil {
		delete(r.managed, rec)
	}
}

// adoptInertRoot folds a descendant inert root's membership into this root.
// If the descendant carries the marker but the Manager has not yet built a
// Root for it (mutation delivery order is not guaranteed), activation is
// requested first.
func (r *Root) adoptInertRoot(n *dom.Node) {
	sub := r.manager.GetInertRoot(n)
	if sub == nil {
		r.manager.SetInert(n, true)
		sub = r.manager.GetInertRoot(n)
		if sub == nil {
			return
		}
	}
	for rec := range sub.managed {
		el, err := rec.Element()
		if err != nil {
			continue
		}
		r.manage(el)
	}
}

func (r *Root) onMutation(records []dom.MutationRecord) {
	for _, rec := range records {
		switch rec.Type {
		case dom.MutationChildList:
			for _, added := range rec.AddedNodes {
				walkComposed(added, r.visitNode)
			}
			for _, removed := range rec.RemovedNodes {
				walkComposed(removed, r.unmanage)
			}
		case dom.MutationAttributes:
			r.onAttributeMutation(rec.Target, rec.AttributeName)
		}
	}
}

func (r *Root) onAttributeMutation(target *dom.Node, name string) {
	switch name {
	case attrTabIndex:
		// Manual tabindex reassignment while inert: re-run the untabbable
		// step through Register, which refreshes the saved state.
		r.manage(target)
	case attrInert:
		if target == r.element || !target.HasAttribute(attrInert) {
			return
		}
		// A descendant became an inert root. Adopt its membership, and push
		// our managed elements inside it down into its membership too:
		// parent and child marker records may arrive in either order, so
		// reconciliation has to run both ways.
		r.adoptInertRoot(target)
		sub := r.manager.GetInertRoot(target)
		if sub == nil {
			return
		}
		for rec := range r.managed {
			el, err := rec.Element()
			if err != nil {
				continue
			}
			if target.Contains(el) {
				sub.manage(el)
			}
		}
	}
}

// Package inert maintains inert subtrees over a composed UI tree: regions
// excluded from sequential keyboard navigation and hidden from assistive
// technology, reversible exactly, under overlapping roots and live mutations.
//
// The Manager is the per-document authority. It owns the root registry and
// the interned element records, so each focusable element has at most one
// record no matter how many inert roots claim it; membership is counted,
// not boolean, which is what makes nesting and overlap come apart cleanly.
package inert

import (
	"errors"
	"log/slog"
	"time"

	"github.com/hazyhaar/domfence/dom"
)

const (
	attrInert      = "inert"
	attrAriaHidden = "aria-hidden"
	attrTabIndex   = "tabindex"

	// sentinelTabIndex removes an element from the tab order and, under the
	// document focus model, rejects programmatic focus.
	sentinelTabIndex = "-1"
)

// StyleRule is the fixed presentation rule injected once per document:
// pointer interaction and text selection are suppressed for inert subtrees
// and everything below them.
const StyleRule = "[inert] { pointer-events: none; cursor: default; } " +
	"[inert], [inert] * { user-select: none; -webkit-user-select: none; }"

// ErrNoDocument is returned when a Manager is constructed without a document.
var ErrNoDocument = errors.New("inert: manager requires a document")

// Manager coordinates all inert roots and element records of one document.
type Manager struct {
	doc     *dom.Document
	roots   map[*dom.Node]*Root
	records map[*dom.Node]*Record
	sub     *dom.Subscription
	logger  *slog.Logger
	sink    EventSink
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithEventSink attaches a lifecycle event sink (see events.go).
func WithEventSink(sink EventSink) Option {
	return func(m *Manager) { m.sink = sink }
}

// NewManager builds the per-document manager: injects the presentation rule,
// activates every element already carrying the inert marker (in whatever
// order they are found — the adoption protocol reconciles inner-before-outer
// activation), and watches the whole document for markers appearing on
// inserted or mutated nodes.
func NewManager(doc *dom.Document, opts ...Option) (*Manager, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}

	m := &Manager{
		doc:     doc,
		roots:   make(map[*dom.Node]*Root),
		records: make(map[*dom.Node]*Record),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}

	doc.AddStyleRule(StyleRule)

	for _, el := range doc.ElementsWithAttribute(attrInert) {
		m.SetInert(el, true)
	}

	m.sub = doc.Observe(doc.Root(), dom.ObserverOptions{
		Attributes: true,
		ChildList:  true,
		Subtree:    true,
	}, m.onMutation)

	return m, nil
}

// Document returns the document this manager governs.
func (m *Manager) Document() *dom.Document { return m.doc }

// SetInert toggles inert-ness of a subtree root. Idempotent: activating an
// active root or deactivating an inactive one changes nothing.
func (m *Manager) SetInert(el *dom.Node, inert bool) {
	if el == nil {
		return
	}
	if inert {
		if _, ok := m.roots[el]; ok {
			return
		}
		root := newRoot(el, m)
		m.roots[el] = root
		el.SetAttribute(attrInert, "")
		m.logger.Debug("inert: root activated", "path", dom.Path(el))
		m.emit(Event{Type: EventRootActivated, Path: dom.Path(el), Tag: el.Tag})
		return
	}
	root, ok := m.roots[el]
	if !ok {
		return
	}
	delete(m.roots, el)
	root.destroy()
	el.RemoveAttribute(attrInert)
	m.logger.Debug("inert: root deactivated", "path", dom.Path(el))
	m.emit(Event{Type: EventRootDeactivated, Path: dom.Path(el), Tag: el.Tag})
}

// GetInertRoot returns the active inert root for an element, nil when the
// element is not currently an inert root.
func (m *Manager) GetInertRoot(el *dom.Node) *Root {
	return m.roots[el]
}

// Roots returns all currently active inert roots.
func (m *Manager) Roots() []*Root {
	out := make([]*Root, 0, len(m.roots))
	for _, r := range m.roots {
		out = append(out, r)
	}
	return out
}

// Register interns an element record on behalf of a claiming root. An
// existing record gains the root as an additional claimant and refreshes its
// saved state; otherwise a fresh record is created. Always returns the
// record.
func (m *Manager) Register(el *dom.Node, root *Root) *Record {
	if rec, ok := m.records[el]; ok {
		if err := rec.addInertRoot(root); err != nil {
			// A destroyed record left in the map is an internal
			// inconsistency; surface it loudly and re-intern.
			m.logger.Error("inert: destroyed record in registry", "path", dom.Path(el), "error", err)
			delete(m.records, el)
		} else {
			return rec
		}
	}
	rec := newRecord(el, root)
	m.records[el] = rec
	saved, has, _ := rec.SavedTabIndex()
	ev := Event{Type: EventElementRestrained, Path: dom.Path(el), Tag: el.Tag}
	if has {
		ev.SavedTabIndex = &saved
	}
	m.emit(ev)
	return rec
}

// Deregister withdraws a root's claim on an element. Returns nil when the
// element has no record; otherwise returns the record — destroyed or not —
// so the caller can update its own membership. A record whose last claimant
// left is removed from the registry, its element restored verbatim.
func (m *Manager) Deregister(el *dom.Node, root *Root) *Record {
	rec, ok := m.records[el]
	if !ok {
		return nil
	}
	if err := rec.removeInertRoot(root); err != nil {
		m.logger.Error("inert: deregister on destroyed record", "path", dom.Path(el), "error", err)
		delete(m.records, el)
		return rec
	}
	if rec.Destroyed() {
		delete(m.records, el)
		m.emit(Event{Type: EventElementRestored, Path: dom.Path(el), Tag: el.Tag})
	}
	return rec
}

// RecordFor returns the interned record for an element, nil when the element
// is not currently claimed by any inert root.
func (m *Manager) RecordFor(el *dom.Node) *Record {
	return m.records[el]
}

// onMutation is the document-wide watcher: markers on newly inserted
// subtrees activate, and marker attribute flips synchronise through
// SetInert, which is idempotent either way.
func (m *Manager) onMutation(records []dom.MutationRecord) {
	for _, rec := range records {
		switch rec.Type {
		case dom.MutationChildList:
			for _, added := range rec.AddedNodes {
				walkComposed(added, func(n *dom.Node) {
					if n.HasAttribute(attrInert) {
						m.SetInert(n, true)
					}
				})
			}
		case dom.MutationAttributes:
			if rec.AttributeName == attrInert {
				m.SetInert(rec.Target, rec.Target.HasAttribute(attrInert))
			}
		}
	}
}

func (m *Manager) emit(ev Event) {
	if m.sink != nil {
		ev.At = time.Now()
		m.sink.Record(ev)
	}
}

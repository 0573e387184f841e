package inert

import (
	"errors"

	"github.com/hazyhaar/domfence/dom"
)

// ErrDestroyed is returned by any access to a Record after its last claiming
// root deregistered it. Stale handles are a programming error and must not
// silently produce wrong answers.
var ErrDestroyed = errors.New("inert: record used after destroy")

// Record holds the saved focusability state of one focusable element and the
// set of inert roots currently claiming it. A record is alive for exactly as
// long as its claimant set is non-empty; the Manager interns records so each
// element has at most one, however many roots overlap on it.
type Record struct {
	element *dom.Node

	// savedTabIndex is the verbatim tabindex attribute value present before
	// the element was made untabbable. nil means the attribute was absent —
	// semantically distinct from "0".
	savedTabIndex *string

	roots     map[*Root]struct{}
	destroyed bool
}

func newRecord(el *dom.Node, root *Root) *Record {
	r := &Record{
		element: el,
		roots:   map[*Root]struct{}{root: {}},
	}
	r.ensureUntabbable()
	return r
}

// Element returns the tracked element.
func (r *Record) Element() (*dom.Node, error) {
	if r.destroyed {
		return nil, ErrDestroyed
	}
	return r.element, nil
}

// HasSavedTabIndex reports whether an explicit tabindex value was captured.
func (r *Record) HasSavedTabIndex() (bool, error) {
	if r.destroyed {
		return false, ErrDestroyed
	}
	return r.savedTabIndex != nil, nil
}

// SavedTabIndex returns the captured tabindex value. The boolean mirrors
// HasSavedTabIndex.
func (r *Record) SavedTabIndex() (string, bool, error) {
	if r.destroyed {
		return "", false, ErrDestroyed
	}
	if r.savedTabIndex == nil {
		return "", false, nil
	}
	return *r.savedTabIndex, true, nil
}

// InertRoots returns the current claimant set.
func (r *Record) InertRoots() ([]*Root, error) {
	if r.destroyed {
		return nil, ErrDestroyed
	}
	out := make([]*Root, 0, len(r.roots))
	for root := range r.roots {
		out = append(out, root)
	}
	return out, nil
}

// Destroyed reports whether the record has been torn down. This is the one
// accessor valid on a dead record — callers use it after Deregister to
// decide their own bookkeeping.
func (r *Record) Destroyed() bool { return r.destroyed }

// ensureUntabbable makes the element unreachable by sequential navigation
// and programmatic focus, saving any explicit tabindex first. Idempotent.
//
// Whitelist-focusable elements get the sentinel tabindex: restoring them
// means removing it (or putting the saved value back). Elements focusable
// only through an explicit tabindex get the attribute removed instead, since
// removal restores their natural "not focusable" state.
func (r *Record) ensureUntabbable() {
	el := r.element
	if dom.IsNativelyFocusable(el) {
		// An explicit -1 already reflects the desired state. Capturing it
		// would later restore the sentinel instead of removing it, so a
		// repeat enrolment must not mistake our own marker for author state.
		if ti, ok := el.TabIndex(); ok && ti == -1 {
			return
		}
		if v, ok := el.GetAttribute(attrTabIndex); ok {
			r.savedTabIndex = &v
		}
		el.SetAttribute(attrTabIndex, sentinelTabIndex)
		return
	}
	if v, ok := el.GetAttribute(attrTabIndex); ok {
		r.savedTabIndex = &v
		el.RemoveAttribute(attrTabIndex)
	}
}

// addInertRoot enrols another claiming root and refreshes the saved state,
// covering a tabindex reassigned between enrolments.
func (r *Record) addInertRoot(root *Root) error {
	if r.destroyed {
		return ErrDestroyed
	}
	r.roots[root] = struct{}{}
	r.ensureUntabbable()
	return nil
}

// removeInertRoot withdraws a claiming root. When the last one leaves, the
// record destroys itself and the element's prior focusability returns.
func (r *Record) removeInertRoot(root *Root) error {
	if r.destroyed {
		return ErrDestroyed
	}
	delete(r.roots, root)
	if len(r.roots) == 0 {
		return r.destroy()
	}
	return nil
}

// destroy restores the element verbatim: the saved tabindex if one was
// captured, attribute removal otherwise. Destroying twice is an error.
func (r *Record) destroy() error {
	if r.destroyed {
		return ErrDestroyed
	}
	if r.savedTabIndex != nil {
		r.element.SetAttribute(attrTabIndex, *r.savedTabIndex)
	} else {
		r.element.RemoveAttribute(attrTabIndex)
	}
	r.destroyed = true
	r.roots = nil
	return nil
}

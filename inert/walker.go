package inert

import "github.com/hazyhaar/domfence/dom"

// walkComposed visits every element of the composed tree under root in
// document order: the element first, then its shadow tree when it hosts one
// (skipping the declared children — distributed ones come back through
// slots), then slot-distributed nodes for slot elements, then ordinary
// children. Siblings and ancestors of root are never visited.
func walkComposed(root *dom.Node, visit func(*dom.Node)) {
	if root == nil || root.Type != dom.ElementNode {
		return
	}
	visit(root)

	if sr := root.ShadowRoot(); sr != nil {
		for _, c := range sr.Children() {
			walkComposed(c, visit)
		}
		return
	}

	if root.Tag == "slot" {
		for _, c := range root.AssignedNodes() {
			walkComposed(c, visit)
		}
		return
	}

	for _, c := range root.Children() {
		walkComposed(c, visit)
	}
}

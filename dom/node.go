// Package dom provides the composed-tree object model the inert engine
// operates on: elements with ordered attributes, shadow root attachment,
// named slot distribution, a per-document focus model, and a mutation
// subscription primitive delivering batched change records.
//
// dom models, it does not render. Markup goes in through Parse, attribute
// and structural edits queue mutation records, and Flush delivers them to
// subscribers in batches on the same goroutine that made the edits.
package dom

import (
	"errors"
	"strconv"
	"strings"
)

// NodeType discriminates the node kinds the model carries.
type NodeType int

const (
	ElementNode NodeType = iota + 1
	TextNode
	// ShadowRootNode is the root of a shadow tree. Its parent is the host
	// element; it never appears among the host's declared children.
	ShadowRootNode
)

// Attr is a single attribute. Order is preserved for render fidelity.
type Attr struct {
	Name  string
	Value string
}

// Node is one node of the composed tree. Elements carry Tag and attributes,
// text nodes carry Text. All structural and attribute edits on nodes that
// belong to a Document queue mutation records (see observer.go).
type Node struct {
	Type NodeType
	Tag  string // lower-case element tag; "#shadow-root" for shadow roots
	Text string // text node payload

	doc      *Document
	parent   *Node
	children []*Node
	attrs    []Attr
	shadow   *Node // attached shadow tree, nil for most elements
}

var errNotChild = errors.New("dom: node is not a child of this parent")

// Parent returns the node's parent. For a shadow root this is the host.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's declared (light tree) children.
func (n *Node) Children() []*Node { return n.children }

// Document returns the owning document, nil for detached standalone nodes.
func (n *Node) Document() *Document { return n.doc }

// ShadowRoot returns the attached shadow tree root, or nil.
func (n *Node) ShadowRoot() *Node { return n.shadow }

// AttachShadow attaches a shadow tree to an element host. The shadow root's
// children form the encapsulated content; the host's declared children become
// distribution candidates for slots inside it.
func (n *Node) AttachShadow() *Node {
	if n.shadow != nil {
		return n.shadow
	}
	n.shadow = &Node{Type: ShadowRootNode, Tag: "#shadow-root", doc: n.doc, parent: n}
	return n.shadow
}

// HasAttribute reports whether the attribute is present, value aside.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// GetAttribute returns the attribute value and whether it is present.
// Presence is semantically distinct from an empty value.
func (n *Node) GetAttribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute sets or replaces an attribute and queues an attribute record.
func (n *Node) SetAttribute(name, value string) {
	for i, a := range n.attrs {
		if a.Name == name {
			if a.Value == value {
				return
			}
			n.attrs[i].Value = value
			n.queueAttr(name)
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	n.queueAttr(name)
}

// RemoveAttribute removes an attribute if present and queues a record.
func (n *Node) RemoveAttribute(name string) {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			n.queueAttr(name)
			return
		}
	}
}

// Attributes returns a copy of the attribute list in declaration order.
func (n *Node) Attributes() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// ID returns the element's id attribute, empty when absent.
func (n *Node) ID() string {
	v, _ := n.GetAttribute("id")
	return v
}

// TabIndex returns the parsed tabindex attribute value and whether a valid
// one is present. A present but unparseable value counts as absent here,
// though HasAttribute still reports it.
func (n *Node) TabIndex() (int, bool) {
	v, ok := n.GetAttribute("tabindex")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return i, true
}

// AppendChild appends a child, detaching it from a previous parent first.
// Both the detach and the append queue childList records.
func (n *Node) AppendChild(child *Node) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	child.setDocument(n.doc)
	n.children = append(n.children, child)
	n.queueChildList([]*Node{child}, nil)
}

// RemoveChild detaches a direct child. The removed subtree keeps its
// document pointer so scoped observers can still be cancelled cleanly.
func (n *Node) RemoveChild(child *Node) error {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			n.queueChildList(nil, []*Node{child})
			return nil
		}
	}
	return errNotChild
}

// Contains reports composed-tree containment: n contains other if walking
// other's ancestry (hopping from a shadow root to its host) reaches n.
// A node contains itself.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// AssignedNodes returns the composed children of a slot element: the host's
// light children whose slot name matches, or the slot's own children as
// fallback content when nothing is assigned. Non-slot elements return nil.
func (n *Node) AssignedNodes() []*Node {
	if n.Type != ElementNode || n.Tag != "slot" {
		return nil
	}
	sr := n.containingShadowRoot()
	if sr == nil {
		return n.children
	}
	host := sr.parent
	name, _ := n.GetAttribute("name")
	var assigned []*Node
	for _, c := range host.children {
		switch c.Type {
		case ElementNode:
			slotName, _ := c.GetAttribute("slot")
			if slotName == name {
				assigned = append(assigned, c)
			}
		case TextNode:
			// Text distributes to the default slot only.
			if name == "" {
				assigned = append(assigned, c)
			}
		}
	}
	if len(assigned) == 0 {
		return n.children
	}
	return assigned
}

func (n *Node) containingShadowRoot() *Node {
	for cur := n.parent; cur != nil; cur = cur.parent {
		if cur.Type == ShadowRootNode {
			return cur
		}
	}
	return nil
}

func (n *Node) setDocument(doc *Document) {
	n.doc = doc
	if n.shadow != nil {
		n.shadow.setDocument(doc)
	}
	for _, c := range n.children {
		c.setDocument(doc)
	}
}

func (n *Node) queueAttr(name string) {
	if n.doc != nil {
		n.doc.queueRecord(MutationRecord{
			Type:          MutationAttributes,
			Target:        n,
			AttributeName: name,
		})
	}
}

func (n *Node) queueChildList(added, removed []*Node) {
	if n.doc != nil {
		n.doc.queueRecord(MutationRecord{
			Type:         MutationChildList,
			Target:       n,
			AddedNodes:   added,
			RemovedNodes: removed,
		})
	}
}

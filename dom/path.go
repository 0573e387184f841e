package dom

import (
	"fmt"
	"strings"
)

// Path returns an XPath-like address for a node: same-tag sibling position
// in brackets, shadow boundaries as a shadow-root() step. Paths are stable
// for as long as the tree shape around the node is, and are used for
// journalling and for addressing elements on a live page.
func Path(n *Node) string {
	if n == nil {
		return ""
	}
	var steps []string
	for cur := n; cur != nil; cur = cur.parent {
		switch cur.Type {
		case ShadowRootNode:
			steps = append(steps, "shadow-root()")
		case ElementNode:
			steps = append(steps, elementStep(cur))
		case TextNode:
			steps = append(steps, "text()")
		}
	}
	// steps were collected leaf-first.
	var sb strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		sb.WriteByte('/')
		sb.WriteString(steps[i])
	}
	return sb.String()
}

// InShadow reports whether the node lives inside a shadow tree. Paths of
// such nodes cannot be resolved by standard XPath evaluation on a page.
func InShadow(n *Node) bool {
	return n.containingShadowRoot() != nil
}

func elementStep(n *Node) string {
	parent := n.parent
	if parent == nil {
		return n.Tag
	}
	index, total := 0, 0
	for _, sib := range parent.children {
		if sib.Type == ElementNode && sib.Tag == n.Tag {
			total++
			if sib == n {
				index = total
			}
		}
	}
	if total <= 1 {
		return n.Tag
	}
	return fmt.Sprintf("%s[%d]", n.Tag, index)
}

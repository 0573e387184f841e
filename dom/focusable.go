package dom

// IsNativelyFocusable is the fixed whitelist classifier shared by every
// component: links and areas with a target, enabled form controls, embedded
// contexts, and editable regions. Explicit tabindex focusability is judged
// separately by the focus model.
func IsNativelyFocusable(n *Node) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	switch n.Tag {
	case "a", "area":
		return n.HasAttribute("href")
	case "input", "select", "textarea", "button":
		return !n.HasAttribute("disabled")
	case "iframe", "object", "embed":
		return true
	}
	if v, ok := n.GetAttribute("contenteditable"); ok && v != "false" {
		return true
	}
	return false
}

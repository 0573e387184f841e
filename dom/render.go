package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Render serialises the document back to HTML. Shadow trees are emitted as
// declarative <template shadowrootmode="open"> children of their hosts, and
// injected style rules as a <style data-domfence> element in head.
func (d *Document) Render(w io.Writer) error {
	root := d.toHTML(d.root)

	if len(d.styleRules) > 0 {
		if head := findElement(root, "head"); head != nil {
			style := &html.Node{
				Type: html.ElementNode,
				Data: "style",
				Attr: []html.Attribute{{Key: "data-domfence", Val: ""}},
			}
			style.AppendChild(&html.Node{
				Type: html.TextNode,
				Data: strings.Join(d.styleRules, "\n"),
			})
			head.AppendChild(style)
		}
	}

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("dom: render: %w", err)
	}
	return nil
}

// RenderString is a convenience wrapper over Render.
func (d *Document) RenderString() (string, error) {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (d *Document) toHTML(n *Node) *html.Node {
	switch n.Type {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case ShadowRootNode:
		tpl := &html.Node{
			Type: html.ElementNode,
			Data: "template",
			Attr: []html.Attribute{{Key: "shadowrootmode", Val: "open"}},
		}
		for _, c := range n.children {
			tpl.AppendChild(d.toHTML(c))
		}
		return tpl
	}

	out := &html.Node{Type: html.ElementNode, Data: n.Tag}
	for _, a := range n.attrs {
		out.Attr = append(out.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	if n.shadow != nil {
		out.AppendChild(d.toHTML(n.shadow))
	}
	for _, c := range n.children {
		out.AppendChild(d.toHTML(c))
	}
	return out
}

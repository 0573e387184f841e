package dom

import (
	"errors"
	"testing"
)

func TestFocusWhitelistAndTabindex(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<button id="btn">b</button>
		<a id="link" href="/x">l</a>
		<a id="anchor">no href</a>
		<input id="off" disabled>
		<div id="fake" tabindex="0"></div>
		<div id="neg" tabindex="-1"></div>
		<div id="plain"></div>
	</body></html>`)

	cases := []struct {
		id   string
		want bool
	}{
		{"btn", true},
		{"link", true},
		{"anchor", false},
		{"off", false},
		{"fake", true},
		{"neg", false},
		{"plain", false},
	}
	for _, c := range cases {
		el := doc.GetElementByID(c.id)
		err := doc.Focus(el)
		if c.want && err != nil {
			t.Errorf("%s: focus rejected: %v", c.id, err)
		}
		if !c.want && !errors.Is(err, ErrNotFocusable) {
			t.Errorf("%s: got %v, want ErrNotFocusable", c.id, err)
		}
	}
}

func TestFocusRejectionKeepsActiveElement(t *testing.T) {
	doc := mustParse(t, `<html><body><button id="b1">x</button><div id="neg" tabindex="-1"></div></body></html>`)
	b1 := doc.GetElementByID("b1")
	if err := doc.Focus(b1); err != nil {
		t.Fatal(err)
	}
	if err := doc.Focus(doc.GetElementByID("neg")); err == nil {
		t.Fatal("negative tabindex accepted focus")
	}
	if doc.ActiveElement() != b1 {
		t.Error("rejected focus moved activeElement")
	}
}

func TestTabOrder(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<button id="one">1</button>
		<div id="late" tabindex="2"></div>
		<div id="first" tabindex="1"></div>
		<button id="two">2</button>
		<div id="skip" tabindex="-1"></div>
	</body></html>`)

	var ids []string
	for _, n := range doc.TabOrder() {
		ids = append(ids, n.ID())
	}
	want := []string{"first", "late", "one", "two"}
	if len(ids) != len(want) {
		t.Fatalf("tab order: got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("tab order: got %v, want %v", ids, want)
		}
	}
}

func TestTabOrderCrossesShadow(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<div id="host"><template shadowrootmode="open"><button id="inner">i</button></template></div>
		<button id="after">a</button>
	</body></html>`)

	var ids []string
	for _, n := range doc.TabOrder() {
		ids = append(ids, n.ID())
	}
	if len(ids) != 2 || ids[0] != "inner" || ids[1] != "after" {
		t.Errorf("tab order: got %v, want [inner after]", ids)
	}
}

func TestPath(t *testing.T) {
	doc := mustParse(t, `<html><body><div></div><div><button id="b">x</button></div></body></html>`)
	b := doc.GetElementByID("b")
	if got, want := Path(b), "/html/body/div[2]/button"; got != want {
		t.Errorf("path: got %q, want %q", got, want)
	}
}

func TestPathInShadow(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="host"><template shadowrootmode="open"><button id="b">x</button></template></div></body></html>`)
	b := doc.GetElementByID("b")
	if !InShadow(b) {
		t.Error("InShadow: expected true for shadow content")
	}
	if got, want := Path(b), "/html/body/div/shadow-root()/button"; got != want {
		t.Errorf("path: got %q, want %q", got, want)
	}
}

func TestElementsWithAttribute(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<div inert id="outer"><div inert id="nested"></div></div>
		<div id="host"><template shadowrootmode="open"><div inert id="shadowed"></div></template></div>
	</body></html>`)

	var ids []string
	for _, n := range doc.ElementsWithAttribute("inert") {
		ids = append(ids, n.ID())
	}
	if len(ids) != 3 {
		t.Fatalf("elements with inert: got %v", ids)
	}
	if ids[0] != "outer" || ids[1] != "nested" || ids[2] != "shadowed" {
		t.Errorf("order: got %v", ids)
	}
}

func TestAppendChildMovesSubtree(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="a"><span id="s"></span></div><div id="b"></div></body></html>`)
	s := doc.GetElementByID("s")
	b := doc.GetElementByID("b")

	b.AppendChild(s)
	if s.Parent() != b {
		t.Error("moved node has wrong parent")
	}
	if got := len(doc.GetElementByID("a").Children()); got != 0 {
		t.Errorf("old parent still has %d children", got)
	}
}

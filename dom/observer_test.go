package dom

import "testing"

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestObserveAttributeRecords(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="a"><span id="b"></span></div></body></html>`)
	a := doc.GetElementByID("a")
	b := doc.GetElementByID("b")

	var got []MutationRecord
	doc.Observe(a, ObserverOptions{Attributes: true, Subtree: true}, func(recs []MutationRecord) {
		got = append(got, recs...)
	})

	b.SetAttribute("class", "x")
	a.SetAttribute("inert", "")
	doc.Flush()

	if len(got) != 2 {
		t.Fatalf("records: got %d, want 2", len(got))
	}
	if got[0].Target != b || got[0].AttributeName != "class" {
		t.Errorf("record 0: target/name mismatch")
	}
	if got[1].Target != a || got[1].AttributeName != "inert" {
		t.Errorf("record 1: target/name mismatch")
	}
}

func TestObserveScopeExcludesSiblings(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="a"></div><div id="sib"></div></body></html>`)
	a := doc.GetElementByID("a")

	calls := 0
	doc.Observe(a, ObserverOptions{Attributes: true, ChildList: true, Subtree: true}, func(recs []MutationRecord) {
		calls += len(recs)
	})

	doc.GetElementByID("sib").SetAttribute("class", "x")
	doc.Flush()

	if calls != 0 {
		t.Errorf("sibling mutation leaked into scoped subscription: %d records", calls)
	}
}

func TestObserveChildListRecords(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="a"></div></body></html>`)
	a := doc.GetElementByID("a")

	var got []MutationRecord
	doc.Observe(a, ObserverOptions{ChildList: true, Subtree: true}, func(recs []MutationRecord) {
		got = append(got, recs...)
	})

	child := doc.CreateElement("button")
	a.AppendChild(child)
	doc.Flush()

	if len(got) != 1 || len(got[0].AddedNodes) != 1 || got[0].AddedNodes[0] != child {
		t.Fatalf("append not observed: %+v", got)
	}

	got = nil
	if err := a.RemoveChild(child); err != nil {
		t.Fatal(err)
	}
	doc.Flush()

	if len(got) != 1 || len(got[0].RemovedNodes) != 1 || got[0].RemovedNodes[0] != child {
		t.Fatalf("removal not observed: %+v", got)
	}
}

func TestObserveWithoutSubtreeOnlyTarget(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="a"><span id="b"></span></div></body></html>`)
	a := doc.GetElementByID("a")

	var names []string
	doc.Observe(a, ObserverOptions{Attributes: true}, func(recs []MutationRecord) {
		for _, r := range recs {
			names = append(names, r.AttributeName)
		}
	})

	doc.GetElementByID("b").SetAttribute("class", "x")
	a.SetAttribute("role", "none")
	doc.Flush()

	if len(names) != 1 || names[0] != "role" {
		t.Errorf("non-subtree scope: got %v, want [role]", names)
	}
}

func TestFlushDrainsHandlerMutations(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="a"></div></body></html>`)
	a := doc.GetElementByID("a")

	rounds := 0
	doc.Observe(a, ObserverOptions{Attributes: true}, func(recs []MutationRecord) {
		rounds++
		// Converging handler: reacts once, then the state is already set.
		a.SetAttribute("data-state", "done")
	})

	a.SetAttribute("class", "x")
	doc.Flush()

	// Round 1 delivers class, round 2 delivers data-state; the second
	// SetAttribute in round 2 is a no-op (same value) so no round 3.
	if rounds != 2 {
		t.Errorf("flush rounds: got %d, want 2", rounds)
	}
}

func TestSubscriptionCancel(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="a"></div></body></html>`)
	a := doc.GetElementByID("a")

	calls := 0
	sub := doc.Observe(a, ObserverOptions{Attributes: true}, func(recs []MutationRecord) {
		calls++
	})

	a.SetAttribute("class", "x")
	sub.Cancel()
	sub.Cancel() // must be safe twice
	doc.Flush()

	if calls != 0 {
		t.Errorf("canceled subscription still delivered: %d calls", calls)
	}
}

func TestSetAttributeSameValueQueuesNothing(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="a" class="x"></div></body></html>`)
	a := doc.GetElementByID("a")

	calls := 0
	doc.Observe(a, ObserverOptions{Attributes: true}, func(recs []MutationRecord) {
		calls += len(recs)
	})

	a.SetAttribute("class", "x")
	doc.Flush()

	if calls != 0 {
		t.Errorf("no-op attribute write produced %d records", calls)
	}
}

package bridge

import (
	"strings"
	"testing"

	"github.com/hazyhaar/domfence/dom"
	"github.com/hazyhaar/domfence/inert"
)

func opsByKey(ops []attrOp) map[string]*string {
	out := make(map[string]*string)
	for _, op := range ops {
		out[op.Path+" "+op.Name] = op.Value
	}
	return out
}

func TestMarkerOpsActivation(t *testing.T) {
	doc, err := dom.ParseString(
		`<html><body><div id="r"><button id="b">x</button></div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	mgr, err := inert.NewManager(doc)
	if err != nil {
		t.Fatal(err)
	}
	region := doc.GetElementByID("r")
	mgr.SetInert(region, true)
	doc.Flush()

	ops, next := markerOps(mgr, nil)
	byKey := opsByKey(ops)

	rootPath := dom.Path(region)
	if v := byKey[rootPath+" inert"]; v == nil || *v != "" {
		t.Errorf("root inert op: %v", v)
	}
	if v := byKey[rootPath+" aria-hidden"]; v == nil || *v != "true" {
		t.Errorf("root aria-hidden op: %v", v)
	}

	button := doc.GetElementByID("b")
	if v := byKey[dom.Path(button)+" tabindex"]; v == nil || *v != "-1" {
		t.Errorf("button tabindex op: %v", v)
	}

	if len(next) != 2 {
		t.Errorf("tracked elements: %d, want 2", len(next))
	}
}

func TestMarkerOpsRelease(t *testing.T) {
	doc, err := dom.ParseString(
		`<html><body><div id="r"><div id="f" tabindex="4">x</div></div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	mgr, err := inert.NewManager(doc)
	if err != nil {
		t.Fatal(err)
	}
	region := doc.GetElementByID("r")
	mgr.SetInert(region, true)
	doc.Flush()
	_, prev := markerOps(mgr, nil)

	mgr.SetInert(region, false)
	doc.Flush()
	ops, next := markerOps(mgr, prev)
	byKey := opsByKey(ops)

	rootPath := dom.Path(region)
	if v, present := byKey[rootPath+" inert"]; !present || v != nil {
		t.Errorf("root inert removal op: %v present=%v", v, present)
	}
	field := doc.GetElementByID("f")
	if v := byKey[dom.Path(field)+" tabindex"]; v == nil || *v != "4" {
		t.Errorf("restored tabindex op: %v", v)
	}
	if len(next) != 0 {
		t.Errorf("tracked elements after release: %d", len(next))
	}
}

func TestMarkerOpsSkipsShadowContent(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div id="host">
		<template shadowrootmode="open"><button id="inner">x</button></template>
	</div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	mgr, err := inert.NewManager(doc)
	if err != nil {
		t.Fatal(err)
	}
	host := doc.GetElementByID("host")
	mgr.SetInert(host, true)
	doc.Flush()

	ops, _ := markerOps(mgr, nil)
	for _, op := range ops {
		if strings.Contains(op.Path, "shadow-root()") {
			t.Errorf("shadow path leaked into ops: %s", op.Path)
		}
	}
}

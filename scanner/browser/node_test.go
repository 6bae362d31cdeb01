package browser_test

import (
	"testing"

	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/browserker/locate/scanner/browser"
)

func TestNodeRemove(t *testing.T) {
	d := &gcdapi.DOMNode{
		Attributes: []string{"href", "blah", "zup", "zop"},
	}
	ret := browser.NodeRemoveAttribute(d, "zup")
	if len(ret) != 2 {
		t.Fatalf("expected 2 left")
	}
	if ret[0] != "href" || ret[1] != "blah" {
		t.Fatalf("expected href=blah left")
	}

	ret = browser.NodeRemoveAttribute(d, "HREF")
	if len(ret) != 2 || ret[0] != "zup" {
		t.Fatalf("expected zup=zop left got %v\n", ret)
	}
}

func TestNodeGetAttribute(t *testing.T) {
	d := &gcdapi.DOMNode{
		Attributes: []string{"ID", "login", "disabled", ""},
	}
	if v, ok := browser.NodeGetAttribute(d, "id"); !ok || v != "login" {
		t.Fatalf("expected id=login got %s %v\n", v, ok)
	}
	if v, ok := browser.NodeGetAttribute(d, "disabled"); !ok || v != "" {
		t.Fatalf("expected empty disabled attribute got %s %v\n", v, ok)
	}
	if browser.NodeHasAttribute(d, "name") {
		t.Fatalf("name should not exist")
	}
	if browser.NodeHasAttribute(&gcdapi.DOMNode{}, "id") {
		t.Fatalf("nil attributes should have nothing")
	}
}

func TestNodeTypeString(t *testing.T) {
	if browser.NodeElement.String() != "ELEMENT_NODE" {
		t.Fatalf("unexpected %s\n", browser.NodeElement)
	}
	if browser.NodeType(0x42).String() != "UNKNOWN_NODE" {
		t.Fatalf("unexpected %s\n", browser.NodeType(0x42))
	}
}

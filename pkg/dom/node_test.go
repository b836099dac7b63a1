package dom_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/dom"
)

func TestGetElementByID_ReturnsFirstInTreeOrder(t *testing.T) {
	doc, err := dom.ParseString(`<div id="a">first</div><p id="a">second</p>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	node := doc.GetElementByID("a")
	if node == nil || node.DataAtom != atom.Div {
		t.Fatalf("expected the div, got %#v", node)
	}
	if doc.GetElementByID("") != nil {
		t.Fatalf("empty id should never resolve")
	}
	if doc.GetElementByID("missing") != nil {
		t.Fatalf("unknown id should not resolve")
	}
}

func TestAttributes(t *testing.T) {
	doc, err := dom.ParseString(`<input id="f" required data-Mixed="x">`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	input := doc.GetElementByID("f")

	if !dom.HasAttr(input, "required") {
		t.Fatalf("expected required attribute")
	}
	if got := dom.AttrOr(input, "data-mixed", ""); got != "x" {
		t.Fatalf("expected lowercased attribute lookup, got %q", got)
	}

	dom.SetAttr(input, "aria-invalid", "true")
	dom.SetAttr(input, "aria-invalid", "false")
	if got := dom.AttrOr(input, "aria-invalid", ""); got != "false" {
		t.Fatalf("expected replaced value, got %q", got)
	}

	dom.ToggleAttr(input, "data-visible", true)
	dom.ToggleAttr(input, "data-visible", true)
	count := 0
	for _, attr := range input.Attr {
		if attr.Key == "data-visible" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("toggle should not duplicate attributes, got %d", count)
	}
	dom.ToggleAttr(input, "data-visible", false)
	if dom.HasAttr(input, "data-visible") {
		t.Fatalf("expected attribute removed")
	}
}

func TestTextContentAndClone(t *testing.T) {
	doc, err := dom.ParseString(`<ul id="l"><li><span>!!</span> <span data-error-message>boom</span></li></ul>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	list := doc.GetElementByID("l")
	item := dom.Children(list)[0]

	if got := dom.TextContent(item); got != "!! boom" {
		t.Fatalf("text content mismatch: %q", got)
	}

	clone := dom.Clone(item)
	if clone.Parent != nil {
		t.Fatalf("clone must be detached")
	}
	dom.SetTextContent(dom.Find(clone, func(n *html.Node) bool { return dom.HasAttr(n, "data-error-message") }), "changed")
	if got := dom.TextContent(item); got != "!! boom" {
		t.Fatalf("mutating the clone changed the source: %q", got)
	}
	if got := dom.TextContent(clone); got != "!! changed" {
		t.Fatalf("clone text mismatch: %q", got)
	}
}

func TestReplaceChildren_KeepsOrder(t *testing.T) {
	doc, err := dom.ParseString(`<ul id="l"><li id="a"></li><li id="b"></li><li id="c"></li></ul>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	list := doc.GetElementByID("l")
	a, c := doc.GetElementByID("a"), doc.GetElementByID("c")

	dom.ReplaceChildren(list, c, a)

	var ids []string
	for _, child := range dom.Children(list) {
		ids = append(ids, dom.AttrOr(child, "id", ""))
	}
	if diff := cmp.Diff([]string{"c", "a"}, ids); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestFormElements_IncludesAssociatedControls(t *testing.T) {
	doc, err := dom.ParseString(`
<form id="f">
  <fieldset id="group"><input id="a" name="a"></fieldset>
  <select id="b"></select>
  <div><textarea id="c"></textarea></div>
</form>
<input id="outside" form="f">
<input id="stranger">
<form id="other"><input id="d"></form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	form := doc.GetElementByID("f")
	var ids []string
	for _, el := range doc.FormElements(form) {
		ids = append(ids, dom.AttrOr(el, "id", ""))
	}
	want := []string{"group", "a", "b", "c", "outside"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("form elements mismatch (-want +got):\n%s", diff)
	}

	if owner := doc.FormOf(doc.GetElementByID("stranger")); owner != nil {
		t.Fatalf("expected no form owner for detached control")
	}
	if got := len(doc.Forms()); got != 2 {
		t.Fatalf("expected two forms, got %d", got)
	}
}

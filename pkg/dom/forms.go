package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IsListedElement reports whether n is one of the form-associated elements a
// form exposes through its elements collection.
func IsListedElement(n *html.Node) bool {
	if !IsElement(n) {
		return false
	}
	switch n.DataAtom {
	case atom.Input, atom.Select, atom.Textarea, atom.Button, atom.Fieldset, atom.Output, atom.Object:
		return true
	default:
		return false
	}
}

// FormOf returns the form owner of a listed element: the form referenced by the
// element's form attribute when it resolves, otherwise the nearest ancestor
// form.
func (d *Document) FormOf(n *html.Node) *html.Node {
	if !IsElement(n) {
		return nil
	}
	if id, ok := Attr(n, "form"); ok {
		if owner := d.GetElementByID(id); owner != nil && owner.DataAtom == atom.Form {
			return owner
		}
		return nil
	}
	return Closest(n.Parent, func(node *html.Node) bool {
		return node.DataAtom == atom.Form
	})
}

// FormElements returns the listed elements owned by form in tree order.
func (d *Document) FormElements(form *html.Node) []*html.Node {
	if form == nil || d == nil || d.root == nil {
		return nil
	}
	return FindAll(d.root, func(n *html.Node) bool {
		return IsListedElement(n) && d.FormOf(n) == form
	})
}

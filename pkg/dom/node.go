package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Attr returns the value of the named attribute. Attribute names are matched
// case-insensitively, mirroring how the HTML parser lowercases them.
func Attr(n *html.Node, name string) (string, bool) {
	if !IsElement(n) {
		return "", false
	}
	name = strings.ToLower(name)
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or fallback when absent.
func AttrOr(n *html.Node, name, fallback string) string {
	if value, ok := Attr(n, name); ok {
		return value
	}
	return fallback
}

// HasAttr reports whether the attribute is present, regardless of value.
func HasAttr(n *html.Node, name string) bool {
	_, ok := Attr(n, name)
	return ok
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, name, value string) {
	if !IsElement(n) {
		return
	}
	name = strings.ToLower(name)
	for idx, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			n.Attr[idx].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes the attribute if present.
func RemoveAttr(n *html.Node, name string) {
	if !IsElement(n) {
		return
	}
	name = strings.ToLower(name)
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			continue
		}
		kept = append(kept, attr)
	}
	n.Attr = kept
}

// ToggleAttr adds the boolean attribute when force is true and removes it
// otherwise.
func ToggleAttr(n *html.Node, name string, force bool) {
	if force {
		if !HasAttr(n, name) {
			SetAttr(n, name, "")
		}
		return
	}
	RemoveAttr(n, name)
}

// Tag returns the lowercase tag name of an element.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Children returns the direct element children of n in order.
func Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if IsElement(child) {
			out = append(out, child)
		}
	}
	return out
}

// ChildByTag returns the first direct element child with the given tag.
func ChildByTag(n *html.Node, tag atom.Atom) *html.Node {
	for _, child := range Children(n) {
		if child.DataAtom == tag {
			return child
		}
	}
	return nil
}

// Find returns the first descendant of n (excluding n) in tree order that
// matches.
func Find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil || match == nil {
		return nil
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if IsElement(child) && match(child) {
			return child
		}
		if found := Find(child, match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of n (excluding n) that matches, in tree
// order.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	if n == nil || match == nil {
		return nil
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if IsElement(child) && match(child) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// Contains reports whether n is ancestor itself or one of its descendants.
func Contains(ancestor, n *html.Node) bool {
	if ancestor == nil || n == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Closest walks up from n (inclusive) and returns the first matching element.
func Closest(n *html.Node, match func(*html.Node) bool) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if IsElement(cur) && match(cur) {
			return cur
		}
	}
	return nil
}

// TextContent concatenates all descendant text nodes.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				b.WriteString(child.Data)
				continue
			}
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

// SetTextContent replaces all children of n with a single text node.
func SetTextContent(n *html.Node, text string) {
	if n == nil {
		return
	}
	RemoveChildren(n)
	if text == "" {
		return
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	if n == nil {
		return
	}
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		n.RemoveChild(child)
		child = next
	}
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Append detaches child from any previous parent and appends it to parent.
func Append(parent, child *html.Node) {
	if parent == nil || child == nil {
		return
	}
	Remove(child)
	parent.AppendChild(child)
}

// ReplaceChildren removes every child of n and appends the supplied nodes in
// order.
func ReplaceChildren(n *html.Node, children ...*html.Node) {
	if n == nil {
		return
	}
	for _, child := range children {
		Remove(child)
	}
	RemoveChildren(n)
	for _, child := range children {
		n.AppendChild(child)
	}
}

// Clone returns a detached deep copy of n.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		out.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		out.AppendChild(Clone(child))
	}
	return out
}

// NewElement builds a detached element node.
func NewElement(tag atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: tag,
		Data:     tag.String(),
		Attr:     attrs,
	}
}

package containers

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/vocabulary"
)

// Container is a region that owns an ordered list of error entries. Entries
// live in the first direct <ul> child; insertion order is render order.
//
// Containers are single-writer: callers must not mutate the same container
// from concurrent goroutines.
type Container struct {
	node  *html.Node
	vocab vocabulary.Vocabulary
}

// Node returns the container element.
func (c *Container) Node() *html.Node {
	if c == nil {
		return nil
	}
	return c.node
}

// ID returns the container id attribute.
func (c *Container) ID() string {
	return dom.AttrOr(c.Node(), "id", "")
}

// List returns the entry list element, or nil when the container has none yet.
func (c *Container) List() *html.Node {
	if c == nil {
		return nil
	}
	return dom.ChildByTag(c.node, atom.Ul)
}

func (c *Container) ensureList() *html.Node {
	if list := c.List(); list != nil {
		return list
	}
	list := dom.NewElement(atom.Ul)
	c.node.AppendChild(list)
	return list
}

// Entries returns every entry in render order.
func (c *Container) Entries() []Entry {
	list := c.List()
	if list == nil {
		return nil
	}
	children := dom.Children(list)
	out := make([]Entry, 0, len(children))
	for _, child := range children {
		out = append(out, Entry{node: child, vocab: c.vocab})
	}
	return out
}

// Preserved returns the entries flagged as preserved, in render order.
func (c *Container) Preserved() []Entry {
	var out []Entry
	for _, entry := range c.Entries() {
		if entry.Preserved() {
			out = append(out, entry)
		}
	}
	return out
}

// FindByKind returns the entry whose kind equals kind exactly, regardless of
// its preserved or visible state.
func (c *Container) FindByKind(kind string) (Entry, bool) {
	for _, entry := range c.Entries() {
		if value, ok := entry.kind(); ok && value == kind {
			return entry, true
		}
	}
	return Entry{}, false
}

// PreservedByKind returns the preserved entry of kind, if any.
func (c *Container) PreservedByKind(kind string) (Entry, bool) {
	for _, entry := range c.Preserved() {
		if value, ok := entry.kind(); ok && value == kind {
			return entry, true
		}
	}
	return Entry{}, false
}

// HasPreserved reports whether a preserved entry of kind exists.
func (c *Container) HasPreserved(kind string) bool {
	_, ok := c.PreservedByKind(kind)
	return ok
}

// Append adds entry at the end of the list, creating the list if needed.
func (c *Container) Append(entry Entry) {
	if c == nil || entry.node == nil {
		return
	}
	dom.Append(c.ensureList(), entry.node)
}

// Retain replaces the list content with the given entries, in order.
func (c *Container) Retain(entries []Entry) {
	list := c.List()
	if list == nil {
		return
	}
	nodes := make([]*html.Node, 0, len(entries))
	for _, entry := range entries {
		nodes = append(nodes, entry.node)
	}
	dom.ReplaceChildren(list, nodes...)
}

// Adopt wraps an entry node (for example a freshly rendered template) using
// this container's vocabulary.
func (c *Container) Adopt(node *html.Node) Entry {
	return Entry{node: node, vocab: c.vocab}
}

// Entry is one rendered error line.
type Entry struct {
	node  *html.Node
	vocab vocabulary.Vocabulary
}

// Node returns the entry element.
func (e Entry) Node() *html.Node {
	return e.node
}

func (e Entry) kind() (string, bool) {
	return dom.Attr(e.node, e.vocab.ErrorType)
}

// Kind returns the entry kind ("" when untyped).
func (e Entry) Kind() string {
	kind, _ := e.kind()
	return kind
}

// Message returns the text of the message slot, or the whole entry text when
// the entry has no slot.
func (e Entry) Message() string {
	if slot := dom.Find(e.node, func(n *html.Node) bool {
		return dom.HasAttr(n, e.vocab.ErrorMessage)
	}); slot != nil {
		return dom.TextContent(slot)
	}
	return dom.TextContent(e.node)
}

// Preserved reports whether the entry survives reconciliation.
func (e Entry) Preserved() bool {
	return dom.HasAttr(e.node, e.vocab.Preserve)
}

// Visible reports whether the entry is currently shown.
func (e Entry) Visible() bool {
	return dom.HasAttr(e.node, e.vocab.Visible)
}

// MarkPreserved sets the preserved flag.
func (e Entry) MarkPreserved() {
	dom.ToggleAttr(e.node, e.vocab.Preserve, true)
}

// SetVisible toggles the visible flag.
func (e Entry) SetVisible(visible bool) {
	dom.ToggleAttr(e.node, e.vocab.Visible, visible)
}

// Remove detaches the entry from its list.
func (e Entry) Remove() {
	dom.Remove(e.node)
}

// EntryState is a plain copy of an entry, convenient for comparisons and
// reporting.
type EntryState struct {
	Kind      string
	Message   string
	Preserved bool
	Visible   bool
}

// State returns a plain copy of the entry.
func (e Entry) State() EntryState {
	return EntryState{
		Kind:      e.Kind(),
		Message:   e.Message(),
		Preserved: e.Preserved(),
		Visible:   e.Visible(),
	}
}

// Snapshot copies every entry of the container in render order.
func (c *Container) Snapshot() []EntryState {
	entries := c.Entries()
	if len(entries) == 0 {
		return nil
	}
	out := make([]EntryState, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.State())
	}
	return out
}

// Package containers finds the error container linked to a field and exposes
// the ordered error entries it holds.
package containers

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/vocabulary"
)

// Locator resolves fields to their error containers. Lookups are best effort:
// a miss is reported as nil, never as an error, because many fields have no
// container at all.
type Locator struct {
	doc   *dom.Document
	vocab vocabulary.Vocabulary
}

// NewLocator binds a locator to a document.
func NewLocator(doc *dom.Document, vocab vocabulary.Vocabulary) Locator {
	return Locator{doc: doc, vocab: vocab.WithDefaults()}
}

// Vocabulary returns the attribute scheme in use.
func (l Locator) Vocabulary() vocabulary.Vocabulary {
	return l.vocab
}

// ContainerID returns the first id listed in the field's linking attribute
// that resolves to a flagged error container.
func (l Locator) ContainerID(field *html.Node) string {
	raw, ok := dom.Attr(field, l.vocab.DescribedBy)
	if !ok || strings.TrimSpace(raw) == "" {
		return ""
	}
	for _, id := range strings.Fields(raw) {
		if node := l.doc.GetElementByID(id); dom.HasAttr(node, l.vocab.ErrorContainer) {
			return id
		}
	}
	return ""
}

// Locate returns the error container linked to field, or nil.
func (l Locator) Locate(field *html.Node) *Container {
	id := l.ContainerID(field)
	if id == "" {
		return nil
	}
	return l.wrap(l.doc.GetElementByID(id))
}

// Has reports whether field has a resolvable error container.
func (l Locator) Has(field *html.Node) bool {
	return l.Locate(field) != nil
}

// ByID resolves an element by id and treats it as a container. Unlike Locate
// it does not require the container flag, matching how payload container ids
// are addressed.
func (l Locator) ByID(id string) *Container {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return l.wrap(l.doc.GetElementByID(id))
}

// Wrap treats an arbitrary element as a container.
func (l Locator) Wrap(node *html.Node) *Container {
	return l.wrap(node)
}

func (l Locator) wrap(node *html.Node) *Container {
	if !dom.IsElement(node) {
		return nil
	}
	return &Container{node: node, vocab: l.vocab}
}

package reconcile

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/containers"
	"github.com/goliatone/go-formerrors/pkg/dom"
)

// Clear removes every non-preserved entry of c and hides the preserved ones.
func (e *Engine) Clear(c *containers.Container) {
	if c == nil {
		return
	}
	preserved := c.Preserved()
	for _, entry := range preserved {
		entry.SetVisible(false)
	}
	c.Retain(preserved)
}

// MarkVisible flags the entry of kind as visible. Missing kinds are ignored.
func (e *Engine) MarkVisible(c *containers.Container, kind string) {
	if c == nil {
		return
	}
	if entry, ok := c.FindByKind(kind); ok {
		entry.SetVisible(true)
	}
}

// project recomputes the secondary rendering target of c, if the container
// names one. The target receives a copy of the canonical list; ids are
// stripped so the document keeps unique ids and aria-hidden is never copied.
func (e *Engine) project(doc *dom.Document, c *containers.Container) {
	targetID, ok := dom.Attr(c.Node(), e.vocab.Mirror)
	if !ok || targetID == "" {
		return
	}
	target := doc.GetElementByID(targetID)
	if target == nil {
		e.logger.Debug("mirror target not found",
			zap.String("container", c.ID()),
			zap.String("target", targetID),
		)
		return
	}
	if dom.Contains(c.Node(), target) || dom.Contains(target, c.Node()) {
		e.logger.Warn("mirror target overlaps its container", zap.String("container", c.ID()))
		return
	}

	if old := dom.ChildByTag(target, atom.Ul); old != nil {
		dom.Remove(old)
	}
	list := c.List()
	if list == nil {
		return
	}
	copied := dom.Clone(list)
	scrubProjection(copied)
	target.AppendChild(copied)
}

func scrubProjection(n *html.Node) {
	if dom.IsElement(n) {
		dom.RemoveAttr(n, "id")
		dom.RemoveAttr(n, "aria-hidden")
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		scrubProjection(child)
	}
}

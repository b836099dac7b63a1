package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formerrors/pkg/containers"
	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/payload"
	"github.com/goliatone/go-formerrors/pkg/render"
)

// ErrNoFallbackContainer reports payload entries that could not be shown
// because neither their container nor the form container exists.
var ErrNoFallbackContainer = errors.New("reconcile: no fallback error container")

// FromExternalErrors applies an authoritative error list to form. Every
// container of the form is cleared first, then entries are added in list
// order. An entry replaces any entry of the same kind in its container and
// inherits its preserved flag.
//
// Unresolved container ids fall back to the form container. Entries that
// cannot be placed at all are skipped and reported together, wrapped in
// ErrNoFallbackContainer, once the whole list has been applied. Untyped
// entries are skipped the same way and reported as payload.ErrUntypedEntry.
func (e *Engine) FromExternalErrors(doc *dom.Document, form *html.Node, errs []payload.Error) error {
	locator := containers.NewLocator(doc, e.vocab)
	fallback := locator.Locate(form)

	touched := e.clearForm(doc, form, locator, fallback)
	defer func() {
		for _, c := range touched {
			e.project(doc, c)
		}
	}()

	var problems []error
	for i, item := range errs {
		if strings.TrimSpace(item.Type) == "" {
			e.logger.Warn("skipping untyped error entry",
				zap.Int("index", i),
				zap.String("container", item.ContainerID),
			)
			problems = append(problems, fmt.Errorf("%w: entry %d for container %q", payload.ErrUntypedEntry, i, item.ContainerID))
			continue
		}
		if field := doc.GetElementByID(item.ElementID); field != nil {
			e.SetInvalid(field, true)
		} else if item.ElementID != "" {
			e.logger.Debug("element to invalidate not found", zap.String("element", item.ElementID))
		}

		target := locator.ByID(item.ContainerID)
		if target == nil {
			if item.ContainerID != "" {
				e.logger.Debug("error container not found, using form container",
					zap.String("container", item.ContainerID),
					zap.String("kind", item.Type),
				)
			}
			target = fallback
		}
		if target == nil {
			e.logger.Warn("dropping error without container",
				zap.String("container", item.ContainerID),
				zap.String("kind", item.Type),
			)
			problems = append(problems, fmt.Errorf("%w: kind %q for container %q", ErrNoFallbackContainer, item.Type, item.ContainerID))
			continue
		}
		touched = appendUnique(touched, target)

		if err := e.replaceEntry(target, item); err != nil {
			problems = append(problems, err)
		}
	}
	return errors.Join(problems...)
}

// ApplyResponse applies the error list carried by an unprocessable-entity
// response. Any other status is not ours to handle and is ignored. The body
// is read but not closed. A body that is not an error list applies nothing;
// untyped entries are skipped and the rest of the list is still applied.
func (e *Engine) ApplyResponse(ctx context.Context, doc *dom.Document, form *html.Node, resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusUnprocessableEntity {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if resp.Body == nil {
		return fmt.Errorf("reconcile: %w: empty body", payload.ErrMalformed)
	}
	errs, decodeErr := payload.Decode(resp.Body)
	if decodeErr != nil {
		if !errors.Is(decodeErr, payload.ErrUntypedEntry) {
			return fmt.Errorf("reconcile: decode response: %w", decodeErr)
		}
		e.logger.Warn("skipping untyped error entries", zap.Error(decodeErr))
		decodeErr = fmt.Errorf("reconcile: decode response: %w", decodeErr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(decodeErr, e.FromExternalErrors(doc, form, errs))
}

func (e *Engine) replaceEntry(c *containers.Container, item payload.Error) error {
	preserved := false
	if existing, ok := c.FindByKind(item.Type); ok {
		preserved = existing.Preserved()
		existing.Remove()
	}

	node, err := e.renderer.RenderEntry(render.Message{Kind: item.Type, Text: item.Message, HTML: item.HTMLContent})
	if err != nil {
		e.logger.Error("render error entry",
			zap.String("container", c.ID()),
			zap.String("kind", item.Type),
			zap.Error(err),
		)
		return fmt.Errorf("reconcile: render %q entry: %w", item.Type, err)
	}
	entry := c.Adopt(node)
	if preserved {
		entry.MarkPreserved()
	}
	c.Append(entry)
	e.MarkVisible(c, item.Type)
	return nil
}

// clearForm clears the containers of every control of form and the form
// container itself, each once. The cleared containers are returned.
func (e *Engine) clearForm(doc *dom.Document, form *html.Node, locator containers.Locator, fallback *containers.Container) []*containers.Container {
	var cleared []*containers.Container
	for _, control := range doc.FormElements(form) {
		if c := locator.Locate(control); c != nil {
			cleared = appendUnique(cleared, c)
		}
	}
	if fallback != nil {
		cleared = appendUnique(cleared, fallback)
	}
	for _, c := range cleared {
		e.Clear(c)
	}
	return cleared
}

func appendUnique(list []*containers.Container, c *containers.Container) []*containers.Container {
	for _, existing := range list {
		if existing.Node() == c.Node() {
			return list
		}
	}
	return append(list, c)
}

// Package formerrors keeps the error state of HTML forms in sync with their
// validity and with the error lists a server returns on 422 responses.
//
// The root package re-exports the common entry points; the building blocks
// live under pkg/.
package formerrors

import (
	"fmt"
	"io"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/handling"
	"github.com/goliatone/go-formerrors/pkg/payload"
	"github.com/goliatone/go-formerrors/pkg/reconcile"
	"github.com/goliatone/go-formerrors/pkg/render"
	"github.com/goliatone/go-formerrors/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formerrors/pkg/validators"
)

// Error is one entry of a 422 error payload.
type Error = payload.Error

// Event is a form event routed through a Handler.
type Event = validators.Event

// Result is the outcome of a submit pass.
type Result = handling.Result

// Handler owns the error handling of one form.
type Handler = handling.Handler

// NewEngine exposes the reconciliation engine constructor from the top-level
// module.
func NewEngine(options ...reconcile.Option) *reconcile.Engine {
	return reconcile.New(options...)
}

// AttachAll attaches a Handler to every form of doc, in document order.
func AttachAll(doc *dom.Document, options ...handling.Option) ([]*Handler, error) {
	var handlers []*Handler
	for _, form := range doc.Forms() {
		h, err := handling.Attach(doc, form, options...)
		if err != nil {
			return nil, fmt.Errorf("formerrors: attach form %q: %w", dom.AttrOr(form, "id", ""), err)
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

// RenderPage parses an HTML page, attaches every form and writes the page with
// its initial error state. It is the simplest entry point for server-side
// pre-rendering.
func RenderPage(r io.Reader, w io.Writer, options ...handling.Option) error {
	doc, err := dom.Parse(r)
	if err != nil {
		return fmt.Errorf("formerrors: parse page: %w", err)
	}
	if _, err := AttachAll(doc, options...); err != nil {
		return err
	}
	return doc.Render(w)
}

// ThemeEntryRenderer binds the entry template chosen by a go-theme selection
// to a pongo2 engine loading from the built-in templates plus extra.
func ThemeEntryRenderer(selector theme.ThemeSelector, themeName, variant string, extra []gotemplate.Option, options ...render.Option) (*render.EngineTemplate, error) {
	engineOptions := append([]gotemplate.Option{gotemplate.WithFS(EmbeddedTemplates())}, extra...)
	engine, err := gotemplate.New(engineOptions...)
	if err != nil {
		return nil, fmt.Errorf("formerrors: template engine: %w", err)
	}
	return render.FromTheme(selector, themeName, variant, engine, options...)
}

// WithThemeSelector returns an engine option rendering entries with the
// theme's entry template.
func WithThemeSelector(selector theme.ThemeSelector, themeName, variant string, options ...render.Option) (reconcile.Option, error) {
	tpl, err := ThemeEntryRenderer(selector, themeName, variant, nil, options...)
	if err != nil {
		return nil, err
	}
	return reconcile.WithEntryRenderer(tpl), nil
}

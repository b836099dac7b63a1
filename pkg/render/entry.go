// Package render turns error messages into entry nodes ready to be appended to
// an error container. Templates are always handed to a renderer explicitly.
package render

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/render/template"
	"github.com/goliatone/go-formerrors/pkg/vocabulary"
)

// DefaultMarkup is the entry template used when none is configured.
const DefaultMarkup = `<li><span data-error-message></span></li>`

// ErrInvalidTemplate reports entry markup that yields no element.
var ErrInvalidTemplate = errors.New("render: entry template has no element")

// Message is the content of one entry. HTML, when set, takes precedence over
// Text and is sanitized before insertion.
type Message struct {
	Kind string
	Text string
	HTML string
}

// EntryRenderer produces a detached entry node for a message.
type EntryRenderer interface {
	RenderEntry(Message) (*html.Node, error)
}

// EntryRendererFunc adapts a function to EntryRenderer.
type EntryRendererFunc func(Message) (*html.Node, error)

// RenderEntry implements EntryRenderer.
func (f EntryRendererFunc) RenderEntry(msg Message) (*html.Node, error) {
	return f(msg)
}

// Option customises template based renderers.
type Option func(*config)

type config struct {
	vocab     vocabulary.Vocabulary
	sanitizer Sanitizer
}

// WithVocabulary sets the attribute names used for the kind and message slot.
func WithVocabulary(vocab vocabulary.Vocabulary) Option {
	return func(cfg *config) {
		cfg.vocab = vocab.WithDefaults()
	}
}

// WithSanitizer replaces the default HTML sanitizer.
func WithSanitizer(s Sanitizer) Option {
	return func(cfg *config) {
		if s != nil {
			cfg.sanitizer = s
		}
	}
}

func newConfig(options []Option) config {
	cfg := config{
		vocab:     vocabulary.Default(),
		sanitizer: DefaultSanitizer(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// MarkupTemplate clones a prototype element for every entry.
type MarkupTemplate struct {
	prototype *html.Node
	cfg       config
}

var _ EntryRenderer = (*MarkupTemplate)(nil)

// defaultPrototype is parsed once; every render clones it.
var defaultPrototype = MustMarkupTemplate(DefaultMarkup).prototype

// NewMarkupTemplate parses markup and keeps its first element as prototype.
func NewMarkupTemplate(markup string, options ...Option) (*MarkupTemplate, error) {
	nodes, err := dom.ParseFragment(markup, dom.NewElement(atom.Ul))
	if err != nil {
		return nil, fmt.Errorf("render: parse entry template: %w", err)
	}
	for _, node := range nodes {
		if dom.IsElement(node) {
			return &MarkupTemplate{prototype: node, cfg: newConfig(options)}, nil
		}
	}
	return nil, ErrInvalidTemplate
}

// MustMarkupTemplate is NewMarkupTemplate for markup known to be valid. It
// panics on error.
func MustMarkupTemplate(markup string, options ...Option) *MarkupTemplate {
	tpl, err := NewMarkupTemplate(markup, options...)
	if err != nil {
		panic(err)
	}
	return tpl
}

// FromTemplateElement uses the first element child of tpl, typically a
// <template> node from the page, as prototype.
func FromTemplateElement(tpl *html.Node, options ...Option) (*MarkupTemplate, error) {
	if tpl == nil {
		return nil, ErrInvalidTemplate
	}
	children := dom.Children(tpl)
	if len(children) == 0 {
		return nil, ErrInvalidTemplate
	}
	return &MarkupTemplate{prototype: dom.Clone(children[0]), cfg: newConfig(options)}, nil
}

// DefaultTemplate returns a renderer for DefaultMarkup.
func DefaultTemplate(options ...Option) *MarkupTemplate {
	return &MarkupTemplate{prototype: defaultPrototype, cfg: newConfig(options)}
}

// RenderEntry implements EntryRenderer.
func (t *MarkupTemplate) RenderEntry(msg Message) (*html.Node, error) {
	if t == nil || t.prototype == nil {
		return nil, ErrInvalidTemplate
	}
	entry := dom.Clone(t.prototype)
	if err := fill(entry, msg, t.cfg); err != nil {
		return nil, err
	}
	return entry, nil
}

// EngineTemplate renders entries through a template engine. The template
// receives kind, message and html; its output must contain one element.
type EngineTemplate struct {
	engine template.TemplateRenderer
	name   string
	cfg    config
}

var _ EntryRenderer = (*EngineTemplate)(nil)

// NewEngineTemplate binds a named (or inline) template of engine.
func NewEngineTemplate(engine template.TemplateRenderer, name string, options ...Option) (*EngineTemplate, error) {
	if engine == nil {
		return nil, errors.New("render: template engine is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("render: template name is required")
	}
	return &EngineTemplate{engine: engine, name: name, cfg: newConfig(options)}, nil
}

// RenderEntry implements EntryRenderer.
func (t *EngineTemplate) RenderEntry(msg Message) (*html.Node, error) {
	safeHTML := ""
	if msg.HTML != "" {
		safeHTML = t.cfg.sanitizer.Sanitize(msg.HTML)
	}
	out, err := t.engine.Render(t.name, map[string]any{
		"kind":    msg.Kind,
		"message": msg.Text,
		"html":    safeHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("render: execute entry template %q: %w", t.name, err)
	}
	nodes, err := dom.ParseFragment(out, dom.NewElement(atom.Ul))
	if err != nil {
		return nil, fmt.Errorf("render: parse entry output: %w", err)
	}
	for _, node := range nodes {
		if !dom.IsElement(node) {
			continue
		}
		// Engine output already carries the message; only the flags are forced.
		stamp(node, msg.Kind, t.cfg.vocab)
		return node, nil
	}
	return nil, ErrInvalidTemplate
}

// stamp marks a new entry with its kind. Preserve and visibility flags are
// engine state, never inherited from template markup.
func stamp(entry *html.Node, kind string, vocab vocabulary.Vocabulary) {
	dom.SetAttr(entry, vocab.ErrorType, kind)
	dom.RemoveAttr(entry, vocab.Preserve)
	dom.RemoveAttr(entry, vocab.Visible)
}

func fill(entry *html.Node, msg Message, cfg config) error {
	stamp(entry, msg.Kind, cfg.vocab)

	slot := dom.Find(entry, func(n *html.Node) bool {
		return dom.HasAttr(n, cfg.vocab.ErrorMessage)
	})
	if slot == nil {
		slot = entry
	}

	if msg.HTML == "" {
		dom.SetTextContent(slot, msg.Text)
		return nil
	}

	nodes, err := dom.ParseFragment(cfg.sanitizer.Sanitize(msg.HTML), slot)
	if err != nil {
		return fmt.Errorf("render: parse html content: %w", err)
	}
	dom.ReplaceChildren(slot, nodes...)
	return nil
}

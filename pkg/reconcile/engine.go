// Package reconcile keeps the error entries of each container consistent with
// a control's validity state and with server supplied error lists.
//
// All mutations happen in place on the parsed document. An Engine may be
// shared, but callers must not reconcile the same form or container from
// concurrent goroutines: each container has a single writer at a time.
package reconcile

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formerrors/pkg/constraint"
	"github.com/goliatone/go-formerrors/pkg/containers"
	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/render"
	"github.com/goliatone/go-formerrors/pkg/vocabulary"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithVocabulary sets the attribute scheme.
func WithVocabulary(vocab vocabulary.Vocabulary) Option {
	return func(e *Engine) {
		e.vocab = vocab.WithDefaults()
	}
}

// WithChecker sets the constraint checker used to compute validity.
func WithChecker(checker *constraint.Checker) Option {
	return func(e *Engine) {
		if checker != nil {
			e.checker = checker
		}
	}
}

// WithEntryRenderer sets the renderer that builds new entries.
func WithEntryRenderer(renderer render.EntryRenderer) Option {
	return func(e *Engine) {
		if renderer != nil {
			e.renderer = renderer
		}
	}
}

// Engine reconciles error containers.
type Engine struct {
	logger   *zap.Logger
	vocab    vocabulary.Vocabulary
	checker  *constraint.Checker
	renderer render.EntryRenderer
}

// New builds an Engine. Without WithEntryRenderer the default entry markup is
// used, bound to the engine vocabulary.
func New(options ...Option) *Engine {
	e := &Engine{
		logger:  zap.NewNop(),
		vocab:   vocabulary.Default(),
		checker: constraint.NewChecker(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.renderer == nil {
		e.renderer = render.DefaultTemplate(render.WithVocabulary(e.vocab))
	}
	return e
}

// Vocabulary returns the attribute scheme in use.
func (e *Engine) Vocabulary() vocabulary.Vocabulary {
	return e.vocab
}

// Checker returns the constraint checker in use.
func (e *Engine) Checker() *constraint.Checker {
	return e.checker
}

// Logger returns the engine logger.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

// Locate returns the container linked to field, or nil.
func (e *Engine) Locate(doc *dom.Document, field *html.Node) *containers.Container {
	return containers.NewLocator(doc, e.vocab).Locate(field)
}

// FromValidity rebuilds the container of field from its current validity.
func (e *Engine) FromValidity(doc *dom.Document, field *html.Node) error {
	return e.FromState(doc, field, e.checker.Validity(doc, field))
}

// FromState rebuilds the container of field from the given snapshot. Preserved
// entries are kept and only become visible when their kind is failing; every
// other failing kind gets a fresh entry carrying state.Message.
func (e *Engine) FromState(doc *dom.Document, field *html.Node, state constraint.State) error {
	c := e.Locate(doc, field)
	if c == nil {
		e.logger.Debug("no error container for field", zap.String("field", fieldLabel(field)))
		return nil
	}
	defer e.project(doc, c)

	e.Clear(c)

	state = e.effectiveState(field, state)
	if state.Valid() {
		return nil
	}

	for _, kind := range state.Failures() {
		if !c.HasPreserved(kind) {
			if err := e.appendEntry(c, render.Message{Kind: kind, Text: state.Message}); err != nil {
				return err
			}
		}
		e.MarkVisible(c, kind)
	}
	return nil
}

// ReflectValidity mirrors the validity of field into its invalid attributes and
// then rebuilds its container. The computed snapshot is returned.
func (e *Engine) ReflectValidity(doc *dom.Document, field *html.Node) (constraint.State, error) {
	state := e.checker.Validity(doc, field)
	e.SetInvalid(field, !state.Valid())
	return state, e.FromState(doc, field, state)
}

// SetInvalid writes the accessibility invalid flag and the invalid marker.
func (e *Engine) SetInvalid(field *html.Node, invalid bool) {
	if !dom.IsElement(field) {
		return
	}
	value := "false"
	if invalid {
		value = "true"
	}
	dom.SetAttr(field, e.vocab.Invalid, value)
	dom.ToggleAttr(field, e.vocab.IsInvalid, invalid)
}

// RenderCustom shows a single custom kind in the container linked to target,
// typically a fieldset driven by a custom validator. A preserved entry of kind
// wins over message.
func (e *Engine) RenderCustom(doc *dom.Document, target *html.Node, kind, message string) error {
	c := e.Locate(doc, target)
	if c == nil {
		e.logger.Debug("no error container for custom validation", zap.String("target", fieldLabel(target)))
		return nil
	}
	defer e.project(doc, c)

	e.Clear(c)
	if !c.HasPreserved(kind) {
		if err := e.appendEntry(c, render.Message{Kind: kind, Text: message}); err != nil {
			return err
		}
	}
	e.MarkVisible(c, kind)
	return nil
}

// ClearFor clears the container linked to target, if any.
func (e *Engine) ClearFor(doc *dom.Document, target *html.Node) {
	c := e.Locate(doc, target)
	if c == nil {
		return
	}
	e.Clear(c)
	e.project(doc, c)
}

// effectiveState drops failures of an optional control left empty; only a
// custom error still counts there.
func (e *Engine) effectiveState(field *html.Node, state constraint.State) constraint.State {
	if state.Valid() || constraint.IsRequired(field) {
		return state
	}
	if !isEmpty(field) {
		return state
	}
	return state.Only(constraint.CustomError)
}

func isEmpty(field *html.Node) bool {
	for _, value := range constraint.Values(field) {
		if value != "" {
			return false
		}
	}
	return true
}

func (e *Engine) appendEntry(c *containers.Container, msg render.Message) error {
	node, err := e.renderer.RenderEntry(msg)
	if err != nil {
		e.logger.Error("render error entry",
			zap.String("container", c.ID()),
			zap.String("kind", msg.Kind),
			zap.Error(err),
		)
		return fmt.Errorf("reconcile: render %q entry: %w", msg.Kind, err)
	}
	c.Append(c.Adopt(node))
	return nil
}

func fieldLabel(n *html.Node) string {
	if id := dom.AttrOr(n, "id", ""); id != "" {
		return id
	}
	if name := dom.AttrOr(n, "name", ""); name != "" {
		return name
	}
	return dom.Tag(n)
}

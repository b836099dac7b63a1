// Package handling attaches error handling to a form: it turns form events into
// reconciliation passes, composes custom validators and merges server
// responses.
package handling

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/constraint"
	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/reconcile"
	"github.com/goliatone/go-formerrors/pkg/validators"
)

// ErrNotAForm is returned by Attach when the target is not a form element.
var ErrNotAForm = errors.New("handling: target is not a form")

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used by the handler.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithEngine injects the reconciliation engine. Defaults to reconcile.New
// with the handler logger.
func WithEngine(engine *reconcile.Engine) Option {
	return func(h *Handler) {
		h.engine = engine
	}
}

// WithRegistry overrides the validator registry used for discovery.
func WithRegistry(registry *validators.Registry) Option {
	return func(h *Handler) {
		h.registry = registry
	}
}

// WithValidators registers validators in addition to the discovered ones.
func WithValidators(vs ...validators.Validator) Option {
	return func(h *Handler) {
		h.validators = append(h.validators, vs...)
	}
}

// Result is the outcome of a submit pass.
type Result struct {
	Valid          bool
	PreventDefault bool
	// Focus is the element that should receive focus, nil when valid.
	Focus *html.Node
}

// Handler owns the error handling of one form. It is single-writer: events of
// the same form must be dispatched one at a time.
type Handler struct {
	doc        *dom.Document
	form       *html.Node
	engine     *reconcile.Engine
	registry   *validators.Registry
	logger     *zap.Logger
	validators []validators.Validator
}

// Attach prepares form for error handling. The form is marked novalidate,
// validators declared for it are discovered and the initial load pass runs.
func Attach(doc *dom.Document, form *html.Node, options ...Option) (*Handler, error) {
	if form == nil || form.DataAtom != atom.Form {
		return nil, ErrNotAForm
	}
	h := &Handler{
		doc:    doc,
		form:   form,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	if h.engine == nil {
		h.engine = reconcile.New(reconcile.WithLogger(h.logger))
	}
	if h.registry == nil {
		h.registry = validators.DefaultRegistry()
	}

	dom.SetAttr(form, "novalidate", "")

	discovered, err := h.registry.Discover(doc, h.engine)
	if err != nil {
		return nil, fmt.Errorf("handling: discover validators: %w", err)
	}
	for _, v := range discovered {
		if bound, ok := v.(validators.Bound); ok && bound.Form() != form {
			continue
		}
		h.validators = append(h.validators, v)
	}

	if err := h.engine.InitialLoad(doc, form); err != nil {
		return nil, fmt.Errorf("handling: initial load: %w", err)
	}
	h.logger.Debug("form attached",
		zap.String("form", dom.AttrOr(form, "id", "")),
		zap.Int("validators", len(h.validators)),
	)
	return h, nil
}

// Form returns the handled form.
func (h *Handler) Form() *html.Node {
	return h.form
}

// Engine returns the engine reconciling this form.
func (h *Handler) Engine() *reconcile.Engine {
	return h.engine
}

// Validators returns the composed validators in registration order.
func (h *Handler) Validators() []validators.Validator {
	return append([]validators.Validator(nil), h.validators...)
}

// Register composes v into the form.
func (h *Handler) Register(v validators.Validator) {
	if v != nil {
		h.validators = append(h.validators, v)
	}
}

// Dispatch routes a form event. Field events reflect the validity of their
// target when it opts in to the trigger and is not skipped; every field event
// is then forwarded to the listening validators. Submit events run Submit.
func (h *Handler) Dispatch(ev validators.Event) error {
	if ev.Type == validators.EventSubmit {
		_, err := h.Submit()
		return err
	}
	if !h.owns(ev.Target) {
		return nil
	}

	var err error
	if h.triggers(ev) {
		_, err = h.engine.ReflectValidity(h.doc, ev.Target)
	}
	for _, v := range h.validators {
		if listener, ok := v.(validators.Listener); ok {
			listener.HandleEvent(ev)
		}
	}
	return err
}

func (h *Handler) triggers(ev validators.Event) bool {
	policy := h.engine.Vocabulary().PolicyFor(ev.Target)
	if policy.Skip {
		return false
	}
	switch ev.Type {
	case validators.EventInput:
		return policy.OnInput
	case validators.EventChange:
		return policy.OnChange
	case validators.EventFocusout:
		return policy.OnBlur
	default:
		return false
	}
}

func (h *Handler) owns(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	return dom.Contains(h.form, n) || h.doc.FormOf(n) == h.form
}

// Submit reflects every control that is not skipped and evaluates the composed
// validators. Focus goes to the first invalid input in document order, or to
// the first failing validator's focus target.
func (h *Handler) Submit() (Result, error) {
	var (
		errs  []error
		focus *html.Node
		valid = true
	)
	for _, control := range h.doc.FormElements(h.form) {
		if !constraint.WillValidate(control) || h.engine.Vocabulary().PolicyFor(control).Skip {
			continue
		}
		state, err := h.engine.ReflectValidity(h.doc, control)
		if err != nil {
			errs = append(errs, err)
		}
		if state.Valid() {
			continue
		}
		valid = false
		if focus == nil && control.DataAtom == atom.Input {
			focus = control
		}
	}

	var fallback *html.Node
	for _, v := range h.validators {
		if v.ReportValidity() {
			continue
		}
		valid = false
		if fallback != nil {
			continue
		}
		if focuser, ok := v.(validators.Focuser); ok {
			fallback = focuser.FocusTarget()
		}
	}
	if focus == nil {
		focus = fallback
	}

	result := Result{Valid: valid, PreventDefault: !valid}
	if !valid {
		result.Focus = focus
	}
	h.logger.Debug("form submitted",
		zap.String("form", dom.AttrOr(h.form, "id", "")),
		zap.Bool("valid", valid),
	)
	return result, errors.Join(errs...)
}

// ApplyResponse merges a server response into the form. Only unprocessable
// responses are handled.
func (h *Handler) ApplyResponse(ctx context.Context, resp *http.Response) error {
	return h.engine.ApplyResponse(ctx, h.doc, h.form, resp)
}

// Package validators composes custom validation rules into a form. Each rule
// implements Validator; optional capabilities are discovered through the
// Listener, Focuser and Bound interfaces.
package validators

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/reconcile"
)

// EventType names the form events forwarded to validators.
type EventType string

const (
	EventInput    EventType = "input"
	EventChange   EventType = "change"
	EventFocusout EventType = "focusout"
	EventSubmit   EventType = "submit"
)

// Event is a form event. RelatedTarget is the element receiving focus on
// focusout, nil when focus leaves the document.
type Event struct {
	Type          EventType
	Target        *html.Node
	RelatedTarget *html.Node
}

// Validator reports, and renders, the validity of one rule.
type Validator interface {
	ReportValidity() bool
}

// Listener receives form events.
type Listener interface {
	HandleEvent(Event)
}

// Focuser names the element to focus when the rule fails.
type Focuser interface {
	FocusTarget() *html.Node
}

// Bound reports the form a validator belongs to.
type Bound interface {
	Form() *html.Node
}

// ConfigError reports a declaring element with a missing or invalid
// attribute.
type ConfigError struct {
	Element   string
	Attribute string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("validators: <%s> attribute %q %s", e.Element, e.Attribute, e.Reason)
}

// FieldValidator reflects the native validity of a single control.
type FieldValidator struct {
	doc    *dom.Document
	engine *reconcile.Engine
	field  *html.Node
}

var (
	_ Validator = (*FieldValidator)(nil)
	_ Focuser   = (*FieldValidator)(nil)
	_ Bound     = (*FieldValidator)(nil)
)

// NewFieldValidator binds field to engine.
func NewFieldValidator(doc *dom.Document, engine *reconcile.Engine, field *html.Node) *FieldValidator {
	return &FieldValidator{doc: doc, engine: engine, field: field}
}

// ReportValidity implements Validator.
func (v *FieldValidator) ReportValidity() bool {
	state, err := v.engine.ReflectValidity(v.doc, v.field)
	if err != nil {
		v.engine.Logger().Error("reflect field validity",
			zap.String("field", dom.AttrOr(v.field, "id", "")),
			zap.Error(err),
		)
	}
	return state.Valid()
}

// FocusTarget implements Focuser.
func (v *FieldValidator) FocusTarget() *html.Node {
	return v.field
}

// Form implements Bound.
func (v *FieldValidator) Form() *html.Node {
	return v.doc.FormOf(v.field)
}

package validators

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/constraint"
	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/reconcile"
)

// MinimumValuesTag is the element that declares a MinimumValues rule.
const MinimumValuesTag = "minimum-field-values-fieldset-validation"

// MinimumValues requires at least Min submitted values named FieldName in the
// form of a fieldset, e.g. "pick at least two topics".
type MinimumValues struct {
	doc     *dom.Document
	engine  *reconcile.Engine
	element *html.Node

	fieldset  *html.Node
	fieldName string
	min       int
	message   string
	kind      string
}

var (
	_ Validator = (*MinimumValues)(nil)
	_ Listener  = (*MinimumValues)(nil)
	_ Focuser   = (*MinimumValues)(nil)
	_ Bound     = (*MinimumValues)(nil)
)

// NewMinimumValues reads the rule from its declaring element. Missing
// attributes are configuration errors.
func NewMinimumValues(doc *dom.Document, engine *reconcile.Engine, element *html.Node) (*MinimumValues, error) {
	tag := dom.Tag(element)
	required := func(name string) (string, error) {
		value := strings.TrimSpace(dom.AttrOr(element, name, ""))
		if value == "" {
			return "", &ConfigError{Element: tag, Attribute: name, Reason: "is missing"}
		}
		return value, nil
	}

	fieldsetID, err := required("fieldset")
	if err != nil {
		return nil, err
	}
	fieldset := doc.GetElementByID(fieldsetID)
	if fieldset == nil {
		return nil, &ConfigError{Element: tag, Attribute: "fieldset", Reason: "does not resolve to an element"}
	}
	fieldName, err := required("field-name")
	if err != nil {
		return nil, err
	}
	rawMin, err := required("min")
	if err != nil {
		return nil, err
	}
	minimum, convErr := strconv.Atoi(rawMin)
	if convErr != nil || minimum < 0 {
		return nil, &ConfigError{Element: tag, Attribute: "min", Reason: "is not a non-negative integer"}
	}
	message, err := required("validation-message")
	if err != nil {
		return nil, err
	}
	kind, err := required("type")
	if err != nil {
		return nil, err
	}

	v := &MinimumValues{
		doc:       doc,
		engine:    engine,
		element:   element,
		fieldset:  fieldset,
		fieldName: fieldName,
		min:       minimum,
		message:   message,
		kind:      kind,
	}
	v.adoptAriaMirror()
	return v, nil
}

// adoptAriaMirror maps the error-container-aria attribute onto the container
// mirror attribute so the live region follows every reconciliation.
func (v *MinimumValues) adoptAriaMirror() {
	ariaID := strings.TrimSpace(dom.AttrOr(v.element, "error-container-aria", ""))
	if ariaID == "" {
		return
	}
	c := v.engine.Locate(v.doc, v.fieldset)
	if c == nil {
		return
	}
	mirror := v.engine.Vocabulary().Mirror
	if !dom.HasAttr(c.Node(), mirror) {
		dom.SetAttr(c.Node(), mirror, ariaID)
	}
}

// ReportValidity implements Validator.
func (v *MinimumValues) ReportValidity() bool {
	v.engine.ClearFor(v.doc, v.fieldset)
	if v.Count() >= v.min {
		return true
	}
	if err := v.engine.RenderCustom(v.doc, v.fieldset, v.kind, v.message); err != nil {
		v.engine.Logger().Error("render minimum values error",
			zap.String("field", v.fieldName),
			zap.Error(err),
		)
	}
	return false
}

// Count returns how many values named FieldName the form would submit.
func (v *MinimumValues) Count() int {
	form := v.Form()
	if form == nil {
		return 0
	}
	return len(constraint.FormData(v.doc, form)[v.fieldName])
}

// HandleEvent implements Listener. Change events count only when they come
// from inside the group; focusout only when focus leaves it. Both require the
// matching opt-in attribute on the declaring element.
func (v *MinimumValues) HandleEvent(ev Event) {
	policy := v.engine.Vocabulary().PolicyFor(v.element)
	if policy.Skip {
		return
	}
	switch ev.Type {
	case EventChange:
		if !policy.OnChange || ev.Target == v.element || !v.inside(ev.Target) {
			return
		}
	case EventFocusout:
		if !policy.OnBlur || !v.inside(ev.Target) || v.inside(ev.RelatedTarget) {
			return
		}
	default:
		return
	}
	v.ReportValidity()
}

func (v *MinimumValues) inside(n *html.Node) bool {
	if n == nil {
		return false
	}
	return dom.Contains(v.element, n) || dom.Contains(v.fieldset, n)
}

// FocusTarget implements Focuser with the first input of the group.
func (v *MinimumValues) FocusTarget() *html.Node {
	return dom.Find(v.fieldset, func(n *html.Node) bool {
		return n.DataAtom == atom.Input
	})
}

// Form implements Bound.
func (v *MinimumValues) Form() *html.Node {
	return v.doc.FormOf(v.fieldset)
}

// Kind returns the error kind rendered on failure.
func (v *MinimumValues) Kind() string {
	return v.kind
}

package reconcile

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formerrors/pkg/constraint"
	"github.com/goliatone/go-formerrors/pkg/dom"
)

// InitialLoad reflects the validity of every pre-filled control of form.
// Controls flagged as carrying server rendered errors are left untouched.
// Empty controls are skipped so first paint does not report missing values.
func (e *Engine) InitialLoad(doc *dom.Document, form *html.Node) error {
	var errs []error
	reflected := 0
	for _, control := range doc.FormElements(form) {
		if e.vocab.HasInitialErrors(control) {
			e.logger.Debug("skipping control with server rendered errors", zap.String("field", fieldLabel(control)))
			continue
		}
		if !constraint.WillValidate(control) || e.vocab.PolicyFor(control).Skip || isEmpty(control) {
			continue
		}
		if _, err := e.ReflectValidity(doc, control); err != nil {
			errs = append(errs, err)
		}
		reflected++
	}
	e.logger.Debug("initial load reconciled",
		zap.String("form", fieldLabel(form)),
		zap.Int("controls", reflected),
	)
	return errors.Join(errs...)
}

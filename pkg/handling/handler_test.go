package handling_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/containers"
	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/handling"
	"github.com/goliatone/go-formerrors/pkg/testsupport"
	"github.com/goliatone/go-formerrors/pkg/validators"
)

const profileForm = `
<form id="form" aria-describedby="form-errors">
  <div id="form-errors" data-error-container></div>
  <input id="name" name="name" required data-live-validation aria-describedby="name-errors">
  <div id="name-errors" data-error-container></div>
  <input id="email" name="email" type="email" data-focusout-validation aria-describedby="email-errors">
  <div id="email-errors" data-error-container></div>
  <select id="plan" name="plan" required data-change-validation aria-describedby="plan-errors">
    <option value="">Choose</option>
    <option value="pro">Pro</option>
  </select>
  <div id="plan-errors" data-error-container></div>
  <input id="nickname" name="nickname" required data-skip-validation data-live-validation aria-describedby="nickname-errors">
  <div id="nickname-errors" data-error-container></div>
  <minimum-field-values-fieldset-validation id="rule" fieldset="topics" field-name="topic" min="1"
      validation-message="Pick a topic" type="minimumTopics" data-change-validation>
    <fieldset id="topics" aria-describedby="topics-errors">
      <input id="t1" type="checkbox" name="topic" value="a">
      <input id="t2" type="checkbox" name="topic" value="b">
    </fieldset>
  </minimum-field-values-fieldset-validation>
  <div id="topics-errors" data-error-container></div>
</form>
<form id="other">
  <minimum-field-values-fieldset-validation fieldset="other-group" field-name="x" min="1"
      validation-message="Pick" type="minimumX">
    <fieldset id="other-group"></fieldset>
  </minimum-field-values-fieldset-validation>
</form>`

func attach(t *testing.T, markup string, options ...handling.Option) (*dom.Document, *handling.Handler) {
	t.Helper()
	doc := testsupport.MustParse(t, markup)
	h, err := handling.Attach(doc, testsupport.MustElement(t, doc, "form"), options...)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	return doc, h
}

func fill(t *testing.T, doc *dom.Document, id, value string) {
	t.Helper()
	dom.SetAttr(testsupport.MustElement(t, doc, id), "value", value)
}

func choose(t *testing.T, doc *dom.Document, id, value string) {
	t.Helper()
	option := dom.Find(testsupport.MustElement(t, doc, id), func(n *html.Node) bool {
		return n.DataAtom == atom.Option && dom.AttrOr(n, "value", "") == value
	})
	if option == nil {
		t.Fatalf("option %q not found in %s", value, id)
	}
	dom.SetAttr(option, "selected", "")
}

func TestAttach(t *testing.T) {
	doc, h := attach(t, profileForm)

	if !dom.HasAttr(h.Form(), "novalidate") {
		t.Fatalf("expected novalidate on the form")
	}
	if dom.HasAttr(testsupport.MustElement(t, doc, "other"), "novalidate") {
		t.Fatalf("other forms must not be touched")
	}
	if got := len(h.Validators()); got != 1 {
		t.Fatalf("expected one validator bound to the form, got %d", got)
	}
	if got := testsupport.Snapshot(doc, "name-errors"); got != nil {
		t.Fatalf("empty controls must not report on load, got %+v", got)
	}
}

func TestAttach_Errors(t *testing.T) {
	t.Run("not a form", func(t *testing.T) {
		doc := testsupport.MustParse(t, `<div id="form"></div>`)
		if _, err := handling.Attach(doc, testsupport.MustElement(t, doc, "form")); !errors.Is(err, handling.ErrNotAForm) {
			t.Fatalf("expected ErrNotAForm, got %v", err)
		}
	})

	t.Run("misconfigured validator", func(t *testing.T) {
		doc := testsupport.MustParse(t, strings.Replace(profileForm, `validation-message="Pick a topic"`, "", 1))
		_, err := handling.Attach(doc, testsupport.MustElement(t, doc, "form"))
		var cfgErr *validators.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
	})
}

func TestDispatch_Triggers(t *testing.T) {
	tests := []struct {
		name      string
		event     validators.EventType
		target    string
		container string
		reported  bool
	}{
		{name: "live input", event: validators.EventInput, target: "name", container: "name-errors", reported: true},
		{name: "input without live opt in", event: validators.EventInput, target: "email", container: "email-errors"},
		{name: "focusout opt in", event: validators.EventFocusout, target: "email", container: "email-errors", reported: true},
		{name: "focusout without opt in", event: validators.EventFocusout, target: "name", container: "name-errors"},
		{name: "change opt in", event: validators.EventChange, target: "plan", container: "plan-errors", reported: true},
		{name: "skip wins over live", event: validators.EventInput, target: "nickname", container: "nickname-errors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, h := attach(t, profileForm)
			fill(t, doc, "email", "not-an-email")

			if err := h.Dispatch(validators.Event{Type: tt.event, Target: testsupport.MustElement(t, doc, tt.target)}); err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			got := testsupport.Snapshot(doc, tt.container)
			if tt.reported && len(got) == 0 {
				t.Fatalf("expected %s to report", tt.container)
			}
			if !tt.reported && got != nil {
				t.Fatalf("expected %s to stay empty, got %+v", tt.container, got)
			}
		})
	}
}

func TestDispatch_ForwardsToListeners(t *testing.T) {
	doc, h := attach(t, profileForm)

	if err := h.Dispatch(validators.Event{Type: validators.EventChange, Target: testsupport.MustElement(t, doc, "t1")}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	want := []containers.EntryState{{Kind: "minimumTopics", Message: "Pick a topic", Visible: true}}
	if diff := cmp.Diff(want, testsupport.Snapshot(doc, "topics-errors")); diff != "" {
		t.Fatalf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch_IgnoresForeignTargets(t *testing.T) {
	doc, h := attach(t, profileForm+`<input id="stray" required data-live-validation aria-describedby="stray-errors"><div id="stray-errors" data-error-container></div>`)

	if err := h.Dispatch(validators.Event{Type: validators.EventInput, Target: testsupport.MustElement(t, doc, "stray")}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := testsupport.Snapshot(doc, "stray-errors"); got != nil {
		t.Fatalf("foreign control was reconciled: %+v", got)
	}
}

func TestSubmit(t *testing.T) {
	t.Run("invalid focuses first invalid input", func(t *testing.T) {
		doc, h := attach(t, profileForm)
		fill(t, doc, "email", "nope")

		result, err := h.Submit()
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if result.Valid || !result.PreventDefault {
			t.Fatalf("expected invalid submit, got %+v", result)
		}
		if result.Focus != testsupport.MustElement(t, doc, "name") {
			t.Fatalf("expected focus on name, got %v", result.Focus)
		}

		want := []containers.EntryState{{Kind: "valueMissing", Message: "Please fill out this field.", Visible: true}}
		if diff := cmp.Diff(want, testsupport.Snapshot(doc, "name-errors")); diff != "" {
			t.Fatalf("name mismatch (-want +got):\n%s", diff)
		}
		if got := testsupport.Snapshot(doc, "nickname-errors"); got != nil {
			t.Fatalf("skipped control was reconciled: %+v", got)
		}
		if got := testsupport.Snapshot(doc, "topics-errors"); len(got) != 1 {
			t.Fatalf("expected validator failure to render, got %+v", got)
		}
	})

	t.Run("validator supplies focus when fields are valid", func(t *testing.T) {
		doc, h := attach(t, profileForm)
		fill(t, doc, "name", "Ada")
		choose(t, doc, "plan", "pro")

		result, err := h.Submit()
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if result.Valid {
			t.Fatalf("expected the topic rule to fail")
		}
		if result.Focus != testsupport.MustElement(t, doc, "t1") {
			t.Fatalf("expected focus on the first topic, got %v", result.Focus)
		}
	})

	t.Run("valid", func(t *testing.T) {
		doc, h := attach(t, profileForm)
		fill(t, doc, "name", "Ada")
		choose(t, doc, "plan", "pro")
		dom.SetAttr(testsupport.MustElement(t, doc, "t2"), "checked", "")

		if err := h.Dispatch(validators.Event{Type: validators.EventSubmit}); err != nil {
			t.Fatalf("dispatch submit: %v", err)
		}
		got, err := h.Submit()
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if diff := cmp.Diff(handling.Result{Valid: true}, got); diff != "" {
			t.Fatalf("result mismatch (-want +got):\n%s", diff)
		}
		if dom.AttrOr(testsupport.MustElement(t, doc, "name"), "aria-invalid", "") != "false" {
			t.Fatalf("expected name to be flagged valid")
		}
	})
}

func TestApplyResponse(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	doc, h := attach(t, profileForm, handling.WithLogger(zap.New(core)))

	body := `[{"container_id":"email-errors","element_to_invalidate_id":"email","type":"taken","message":"Email is taken"},
	          {"container_id":"","element_to_invalidate_id":"","type":"rate","message":"Slow down"}]`
	if err := h.ApplyResponse(context.Background(), testsupport.UnprocessableResponse(body)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := []containers.EntryState{{Kind: "taken", Message: "Email is taken", Visible: true}}
	if diff := cmp.Diff(want, testsupport.Snapshot(doc, "email-errors")); diff != "" {
		t.Fatalf("email mismatch (-want +got):\n%s", diff)
	}
	wantForm := []containers.EntryState{{Kind: "rate", Message: "Slow down", Visible: true}}
	if diff := cmp.Diff(wantForm, testsupport.Snapshot(doc, "form-errors")); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if logs.FilterMessage("form attached").Len() != 1 {
		t.Fatalf("expected attach to be logged")
	}
}

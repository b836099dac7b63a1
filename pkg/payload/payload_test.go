package payload_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/payload"
)

func TestDecode(t *testing.T) {
	body := `[
	  {"container_id":"c1","element_to_invalidate_id":"f1","type":"already_taken","message":"Taken"},
	  {"container_id":"","element_to_invalidate_id":"","type":"form","message":"Nope","html_content":"<b>Nope</b>"}
	]`
	got, err := payload.Decode(strings.NewReader(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []payload.Error{
		{ContainerID: "c1", ElementID: "f1", Type: "already_taken", Message: "Taken"},
		{Type: "form", Message: "Nope", HTMLContent: "<b>Nope</b>"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"object":       `{"type":"x"}`,
		"empty body":   ``,
		"broken json":  `[{"type":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := payload.Decode(strings.NewReader(body)); !errors.Is(err, payload.ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDecode_SkipsUntypedEntries(t *testing.T) {
	body := `[
		{"container_id":"c1","type":"","message":"m"},
		{"container_id":"c1","element_to_invalidate_id":"f1","type":"taken","message":"Taken"},
		{"container_id":"c2","type":"  ","message":"m"}
	]`
	got, err := payload.Decode(strings.NewReader(body))
	if !errors.Is(err, payload.ErrUntypedEntry) {
		t.Fatalf("expected ErrUntypedEntry, got %v", err)
	}
	if errors.Is(err, payload.ErrMalformed) {
		t.Fatalf("skipped entries must not make the list malformed: %v", err)
	}
	want := []payload.Error{{ContainerID: "c1", ElementID: "f1", Type: "taken", Message: "Taken"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "entry 0") || !strings.Contains(err.Error(), "entry 2") {
		t.Fatalf("expected both skipped entries reported, got %v", err)
	}
}

func TestWriteUnprocessable(t *testing.T) {
	rec := httptest.NewRecorder()
	errs := []payload.Error{{ContainerID: "c1", ElementID: "f1", Type: "k", Message: "m"}}
	if err := payload.WriteUnprocessable(rec, errs); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	got, err := payload.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(errs, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	if err := payload.Encode(&buf, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected [], got %q", buf.String())
	}
}

const signupForm = `
<form id="signup">
  <input id="email" name="user[email]" aria-describedby="email-errors">
  <div id="email-errors" data-error-container></div>
  <input id="tag-0" name="tags[]">
  <input id="nick" name="nick">
</form>`

func TestFromFieldMessages(t *testing.T) {
	doc, err := dom.ParseString(signupForm)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form := doc.GetElementByID("signup")

	got := payload.FromFieldMessages(doc, form, map[string][]string{
		"/body/user/email": {"is taken", " is taken ", "is invalid"},
		"tags.3":           {"too long"},
		"nick":             {"   "},
		"unknown.path":     {"mystery"},
		"__all__":          {"try again"},
	})
	want := []payload.Error{
		{ContainerID: "email-errors", ElementID: "email", Type: "serverError", Message: "is taken"},
		{ContainerID: "email-errors", ElementID: "email", Type: "serverError-2", Message: "is invalid"},
		{ContainerID: "", ElementID: "", Type: "serverError", Message: "try again"},
		{ContainerID: "", ElementID: "tag-0", Type: "serverError-2", Message: "too long"},
		{ContainerID: "", ElementID: "", Type: "serverError-3", Message: "mystery"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}

const signupSchema = `{
  "type": "object",
  "required": ["email", "name"],
  "properties": {
    "email": {"type": "string", "minLength": 5},
    "name":  {"type": "string"},
    "age":   {"type": "number", "minimum": 18}
  }
}`

func TestFromSchema(t *testing.T) {
	var schema openapi3.Schema
	if err := schema.UnmarshalJSON([]byte(signupSchema)); err != nil {
		t.Fatalf("schema: %v", err)
	}

	got, err := payload.FromSchema(&schema, map[string]any{"email": "a@b", "age": float64(12)})
	if err != nil {
		t.Fatalf("from schema: %v", err)
	}
	type key struct{ Container, Element, Type string }
	keys := make([]key, 0, len(got))
	for _, entry := range got {
		if entry.Message == "" {
			t.Fatalf("entry without message: %+v", entry)
		}
		keys = append(keys, key{entry.ContainerID, entry.ElementID, entry.Type})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Element < keys[j].Element })

	want := []key{
		{"age-errors", "age", "minimum"},
		{"email-errors", "email", "minLength"},
		{"name-errors", "name", "required"},
	}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("schema errors mismatch (-want +got):\n%s", diff)
	}
}

func TestFromSchema_ValidAndCustomIDs(t *testing.T) {
	var schema openapi3.Schema
	if err := schema.UnmarshalJSON([]byte(signupSchema)); err != nil {
		t.Fatalf("schema: %v", err)
	}
	got, err := payload.FromSchema(&schema, map[string]any{"email": "ok@example.com", "name": "Ada"})
	if err != nil || got != nil {
		t.Fatalf("expected no entries, got %v (%v)", got, err)
	}

	got, err = payload.FromSchema(&schema, map[string]any{"email": "ok@example.com"},
		payload.WithIDFunc(func(name string) string { return "field-" + name }),
		payload.WithContainerIDFunc(func(name string) string { return "box-" + name }),
	)
	if err != nil {
		t.Fatalf("from schema: %v", err)
	}
	if len(got) != 1 || got[0].ElementID != "field-name" || got[0].ContainerID != "box-name" {
		t.Fatalf("unexpected entries %+v", got)
	}
}

const openapiDoc = `
openapi: 3.0.3
info: {title: Signup, version: "1.0"}
paths:
  /users:
    post:
      operationId: createUser
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email]
              properties:
                email: {type: string}
      responses:
        "201": {description: created}
`

func TestOperationSchema(t *testing.T) {
	schema, err := payload.OperationSchema(context.Background(), []byte(openapiDoc), "createUser")
	if err != nil {
		t.Fatalf("operation schema: %v", err)
	}
	if diff := cmp.Diff([]string{"email"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	if _, err := payload.OperationSchema(context.Background(), []byte(openapiDoc), "missing"); !errors.Is(err, payload.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
}

package vocabulary

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formerrors/pkg/dom"
)

func TestParse_YAMLOverridesKeepDefaults(t *testing.T) {
	raw := []byte(`
error_container: data-pf-error-container
error_type: " data-pf-error-type "
`)
	got, err := Parse(raw, "vocabulary.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := Default()
	want.ErrorContainer = "data-pf-error-container"
	want.ErrorType = "data-pf-error-type"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("vocabulary mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS_TOML(t *testing.T) {
	fsys := fstest.MapFS{
		"names.toml": {Data: []byte("preserve = \"data-pf-preserve\"\nvisible = \"data-pf-visible\"\n")},
	}
	got, err := LoadFS(fsys, "names.toml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Preserve != "data-pf-preserve" || got.Visible != "data-pf-visible" {
		t.Fatalf("unexpected overrides: %+v", got)
	}
	if got.DescribedBy != "aria-describedby" {
		t.Fatalf("expected default described-by, got %q", got.DescribedBy)
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte(`{}`), "names.json")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPolicyFor(t *testing.T) {
	doc, err := dom.ParseString(`<input id="f" data-live-validation data-skip-validation>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := Default().PolicyFor(doc.GetElementByID("f"))
	want := Policy{OnInput: true, Skip: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("policy mismatch (-want +got):\n%s", diff)
	}
}

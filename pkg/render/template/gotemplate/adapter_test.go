package gotemplate_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formerrors/pkg/render/template/gotemplate"
)

func TestEngine_RenderTemplateFromFS(t *testing.T) {
	files := fstest.MapFS{
		"entry.tmpl": {Data: []byte(`<li data-kind="{{ kind }}">{{ message }}</li>`)},
	}
	engine, err := gotemplate.New(gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	var sink strings.Builder
	got, err := engine.RenderTemplate("entry", map[string]any{"kind": "valueMissing", "message": "<b>x</b>"}, &sink)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<li data-kind="valueMissing">&lt;b&gt;x&lt;/b&gt;</li>`
	if got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
	if sink.String() != want {
		t.Fatalf("writer mismatch\nwant: %q\n got: %q", want, sink.String())
	}
}

func TestEngine_RenderDetectsInlineContent(t *testing.T) {
	engine, err := gotemplate.New(gotemplate.WithGlobalData(map[string]any{"icon": "!!"}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.Render(`<li>{{ icon }} {{ message }}</li>`, struct {
		Message string `json:"message"`
	}{Message: "Taken"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<li>!! Taken</li>` {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_MissingTemplate(t *testing.T) {
	engine, err := gotemplate.New(gotemplate.WithFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

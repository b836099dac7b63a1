// Package testsupport holds fixture and golden helpers shared by package tests.
package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formerrors/pkg/containers"
	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/vocabulary"
)

// MustParse parses inline markup into a document.
func MustParse(t *testing.T, markup string) *dom.Document {
	t.Helper()

	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

// LoadDocument reads an HTML fixture from disk.
func LoadDocument(t *testing.T, path string) *dom.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a document without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadDocumentFromPath(path string) (*dom.Document, error) {
	if path == "" {
		return nil, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse document: %w", err)
	}
	return doc, nil
}

// MustElement returns the element with id or fails the test.
func MustElement(t *testing.T, doc *dom.Document, id string) *html.Node {
	t.Helper()

	node := doc.GetElementByID(id)
	if node == nil {
		t.Fatalf("element %q not found", id)
	}
	return node
}

// Snapshot returns the entries of the container with id using the default
// vocabulary. A missing container yields nil.
func Snapshot(doc *dom.Document, id string) []containers.EntryState {
	return SnapshotWith(doc, vocabulary.Default(), id)
}

// SnapshotWith is Snapshot for a custom vocabulary.
func SnapshotWith(doc *dom.Document, vocab vocabulary.Vocabulary, id string) []containers.EntryState {
	return containers.NewLocator(doc, vocab).ByID(id).Snapshot()
}

// Visible filters a snapshot down to the visible entries.
func Visible(entries []containers.EntryState) []containers.EntryState {
	var out []containers.EntryState
	for _, entry := range entries {
		if entry.Visible {
			out = append(out, entry)
		}
	}
	return out
}

// UnprocessableResponse builds a 422 response carrying body.
func UnprocessableResponse(body string) *http.Response {
	return Response(http.StatusUnprocessableEntity, body)
}

// Response builds a response with status and body.
func Response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// WriteGolden writes data to a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden renders doc and diffs it against the golden at path, updating
// the golden instead when UPDATE_GOLDENS is set.
func CompareGolden(t *testing.T, path string, doc *dom.Document) {
	t.Helper()

	got := doc.String()
	if WriteGolden(t, path, []byte(got)) {
		return
	}
	want := string(MustReadGolden(t, path))
	if diff := cmp.Diff(strings.TrimSpace(want), strings.TrimSpace(got)); diff != "" {
		t.Fatalf("golden mismatch for %s (-want +got):\n%s", path, diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

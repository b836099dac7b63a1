package payload

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formerrors/pkg/containers"
	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/vocabulary"
)

// DefaultKind is the kind given to messages that carry no kind of their own.
const DefaultKind = "serverError"

// Option customises payload builders.
type Option func(*config)

type config struct {
	vocab           vocabulary.Vocabulary
	kind            string
	idFunc          func(name string) string
	containerIDFunc func(name string) string
}

// WithVocabulary sets the attribute scheme used to find field containers.
func WithVocabulary(vocab vocabulary.Vocabulary) Option {
	return func(cfg *config) {
		cfg.vocab = vocab.WithDefaults()
	}
}

// WithKind overrides DefaultKind.
func WithKind(kind string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(kind); trimmed != "" {
			cfg.kind = trimmed
		}
	}
}

// WithIDFunc maps a field name to the id of the element to invalidate.
func WithIDFunc(fn func(name string) string) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.idFunc = fn
		}
	}
}

// WithContainerIDFunc maps a field name to the id of its error container.
func WithContainerIDFunc(fn func(name string) string) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.containerIDFunc = fn
		}
	}
}

func newConfig(options []Option) config {
	cfg := config{
		vocab: vocabulary.Default(),
		kind:  DefaultKind,
		idFunc: func(name string) string {
			return name
		},
		containerIDFunc: func(name string) string {
			return name + "-errors"
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// FromFieldMessages converts a path keyed message map (go-errors style, with
// JSON pointers, dotted paths, wrapper segments and numeric indexes) into an
// error list for form. Paths are resolved against the name attribute of the
// form's controls; unresolved paths become form level entries with an empty
// container id so they land in the fallback container.
func FromFieldMessages(doc *dom.Document, form *html.Node, messages map[string][]string, options ...Option) []Error {
	if len(messages) == 0 {
		return nil
	}
	cfg := newConfig(options)
	locator := containers.NewLocator(doc, cfg.vocab)
	fields := collectControls(doc, form)

	paths := make([]string, 0, len(messages))
	for path := range messages {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	seen := make(map[string]map[string]int)
	var out []Error
	for _, rawPath := range paths {
		normalized := normalizeMessages(messages[rawPath])
		if len(normalized) == 0 {
			continue
		}

		var containerID, elementID string
		if mapped, formLevel := mapErrorPath(rawPath, fields); !formLevel {
			control := fields[mapped]
			elementID = dom.AttrOr(control, "id", "")
			containerID = locator.ContainerID(control)
		}
		for _, message := range normalized {
			out = append(out, Error{
				ContainerID: containerID,
				ElementID:   elementID,
				Type:        uniqueKind(seen, containerID, cfg.kind),
				Message:     message,
			})
		}
	}
	return out
}

// collectControls indexes the form's named controls by their dotted path. The
// first control wins for repeated names (radio groups, checkbox lists).
func collectControls(doc *dom.Document, form *html.Node) map[string]*html.Node {
	out := make(map[string]*html.Node)
	for _, control := range doc.FormElements(form) {
		name := strings.TrimSpace(dom.AttrOr(control, "name", ""))
		if name == "" {
			continue
		}
		path := strings.Join(parsePathSegments(name), ".")
		if path == "" {
			continue
		}
		if _, exists := out[path]; !exists {
			out[path] = control
		}
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, fieldPaths map[string]*html.Node) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	best := ""
	for _, variant := range buildSegmentVariants(segments) {
		if path := longestMatchingPath(variant, fieldPaths); segmentCount(path) > segmentCount(best) {
			best = path
		}
	}
	if best == "" {
		return "", true
	}
	return best, false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}
	// JSON pointer (#/a/b), JSONPath ($.a.b) and bare leading separators.
	clean = strings.TrimLeft(clean, "#/.$")

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func buildSegmentVariants(segments []string) [][]string {
	var variants [][]string
	seen := make(map[string]struct{}, 4)

	add := func(candidate []string) {
		if len(candidate) == 0 {
			return
		}
		key := strings.Join(candidate, ".")
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, append([]string(nil), candidate...))
	}

	noWrappers := dropWrapperSegments(segments)
	add(segments)
	add(noWrappers)
	add(stripNumericSegments(segments))
	add(stripNumericSegments(noWrappers))
	return variants
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestMatchingPath(segments []string, fieldPaths map[string]*html.Node) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := fieldPaths[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func segmentCount(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, ".") + 1
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}

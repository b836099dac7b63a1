package validators

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/reconcile"
)

// Factory builds a validator from its declaring element.
type Factory func(doc *dom.Document, engine *reconcile.Engine, element *html.Node) (Validator, error)

// Registry stores validator factories by declaring tag name, providing
// discovery and duplication safeguards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry returns a registry with the built-in validators.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(MinimumValuesTag, func(doc *dom.Document, engine *reconcile.Engine, element *html.Node) (Validator, error) {
		return NewMinimumValues(doc, engine, element)
	})
	return r
}

// Register adds a factory for tag. Duplicate tags return an error.
func (r *Registry) Register(tag string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("validators: factory is required")
	}
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return fmt.Errorf("validators: tag name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[tag]; exists {
		return fmt.Errorf("validators: %q already registered", tag)
	}
	r.factories[tag] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(tag string, factory Factory) {
	if err := r.Register(tag, factory); err != nil {
		panic(err)
	}
}

// Get retrieves the factory for tag.
func (r *Registry) Get(tag string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[strings.ToLower(tag)]
	if !ok {
		return nil, fmt.Errorf("validators: %q not registered", tag)
	}
	return factory, nil
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[strings.ToLower(tag)]
	return ok
}

// List returns the registered tags, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Discover builds a validator for every declaring element in doc, in document
// order. Elements that fail to build are reported together; the validators
// that did build are still returned.
func (r *Registry) Discover(doc *dom.Document, engine *reconcile.Engine) ([]Validator, error) {
	elements := dom.FindAll(doc.Root(), func(n *html.Node) bool {
		return r.Has(dom.Tag(n))
	})

	var (
		out  []Validator
		errs []error
	)
	for _, element := range elements {
		factory, err := r.Get(dom.Tag(element))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		validator, err := factory(doc, engine, element)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, validator)
	}
	return out, errors.Join(errs...)
}

package render

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans untrusted HTML before it is inserted into an entry.
type Sanitizer interface {
	Sanitize(string) string
}

// SanitizerFunc adapts a function to Sanitizer.
type SanitizerFunc func(string) string

// Sanitize implements Sanitizer.
func (f SanitizerFunc) Sanitize(s string) string {
	return f(s)
}

var (
	entryPolicyOnce sync.Once
	entryPolicy     *bluemonday.Policy
)

// DefaultSanitizer returns the shared UGC policy used for html_content.
func DefaultSanitizer() Sanitizer {
	return SanitizerFunc(sanitizeEntryMarkup)
}

func sanitizeEntryMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(entrySanitizer().Sanitize(trimmed))
}

func entrySanitizer() *bluemonday.Policy {
	entryPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		entryPolicy = policy
	})
	return entryPolicy
}

package formerrors

import (
	"embed"
	"io/fs"
)

//go:embed templates/formerrors/*.tmpl
var embeddedTemplates embed.FS

// Built-in entry template paths, relative to EmbeddedTemplates.
const (
	EntryTemplate        = "formerrors/entry.tmpl"
	CompactEntryTemplate = "formerrors/entry_compact.tmpl"
)

// EmbeddedTemplates exposes the built-in entry templates so themes can point
// their formerrors.entry key at them or callers can extend them.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

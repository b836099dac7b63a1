package render

import (
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formerrors/pkg/render/template"
)

// ThemeTemplateKey is the manifest template key holding the entry template.
const ThemeTemplateKey = "formerrors.entry"

// ErrThemeTemplateMissing reports a theme without an entry template.
var ErrThemeTemplateMissing = errors.New("render: theme has no " + ThemeTemplateKey + " template")

// ThemeTemplatePath resolves the entry template path of a selection. A variant
// override wins over the manifest default.
func ThemeTemplatePath(sel *theme.Selection) (string, error) {
	if sel == nil || sel.Manifest == nil {
		return "", ErrThemeTemplateMissing
	}
	if sel.Variant != "" {
		if variant, ok := sel.Manifest.Variants[sel.Variant]; ok {
			if path := strings.TrimSpace(variant.Templates[ThemeTemplateKey]); path != "" {
				return path, nil
			}
		}
	}
	if path := strings.TrimSpace(sel.Manifest.Templates[ThemeTemplateKey]); path != "" {
		return path, nil
	}
	return "", ErrThemeTemplateMissing
}

// FromTheme selects a theme and binds its entry template to engine.
func FromTheme(selector theme.ThemeSelector, themeName, variant string, engine template.TemplateRenderer, options ...Option) (*EngineTemplate, error) {
	if selector == nil {
		return nil, errors.New("render: theme selector is required")
	}
	sel, err := selector.Select(themeName, variant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %q: %w", themeName, err)
	}
	path, err := ThemeTemplatePath(sel)
	if err != nil {
		return nil, err
	}
	return NewEngineTemplate(engine, path, options...)
}

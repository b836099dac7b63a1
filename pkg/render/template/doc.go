// Package template defines the template engine seam entry renderers rely on.
// The gotemplate sub-package provides the pongo2-backed implementation.
package template

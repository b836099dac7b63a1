// Package vocabulary names the attributes the error handling layer reads and
// writes. A single scheme is used everywhere; callers that need different
// names load an override file instead of forking the code.
package vocabulary

import (
	"golang.org/x/net/html"

	"github.com/goliatone/go-formerrors/pkg/dom"
)

// Vocabulary lists every attribute name in use.
type Vocabulary struct {
	// DescribedBy links a field to its error container (space separated ids).
	DescribedBy string `yaml:"described_by" toml:"described_by"`
	// ErrorContainer flags a node as an error container.
	ErrorContainer string `yaml:"error_container" toml:"error_container"`
	// ErrorType carries the kind of an entry.
	ErrorType string `yaml:"error_type" toml:"error_type"`
	// Preserve marks an entry that survives reconciliation.
	Preserve string `yaml:"preserve" toml:"preserve"`
	// Visible marks the entry currently shown for its kind.
	Visible string `yaml:"visible" toml:"visible"`
	// ErrorMessage marks the message slot inside an entry template.
	ErrorMessage string `yaml:"error_message" toml:"error_message"`
	// Invalid reflects validity as "true"/"false".
	Invalid string `yaml:"invalid" toml:"invalid"`
	// IsInvalid is a boolean mirror of Invalid for styling hooks.
	IsInvalid string `yaml:"is_invalid" toml:"is_invalid"`
	// InitialErrors flags a field whose server errors are already rendered.
	InitialErrors string `yaml:"initial_errors" toml:"initial_errors"`
	// LiveValidation opts a field into validation on input.
	LiveValidation string `yaml:"live_validation" toml:"live_validation"`
	// ChangeValidation opts a field into validation on change.
	ChangeValidation string `yaml:"change_validation" toml:"change_validation"`
	// FocusoutValidation opts a field into validation on blur.
	FocusoutValidation string `yaml:"focusout_validation" toml:"focusout_validation"`
	// SkipValidation disables every validation trigger for a field.
	SkipValidation string `yaml:"skip_validation" toml:"skip_validation"`
	// Mirror names the id of a secondary container that projects this one.
	Mirror string `yaml:"mirror" toml:"mirror"`
}

// Default returns the canonical scheme.
func Default() Vocabulary {
	return Vocabulary{
		DescribedBy:        "aria-describedby",
		ErrorContainer:     "data-error-container",
		ErrorType:          "data-error-type",
		Preserve:           "data-preserve",
		Visible:            "data-visible",
		ErrorMessage:       "data-error-message",
		Invalid:            "aria-invalid",
		IsInvalid:          "data-is-invalid",
		InitialErrors:      "data-initial-load-errors",
		LiveValidation:     "data-live-validation",
		ChangeValidation:   "data-change-validation",
		FocusoutValidation: "data-focusout-validation",
		SkipValidation:     "data-skip-validation",
		Mirror:             "data-error-mirror",
	}
}

// WithDefaults fills empty names from the canonical scheme.
func (v Vocabulary) WithDefaults() Vocabulary {
	def := Default()
	fill := func(value *string, fallback string) {
		if *value == "" {
			*value = fallback
		}
	}
	fill(&v.DescribedBy, def.DescribedBy)
	fill(&v.ErrorContainer, def.ErrorContainer)
	fill(&v.ErrorType, def.ErrorType)
	fill(&v.Preserve, def.Preserve)
	fill(&v.Visible, def.Visible)
	fill(&v.ErrorMessage, def.ErrorMessage)
	fill(&v.Invalid, def.Invalid)
	fill(&v.IsInvalid, def.IsInvalid)
	fill(&v.InitialErrors, def.InitialErrors)
	fill(&v.LiveValidation, def.LiveValidation)
	fill(&v.ChangeValidation, def.ChangeValidation)
	fill(&v.FocusoutValidation, def.FocusoutValidation)
	fill(&v.SkipValidation, def.SkipValidation)
	fill(&v.Mirror, def.Mirror)
	return v
}

// Policy captures which triggers validate a field.
type Policy struct {
	OnInput  bool
	OnChange bool
	OnBlur   bool
	Skip     bool
}

// PolicyFor decodes the opt-in attributes of n.
func (v Vocabulary) PolicyFor(n *html.Node) Policy {
	return Policy{
		OnInput:  dom.HasAttr(n, v.LiveValidation),
		OnChange: dom.HasAttr(n, v.ChangeValidation),
		OnBlur:   dom.HasAttr(n, v.FocusoutValidation),
		Skip:     dom.HasAttr(n, v.SkipValidation),
	}
}

// HasInitialErrors reports whether n carries server-rendered errors.
func (v Vocabulary) HasInitialErrors(n *html.Node) bool {
	return dom.HasAttr(n, v.InitialErrors)
}

package constraint

import (
	"fmt"
	"strings"
)

// MessageContext carries the values a message formatter may interpolate.
type MessageContext struct {
	Kind      string
	InputType string
	Tag       string
	Limit     string
	Length    int
}

// Messages formats a human readable message for a failing kind.
type Messages func(ctx MessageContext) string

// DefaultMessages mirrors Chromium's English wording.
func DefaultMessages(ctx MessageContext) string {
	switch ctx.Kind {
	case ValueMissing:
		switch {
		case ctx.InputType == "checkbox":
			return "Please check this box if you want to proceed."
		case ctx.InputType == "radio":
			return "Please select one of these options."
		case ctx.Tag == "select":
			return "Please select an item in the list."
		case ctx.InputType == "file":
			return "Please select a file."
		default:
			return "Please fill out this field."
		}
	case TypeMismatch:
		if ctx.InputType == "url" {
			return "Please enter a URL."
		}
		return "Please enter an email address."
	case PatternMismatch:
		return "Please match the requested format."
	case TooLong:
		return fmt.Sprintf("Please shorten this text to %s characters or less (you are currently using %d characters).", ctx.Limit, ctx.Length)
	case TooShort:
		return fmt.Sprintf("Please lengthen this text to %s characters or more (you are currently using %d characters).", ctx.Limit, ctx.Length)
	case RangeUnderflow:
		return fmt.Sprintf("Value must be greater than or equal to %s.", ctx.Limit)
	case RangeOverflow:
		return fmt.Sprintf("Value must be less than or equal to %s.", ctx.Limit)
	case StepMismatch:
		return "Please enter a valid value."
	case BadInput:
		if ctx.InputType == "number" || ctx.InputType == "range" {
			return "Please enter a number."
		}
		return "Please enter a valid value."
	default:
		return ""
	}
}

// OverrideMessages layers static per-kind text over base. Entries may use the
// {limit} and {length} placeholders.
func OverrideMessages(base Messages, overrides map[string]string) Messages {
	if base == nil {
		base = DefaultMessages
	}
	if len(overrides) == 0 {
		return base
	}
	copied := make(map[string]string, len(overrides))
	for kind, text := range overrides {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			copied[kind] = trimmed
		}
	}
	return func(ctx MessageContext) string {
		text, ok := copied[ctx.Kind]
		if !ok {
			return base(ctx)
		}
		replacer := strings.NewReplacer(
			"{limit}", ctx.Limit,
			"{length}", fmt.Sprint(ctx.Length),
		)
		return replacer.Replace(text)
	}
}

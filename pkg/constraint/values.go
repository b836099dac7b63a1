package constraint

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/dom"
)

// InputType returns the normalised type of an input element ("text" when
// absent or unknown to the caller).
func InputType(n *html.Node) string {
	if n == nil || n.DataAtom != atom.Input {
		return ""
	}
	kind := strings.ToLower(strings.TrimSpace(dom.AttrOr(n, "type", "text")))
	if kind == "" {
		return "text"
	}
	return kind
}

// IsCheckable reports whether n is a checkbox or radio input.
func IsCheckable(n *html.Node) bool {
	switch InputType(n) {
	case "checkbox", "radio":
		return true
	default:
		return false
	}
}

// Value returns the current value of a control. Checkables report their value
// only while checked; select elements report the first selected option.
func Value(n *html.Node) string {
	values := Values(n)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Values returns every value a control contributes (several for
// select[multiple]).
func Values(n *html.Node) []string {
	if !dom.IsElement(n) {
		return nil
	}
	switch n.DataAtom {
	case atom.Input:
		if IsCheckable(n) {
			if !dom.HasAttr(n, "checked") {
				return nil
			}
			return []string{dom.AttrOr(n, "value", "on")}
		}
		return []string{dom.AttrOr(n, "value", "")}
	case atom.Textarea:
		return []string{dom.TextContent(n)}
	case atom.Select:
		var out []string
		for _, option := range SelectedOptions(n) {
			out = append(out, OptionValue(option))
		}
		return out
	default:
		return nil
	}
}

// SetValue writes a value into a control. Checkables are checked when value
// matches their own value, select options are selected by value.
func SetValue(n *html.Node, value string) {
	if !dom.IsElement(n) {
		return
	}
	switch n.DataAtom {
	case atom.Input:
		if IsCheckable(n) {
			dom.ToggleAttr(n, "checked", value != "" && value == dom.AttrOr(n, "value", "on"))
			return
		}
		dom.SetAttr(n, "value", value)
	case atom.Textarea:
		dom.SetTextContent(n, value)
	case atom.Select:
		multiple := dom.HasAttr(n, "multiple")
		matched := false
		for _, option := range options(n) {
			selected := OptionValue(option) == value && (multiple || !matched)
			if selected {
				matched = true
			}
			dom.ToggleAttr(option, "selected", selected)
		}
	}
}

// OptionValue returns the value attribute of an option, falling back to its
// whitespace-collapsed text.
func OptionValue(option *html.Node) string {
	if value, ok := dom.Attr(option, "value"); ok {
		return value
	}
	return strings.Join(strings.Fields(dom.TextContent(option)), " ")
}

// SelectedOptions applies the selectedness rules of a select element.
func SelectedOptions(sel *html.Node) []*html.Node {
	opts := options(sel)
	var selected []*html.Node
	for _, option := range opts {
		if dom.HasAttr(option, "selected") {
			selected = append(selected, option)
		}
	}
	if dom.HasAttr(sel, "multiple") {
		return selected
	}
	if len(selected) > 0 {
		return selected[len(selected)-1:]
	}
	if displaySize(sel) > 1 {
		return nil
	}
	for _, option := range opts {
		if !dom.HasAttr(option, "disabled") {
			return []*html.Node{option}
		}
	}
	return nil
}

func options(sel *html.Node) []*html.Node {
	return dom.FindAll(sel, func(n *html.Node) bool {
		return n.DataAtom == atom.Option
	})
}

func displaySize(sel *html.Node) int {
	raw, ok := dom.Attr(sel, "size")
	if !ok {
		return 1
	}
	size := 0
	for _, r := range strings.TrimSpace(raw) {
		if r < '0' || r > '9' {
			return 1
		}
		size = size*10 + int(r-'0')
	}
	if size == 0 {
		return 1
	}
	return size
}

// IsDisabled reports whether n is disabled directly or through a disabled
// ancestor fieldset (outside that fieldset's first legend).
func IsDisabled(n *html.Node) bool {
	if dom.HasAttr(n, "disabled") {
		return true
	}
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.DataAtom != atom.Fieldset || !dom.HasAttr(cur, "disabled") {
			continue
		}
		legend := dom.ChildByTag(cur, atom.Legend)
		if legend != nil && dom.Contains(legend, n) {
			continue
		}
		return true
	}
	return false
}

// FormData returns the successful controls of form as url.Values, following
// the form data set construction rules used by FormData.
func FormData(doc *dom.Document, form *html.Node) url.Values {
	values := url.Values{}
	for _, el := range doc.FormElements(form) {
		name := dom.AttrOr(el, "name", "")
		if name == "" || IsDisabled(el) {
			continue
		}
		switch el.DataAtom {
		case atom.Input:
			switch InputType(el) {
			case "submit", "reset", "button", "image", "file":
				continue
			}
		case atom.Textarea, atom.Select:
		default:
			continue
		}
		for _, value := range Values(el) {
			values.Add(name, value)
		}
	}
	return values
}

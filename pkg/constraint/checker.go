package constraint

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/dom"
)

var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

const dateLayout = "2006-01-02"

// Option configures a Checker.
type Option func(*Checker)

// WithMessages replaces the message formatter.
func WithMessages(messages Messages) Option {
	return func(c *Checker) {
		if messages != nil {
			c.messages = messages
		}
	}
}

// WithMessageOverrides layers static per-kind messages over the defaults.
func WithMessageOverrides(overrides map[string]string) Option {
	return func(c *Checker) {
		c.messages = OverrideMessages(c.messages, overrides)
	}
}

// Checker evaluates constraint validation for controls of one document. It
// also keeps custom validity messages, the equivalent of setCustomValidity.
type Checker struct {
	messages Messages

	mu     sync.RWMutex
	custom map[*html.Node]string

	patterns sync.Map
}

// NewChecker constructs a Checker with Chromium-style default messages.
func NewChecker(options ...Option) *Checker {
	c := &Checker{
		messages: DefaultMessages,
		custom:   make(map[*html.Node]string),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// SetCustomValidity flags n with a customError carrying message. An empty
// message clears the flag.
func (c *Checker) SetCustomValidity(n *html.Node, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if message == "" {
		delete(c.custom, n)
		return
	}
	c.custom[n] = message
}

func (c *Checker) customMessage(n *html.Node) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.custom[n]
}

// WillValidate reports whether n is a candidate for constraint validation.
func WillValidate(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	switch n.DataAtom {
	case atom.Input:
		switch InputType(n) {
		case "hidden", "button", "submit", "reset", "image":
			return false
		}
		if dom.HasAttr(n, "readonly") {
			return false
		}
	case atom.Select:
	case atom.Textarea:
		if dom.HasAttr(n, "readonly") {
			return false
		}
	default:
		return false
	}
	return !IsDisabled(n)
}

// IsRequired reports whether n carries the required attribute.
func IsRequired(n *html.Node) bool {
	return dom.HasAttr(n, "required")
}

// Validity computes the snapshot for n. doc is needed to resolve radio groups.
func (c *Checker) Validity(doc *dom.Document, n *html.Node) State {
	if !WillValidate(n) {
		return State{}
	}

	state := State{}
	first := MessageContext{}
	record := func(kind string, ctx MessageContext) {
		if state.Has(kind) {
			return
		}
		state.set(kind)
		if first.Kind == "" {
			ctx.Kind = kind
			first = ctx
		}
	}

	base := MessageContext{InputType: InputType(n), Tag: dom.Tag(n)}
	value := Value(n)

	if IsRequired(n) && c.missing(doc, n, value) {
		record(ValueMissing, base)
	}

	if n.DataAtom == atom.Input && !IsCheckable(n) && value != "" {
		c.checkText(n, value, base, record)
	}
	if n.DataAtom == atom.Textarea && value != "" {
		checkLength(n, value, base, record)
	}

	custom := c.customMessage(n)
	if custom != "" {
		state.set(CustomError)
		state.Message = custom
		return state
	}
	if !state.Valid() {
		state.Message = c.messages(first)
	}
	return state
}

func (c *Checker) missing(doc *dom.Document, n *html.Node, value string) bool {
	switch {
	case InputType(n) == "radio":
		return !radioGroupChecked(doc, n)
	case IsCheckable(n):
		return !dom.HasAttr(n, "checked")
	case n.DataAtom == atom.Select:
		return len(SelectedOptions(n)) == 0 || value == ""
	default:
		return value == ""
	}
}

func radioGroupChecked(doc *dom.Document, n *html.Node) bool {
	if dom.HasAttr(n, "checked") {
		return true
	}
	name := dom.AttrOr(n, "name", "")
	if name == "" || doc == nil {
		return false
	}
	owner := doc.FormOf(n)
	for _, other := range dom.FindAll(doc.Root(), func(candidate *html.Node) bool {
		return InputType(candidate) == "radio" && dom.AttrOr(candidate, "name", "") == name
	}) {
		if doc.FormOf(other) == owner && dom.HasAttr(other, "checked") {
			return true
		}
	}
	return false
}

func (c *Checker) checkText(n *html.Node, value string, base MessageContext, record func(string, MessageContext)) {
	switch base.InputType {
	case "email":
		candidates := []string{value}
		if dom.HasAttr(n, "multiple") {
			candidates = strings.Split(value, ",")
		}
		for _, candidate := range candidates {
			if !emailPattern.MatchString(strings.TrimSpace(candidate)) {
				record(TypeMismatch, base)
				break
			}
		}
	case "url":
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || (parsed.Host == "" && parsed.Opaque == "") {
			record(TypeMismatch, base)
		}
	}

	if pattern, ok := dom.Attr(n, "pattern"); ok && pattern != "" {
		if re := c.compile(pattern); re != nil {
			candidates := []string{value}
			if base.InputType == "email" && dom.HasAttr(n, "multiple") {
				candidates = strings.Split(value, ",")
			}
			for _, candidate := range candidates {
				if !re.MatchString(strings.TrimSpace(candidate)) {
					record(PatternMismatch, base)
					break
				}
			}
		}
	}

	switch base.InputType {
	case "number", "range":
		checkNumber(n, value, base, record)
	case "date":
		checkDate(n, value, base, record)
	default:
		checkLength(n, value, base, record)
	}
}

func (c *Checker) compile(pattern string) *regexp.Regexp {
	if cached, ok := c.patterns.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		// Invalid patterns are ignored, as browsers do.
		re = nil
	}
	c.patterns.Store(pattern, re)
	return re
}

func checkLength(n *html.Node, value string, base MessageContext, record func(string, MessageContext)) {
	length := utf8.RuneCountInString(value)
	if limit, ok := intAttr(n, "maxlength"); ok && length > limit {
		ctx := base
		ctx.Limit = strconv.Itoa(limit)
		ctx.Length = length
		record(TooLong, ctx)
	}
	if limit, ok := intAttr(n, "minlength"); ok && length < limit {
		ctx := base
		ctx.Limit = strconv.Itoa(limit)
		ctx.Length = length
		record(TooShort, ctx)
	}
}

func checkNumber(n *html.Node, value string, base MessageContext, record func(string, MessageContext)) {
	number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		record(BadInput, base)
		return
	}

	minRaw, hasMin := dom.Attr(n, "min")
	minValue, minErr := strconv.ParseFloat(minRaw, 64)
	if hasMin && minErr == nil && number < minValue {
		ctx := base
		ctx.Limit = minRaw
		record(RangeUnderflow, ctx)
	}
	maxRaw, hasMax := dom.Attr(n, "max")
	if maxValue, err := strconv.ParseFloat(maxRaw, 64); hasMax && err == nil && number > maxValue {
		ctx := base
		ctx.Limit = maxRaw
		record(RangeOverflow, ctx)
	}

	step := 1.0
	if raw, ok := dom.Attr(n, "step"); ok {
		if strings.EqualFold(strings.TrimSpace(raw), "any") {
			return
		}
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			step = parsed
		}
	}
	stepBase := 0.0
	if hasMin && minErr == nil {
		stepBase = minValue
	}
	quotient := (number - stepBase) / step
	if math.Abs(quotient-math.Round(quotient)) > 1e-9 {
		record(StepMismatch, base)
	}
}

func checkDate(n *html.Node, value string, base MessageContext, record func(string, MessageContext)) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		record(BadInput, base)
		return
	}
	if raw, ok := dom.Attr(n, "min"); ok {
		if limit, err := time.Parse(dateLayout, raw); err == nil && date.Before(limit) {
			ctx := base
			ctx.Limit = raw
			record(RangeUnderflow, ctx)
		}
	}
	if raw, ok := dom.Attr(n, "max"); ok {
		if limit, err := time.Parse(dateLayout, raw); err == nil && date.After(limit) {
			ctx := base
			ctx.Limit = raw
			record(RangeOverflow, ctx)
		}
	}
}

func intAttr(n *html.Node, name string) (int, bool) {
	raw, ok := dom.Attr(n, name)
	if !ok {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

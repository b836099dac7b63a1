// Package tui fills a parsed form interactively. Every answer is written into
// the tree and reconciled, and the control is asked again with its visible
// error messages until it is valid.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formerrors/pkg/constraint"
	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/reconcile"
)

// DefaultMaxAttempts bounds how often an invalid control is prompted again.
const DefaultMaxAttempts = 5

// Theme captures optional prefixes applied to printed lines.
type Theme struct {
	ErrorPrefix string
}

// Option configures a Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}

// WithMaxAttempts sets how many answers a control may receive before Fill
// gives up. Zero or less keeps prompting.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		f.maxAttempts = n
	}
}

// Filler prompts for every control of a form.
type Filler struct {
	engine      *reconcile.Engine
	driver      PromptDriver
	logger      *zap.Logger
	theme       Theme
	maxAttempts int
}

// NewFiller builds a Filler reconciling through engine.
func NewFiller(engine *reconcile.Engine, options ...Option) *Filler {
	f := &Filler{
		engine:      engine,
		logger:      zap.NewNop(),
		theme:       Theme{ErrorPrefix: "✗ "},
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.engine == nil {
		f.engine = reconcile.New(reconcile.WithLogger(f.logger))
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Fill prompts for each candidate control of form in document order. Radio
// groups are asked once. Controls marked to skip validation are left alone.
func (f *Filler) Fill(ctx context.Context, doc *dom.Document, form *html.Node) error {
	groups := map[string]bool{}
	for _, control := range doc.FormElements(form) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !constraint.WillValidate(control) || f.engine.Vocabulary().PolicyFor(control).Skip {
			continue
		}
		if constraint.InputType(control) == "radio" {
			name := dom.AttrOr(control, "name", "")
			if name != "" && groups[name] {
				continue
			}
			groups[name] = true
		}
		if err := f.fillControl(ctx, doc, form, control); err != nil {
			return err
		}
	}
	return nil
}

// answerCheck counts the rejected answers of one control. Text prompts run it
// as their validator so survey re-asks in place; fillControl re-checks the
// final answer for drivers and prompt kinds without a validator.
type answerCheck struct {
	filler   *Filler
	doc      *dom.Document
	form     *html.Node
	control  *html.Node
	label    string
	attempts int
	gaveUp   bool
}

func (c *answerCheck) validate(answer string) error {
	constraint.SetValue(c.control, answer)
	messages, err := c.filler.reflect(c.doc, c.form, c.control)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}
	c.reject(messages)
	if c.exhausted() {
		// accept so the prompt returns; fillControl reports the failure
		c.gaveUp = true
		return nil
	}
	return errors.New(strings.Join(messages, "\n"))
}

func (c *answerCheck) reject(messages []string) {
	c.attempts++
	c.filler.logger.Debug("answer rejected",
		zap.String("field", c.label),
		zap.Int("attempt", c.attempts),
		zap.Strings("messages", messages),
	)
}

func (c *answerCheck) exhausted() bool {
	return c.filler.maxAttempts > 0 && c.attempts >= c.filler.maxAttempts
}

func (f *Filler) fillControl(ctx context.Context, doc *dom.Document, form, control *html.Node) error {
	check := &answerCheck{filler: f, doc: doc, form: form, control: control, label: labelFor(doc, control)}
	for {
		if err := f.ask(ctx, doc, form, control, check); err != nil {
			return err
		}
		messages, err := f.reflect(doc, form, control)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			return nil
		}
		if !check.gaveUp {
			check.reject(messages)
		}
		for _, msg := range messages {
			if err := f.driver.Info(ctx, f.theme.ErrorPrefix+msg); err != nil {
				return err
			}
		}
		if check.exhausted() {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, check.label)
		}
	}
}

func (f *Filler) ask(ctx context.Context, doc *dom.Document, form, control *html.Node, check *answerCheck) error {
	label := check.label
	help := dom.AttrOr(control, "placeholder", dom.AttrOr(control, "title", ""))

	switch control.DataAtom {
	case atom.Select:
		return f.askSelect(ctx, control, label, help)
	case atom.Textarea:
		value, err := f.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: constraint.Value(control), Help: help, Validator: check.validate})
		if err != nil {
			return err
		}
		constraint.SetValue(control, value)
		return nil
	}

	switch constraint.InputType(control) {
	case "checkbox":
		checked, err := f.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: dom.HasAttr(control, "checked"), Help: help})
		if err != nil {
			return err
		}
		dom.ToggleAttr(control, "checked", checked)
		return nil
	case "radio":
		return f.askRadio(ctx, doc, form, control, label, help)
	case "password":
		value, err := f.driver.Password(ctx, InputConfig{Message: label, Help: help, Validator: check.validate})
		if err != nil {
			return err
		}
		constraint.SetValue(control, value)
		return nil
	default:
		value, err := f.driver.Input(ctx, InputConfig{Message: label, Default: constraint.Value(control), Help: help, Validator: check.validate})
		if err != nil {
			return err
		}
		constraint.SetValue(control, value)
		return nil
	}
}

func (f *Filler) askSelect(ctx context.Context, control *html.Node, label, help string) error {
	opts := dom.FindAll(control, func(n *html.Node) bool {
		return n.DataAtom == atom.Option
	})
	labels := make([]string, len(opts))
	var selected []int
	for i, option := range opts {
		labels[i] = optionLabel(option)
		if dom.HasAttr(option, "selected") {
			selected = append(selected, i)
		}
	}

	if dom.HasAttr(control, "multiple") {
		picked, err := f.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: labels, Defaults: selected, Help: help})
		if err != nil {
			return err
		}
		chosen := make(map[int]bool, len(picked))
		for _, idx := range picked {
			chosen[idx] = true
		}
		for i, option := range opts {
			dom.ToggleAttr(option, "selected", chosen[i])
		}
		return nil
	}

	defaultIndex := -1
	if len(selected) > 0 {
		defaultIndex = selected[len(selected)-1]
	}
	idx, err := f.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: defaultIndex, Help: help})
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(opts) {
		constraint.SetValue(control, constraint.OptionValue(opts[idx]))
	}
	return nil
}

func (f *Filler) askRadio(ctx context.Context, doc *dom.Document, form, control *html.Node, label, help string) error {
	group := radioGroup(doc, form, control)
	labels := make([]string, len(group))
	defaultIndex := -1
	for i, radio := range group {
		labels[i] = labelFor(doc, radio)
		if dom.HasAttr(radio, "checked") {
			defaultIndex = i
		}
	}
	if name := dom.AttrOr(control, "name", ""); name != "" {
		label = name
	}
	idx, err := f.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: defaultIndex, Help: help})
	if err != nil {
		return err
	}
	for i, radio := range group {
		dom.ToggleAttr(radio, "checked", i == idx)
	}
	return nil
}

// reflect reconciles control (every member for a radio group) and returns the
// messages a user should see, empty when valid.
func (f *Filler) reflect(doc *dom.Document, form, control *html.Node) ([]string, error) {
	members := []*html.Node{control}
	if constraint.InputType(control) == "radio" {
		members = radioGroup(doc, form, control)
	}

	var messages []string
	seen := map[string]bool{}
	add := func(msg string) {
		msg = strings.TrimSpace(msg)
		if msg == "" || seen[msg] {
			return
		}
		seen[msg] = true
		messages = append(messages, msg)
	}

	for _, member := range members {
		state, err := f.engine.ReflectValidity(doc, member)
		if err != nil {
			return nil, err
		}
		if state.Valid() {
			continue
		}
		c := f.engine.Locate(doc, member)
		if c == nil {
			add(state.Message)
			continue
		}
		for _, entry := range c.Snapshot() {
			if entry.Visible {
				add(entry.Message)
			}
		}
	}
	return messages, nil
}

func radioGroup(doc *dom.Document, form, control *html.Node) []*html.Node {
	name := dom.AttrOr(control, "name", "")
	if name == "" {
		return []*html.Node{control}
	}
	var group []*html.Node
	for _, el := range doc.FormElements(form) {
		if constraint.InputType(el) == "radio" && dom.AttrOr(el, "name", "") == name {
			group = append(group, el)
		}
	}
	return group
}

// labelFor resolves the prompt text of a control: its label element, then
// aria-label, name and id.
func labelFor(doc *dom.Document, control *html.Node) string {
	if id := dom.AttrOr(control, "id", ""); id != "" {
		label := dom.Find(doc.Root(), func(n *html.Node) bool {
			return n.DataAtom == atom.Label && dom.AttrOr(n, "for", "") == id
		})
		if text := collapse(dom.TextContent(label)); text != "" {
			return text
		}
	}
	if wrapping := dom.Closest(control.Parent, func(n *html.Node) bool { return n.DataAtom == atom.Label }); wrapping != nil {
		if text := collapse(dom.TextContent(wrapping)); text != "" {
			return text
		}
	}
	for _, attr := range []string{"aria-label", "name", "id", "value"} {
		if value := strings.TrimSpace(dom.AttrOr(control, attr, "")); value != "" {
			return value
		}
	}
	return dom.Tag(control)
}

func optionLabel(option *html.Node) string {
	if text := collapse(dom.TextContent(option)); text != "" {
		return text
	}
	return constraint.OptionValue(option)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

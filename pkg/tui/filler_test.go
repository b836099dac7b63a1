package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formerrors/pkg/constraint"
	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/reconcile"
	"github.com/goliatone/go-formerrors/pkg/testsupport"
)

// stubDriver answers from scripted values. Unless ignoreValidators is set it
// treats text validators the way survey does: a rejected answer is recorded
// and the same prompt takes the next scripted value.
type stubDriver struct {
	inputs           []string
	selectIdx        []int
	multiIdx         [][]int
	confirm          []bool
	textAreas        []string
	passwords        []string
	ignoreValidators bool
	infoMessages     []string
	rejections       []string
	prompts          []string
	inputPos         int
	selectPos        int
	multiPos         int
	confirmPos       int
	textPos          int
	passPos          int
}

func (s *stubDriver) answer(kind, message string, values []string, pos *int, validator func(string) error) (string, error) {
	for {
		s.prompts = append(s.prompts, message)
		if *pos >= len(values) {
			return "", fmt.Errorf("no %s scripted", kind)
		}
		val := values[*pos]
		*pos++
		if validator == nil || s.ignoreValidators {
			return val, nil
		}
		if err := validator(val); err != nil {
			s.rejections = append(s.rejections, err.Error())
			continue
		}
		return val, nil
	}
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	return s.answer("input", cfg.Message, s.inputs, &s.inputPos, cfg.Validator)
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	return s.answer("password", cfg.Message, s.passwords, &s.passPos, cfg.Validator)
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	return s.answer("textarea", cfg.Message, s.textAreas, &s.textPos, cfg.Validator)
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

const signup = `
<form id="form">
  <label for="email">Email address</label>
  <input id="email" name="email" type="email" required aria-describedby="email-errors">
  <div id="email-errors" data-error-container></div>
  <input id="secret" name="secret" type="password" minlength="4">
  <select id="plan" name="plan">
    <option value="free">Free</option>
    <option value="pro">Pro</option>
  </select>
  <select id="tags" name="tags" multiple>
    <option>go</option>
    <option>html</option>
  </select>
  <input type="radio" name="size" value="s" id="size-s"><label for="size-s">Small</label>
  <input type="radio" name="size" value="l" id="size-l"><label for="size-l">Large</label>
  <textarea id="bio" name="bio"></textarea>
  <label><input id="terms" type="checkbox" name="terms" required> Accept terms</label>
  <input id="internal" name="internal" data-skip-validation>
  <input type="hidden" name="token" value="x">
</form>`

func TestFill_RepromptsWithVisibleMessages(t *testing.T) {
	cases := []struct {
		name             string
		ignoreValidators bool
		wantRejections   []string
		wantInfo         []string
	}{
		{
			name: "validated in prompt",
			wantRejections: []string{
				"Please fill out this field.",
				"Please enter an email address.",
			},
			wantInfo: []string{
				"! Please check this box if you want to proceed.",
			},
		},
		{
			name:             "driver without validators",
			ignoreValidators: true,
			wantInfo: []string{
				"! Please fill out this field.",
				"! Please enter an email address.",
				"! Please check this box if you want to proceed.",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := testsupport.MustParse(t, signup)
			form := testsupport.MustElement(t, doc, "form")
			driver := &stubDriver{
				inputs:           []string{"", "nope", "ada@example.com"},
				passwords:        []string{"hunter2"},
				selectIdx:        []int{1, 1},
				multiIdx:         [][]int{{0, 1}},
				textAreas:        []string{"hello"},
				confirm:          []bool{false, true},
				ignoreValidators: tc.ignoreValidators,
			}

			filler := NewFiller(reconcile.New(), WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}))
			if err := filler.Fill(context.Background(), doc, form); err != nil {
				t.Fatalf("fill: %v", err)
			}

			if diff := cmp.Diff(tc.wantRejections, driver.rejections); diff != "" {
				t.Fatalf("rejections mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantInfo, driver.infoMessages); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
			wantPrompts := []string{
				"Email address", "Email address", "Email address",
				"secret", "plan", "tags", "size", "bio",
				"Accept terms", "Accept terms",
			}
			if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
				t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
			}

			got := constraint.FormData(doc, form)
			want := map[string][]string{
				"email":  {"ada@example.com"},
				"secret": {"hunter2"},
				"plan":   {"pro"},
				"tags":   {"go", "html"},
				"size":   {"l"},
				"bio":    {"hello"},
				"terms":  {"on"},
				"token":  {"x"},
			}
			delete(got, "internal")
			if diff := cmp.Diff(want, map[string][]string(got)); diff != "" {
				t.Fatalf("form data mismatch (-want +got):\n%s", diff)
			}
			if got := testsupport.Snapshot(doc, "email-errors"); got != nil {
				t.Fatalf("expected email errors cleared, got %+v", got)
			}
		})
	}
}

func TestFill_TooManyAttempts(t *testing.T) {
	cases := []struct {
		name             string
		ignoreValidators bool
		wantRejections   []string
		wantInfo         []string
	}{
		{
			name:           "validated in prompt",
			wantRejections: []string{"Please match the requested format."},
			wantInfo:       []string{"✗ Please match the requested format."},
		},
		{
			name:             "driver without validators",
			ignoreValidators: true,
			wantInfo: []string{
				"✗ Please match the requested format.",
				"✗ Please match the requested format.",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := testsupport.MustParse(t, `<form id="form"><input id="code" name="code" required pattern="[0-9]{4}"></form>`)
			driver := &stubDriver{inputs: []string{"a", "b"}, ignoreValidators: tc.ignoreValidators}

			filler := NewFiller(reconcile.New(), WithPromptDriver(driver), WithMaxAttempts(2))
			err := filler.Fill(context.Background(), doc, testsupport.MustElement(t, doc, "form"))
			if !errors.Is(err, ErrTooManyAttempts) {
				t.Fatalf("expected ErrTooManyAttempts, got %v", err)
			}
			if dom.AttrOr(testsupport.MustElement(t, doc, "code"), "aria-invalid", "") != "true" {
				t.Fatalf("expected the control to stay flagged invalid")
			}
			if got := constraint.Value(testsupport.MustElement(t, doc, "code")); got != "b" {
				t.Fatalf("expected the last answer kept, got %q", got)
			}
			if diff := cmp.Diff(tc.wantRejections, driver.rejections); diff != "" {
				t.Fatalf("rejections mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantInfo, driver.infoMessages); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFill_ContextCancelled(t *testing.T) {
	doc := testsupport.MustParse(t, signup)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFiller(nil, WithPromptDriver(&stubDriver{})).Fill(ctx, doc, testsupport.MustElement(t, doc, "form"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

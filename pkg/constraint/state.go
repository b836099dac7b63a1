// Package constraint evaluates HTML constraint validation for controls in a
// parsed tree, producing the same named failure flags a browser exposes on
// ValidityState.
package constraint

// Failure kinds in ValidityState declaration order.
const (
	ValueMissing    = "valueMissing"
	TypeMismatch    = "typeMismatch"
	PatternMismatch = "patternMismatch"
	TooLong         = "tooLong"
	TooShort        = "tooShort"
	RangeUnderflow  = "rangeUnderflow"
	RangeOverflow   = "rangeOverflow"
	StepMismatch    = "stepMismatch"
	BadInput        = "badInput"
	CustomError     = "customError"
)

// Kinds lists every failure kind in evaluation order. The "valid" meta flag is
// deliberately absent.
var Kinds = []string{
	ValueMissing,
	TypeMismatch,
	PatternMismatch,
	TooLong,
	TooShort,
	RangeUnderflow,
	RangeOverflow,
	StepMismatch,
	BadInput,
	CustomError,
}

// State is a validity snapshot for one control.
type State struct {
	failed  map[string]bool
	Message string
}

// NewState builds a snapshot from failing kinds. Unknown kinds are ignored.
func NewState(message string, failing ...string) State {
	state := State{Message: message}
	for _, kind := range failing {
		state.set(kind)
	}
	return state
}

func (s *State) set(kind string) {
	if !knownKind(kind) {
		return
	}
	if s.failed == nil {
		s.failed = make(map[string]bool, 2)
	}
	s.failed[kind] = true
}

// Has reports whether kind is failing.
func (s State) Has(kind string) bool {
	return s.failed[kind]
}

// Valid reports whether no kind is failing.
func (s State) Valid() bool {
	return len(s.failed) == 0
}

// Failures returns the failing kinds in evaluation order.
func (s State) Failures() []string {
	if s.Valid() {
		return nil
	}
	out := make([]string, 0, len(s.failed))
	for _, kind := range Kinds {
		if s.failed[kind] {
			out = append(out, kind)
		}
	}
	return out
}

// Only returns a copy restricted to the given kinds. The message is kept only
// when something is still failing.
func (s State) Only(kinds ...string) State {
	out := State{}
	for _, kind := range kinds {
		if s.failed[kind] {
			out.set(kind)
		}
	}
	if !out.Valid() {
		out.Message = s.Message
	}
	return out
}

func knownKind(kind string) bool {
	for _, candidate := range Kinds {
		if candidate == kind {
			return true
		}
	}
	return false
}

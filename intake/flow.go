// Package intake is a declarative multi-step wizard engine. A flow is an
// ordered table of step descriptors; each step carries a predicate deciding
// whether it applies given the answers accumulated so far. Advancing is a pure
// reducer over an explicit state value, so branching is a testable table
// rather than per-step conditionals with hidden component state.
package intake

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSteps signals a flow defined without steps.
	ErrNoSteps = errors.New("intake: flow has no steps")
	// ErrDuplicateStep signals two steps sharing a key.
	ErrDuplicateStep = errors.New("intake: duplicate step key")
	// ErrFlowComplete signals an answer submitted after the flow finished.
	ErrFlowComplete = errors.New("intake: flow already complete")
	// ErrEmptyAnswer signals a blank answer to a required step.
	ErrEmptyAnswer = errors.New("intake: answer must not be empty")
)

// Answers is the accumulated key/value state of a flow run.
type Answers map[string]string

// clone gives the reducer its purity: states never share answer maps.
func (a Answers) clone() Answers {
	out := make(Answers, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Step describes one wizard question.
type Step struct {
	// Key names the answer slot; unique within a flow.
	Key string
	// Prompt is the question shown to the operator.
	Prompt string
	// AppliesWhen decides whether this step is asked given the answers so
	// far. Nil means always applicable.
	AppliesWhen func(Answers) bool
	// Validate rejects a bad answer before it is recorded. Nil means any
	// non-empty answer is accepted.
	Validate func(value string) error
	// Optional allows an empty answer, recorded as "".
	Optional bool
}

func (s Step) applies(answers Answers) bool {
	return s.AppliesWhen == nil || s.AppliesWhen(answers)
}

// State is one point in a flow run. Values are immutable; Reduce returns a
// fresh state and never touches its input.
type State struct {
	Answers Answers
	// Index points at the current step, meaningless once Complete.
	Index    int
	Complete bool
}

// Flow is an immutable, reusable step table. One Flow value serves any number
// of concurrent runs since all run state lives in State.
type Flow struct {
	steps []Step
}

// NewFlow validates and freezes the step table.
func NewFlow(steps ...Step) (*Flow, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		if step.Key == "" {
			return nil, fmt.Errorf("intake: step with empty key")
		}
		if _, dup := seen[step.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, step.Key)
		}
		seen[step.Key] = struct{}{}
	}
	return &Flow{steps: steps}, nil
}

// Steps returns the table size, for progress display.
func (f *Flow) Steps() int { return len(f.steps) }

// Start positions a fresh run at the first applicable step.
func (f *Flow) Start() State {
	return f.advance(State{Answers: Answers{}}, 0)
}

// Current returns the step the run is waiting on. ok is false once the flow
// is complete.
func (f *Flow) Current(state State) (Step, bool) {
	if state.Complete || state.Index < 0 || state.Index >= len(f.steps) {
		return Step{}, false
	}
	return f.steps[state.Index], true
}

// Reduce records an answer for the current step and advances past any steps
// whose predicates no longer apply. It is pure: the input state is unchanged,
// and the same (state, answer) pair always yields the same result.
func (f *Flow) Reduce(state State, answer string) (State, error) {
	step, ok := f.Current(state)
	if !ok {
		return State{}, ErrFlowComplete
	}

	if answer == "" && !step.Optional {
		return State{}, fmt.Errorf("%w: step %s", ErrEmptyAnswer, step.Key)
	}
	if answer != "" && step.Validate != nil {
		if err := step.Validate(answer); err != nil {
			return State{}, fmt.Errorf("intake: step %s: %w", step.Key, err)
		}
	}

	next := State{Answers: state.Answers.clone(), Index: state.Index}
	next.Answers[step.Key] = answer
	return f.advance(next, state.Index+1), nil
}

// advance walks forward from idx to the next applicable step, completing the
// run when none remains. Skipped steps leave no answer slot at all, so
// predicates downstream can distinguish "not asked" from "answered empty".
func (f *Flow) advance(state State, idx int) State {
	for ; idx < len(f.steps); idx++ {
		if f.steps[idx].applies(state.Answers) {
			state.Index = idx
			return state
		}
	}
	state.Index = len(f.steps)
	state.Complete = true
	return state
}

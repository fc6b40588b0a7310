// Package dialog implements the finite-state machine shared by every
// guided data-entry flow. One generic Spec value describes a dialog type;
// there is no per-type machine.
package dialog

import (
	"context"
	"log/slog"

	"github.com/m3rciful/shelfbot/core/logger"
)

// Field describes one input collected by a dialog.
type Field struct {
	Name     string
	Prompt   string
	Validate func(string) error
}

// Spec is the immutable definition of one dialog type. A Spec exists once
// per type for the process lifetime and is never mutated.
type Spec struct {
	Type   Type
	Fields []Field

	// Confirm renders the terminal confirmation message from collected values.
	Confirm func(values []string) string
	// Build assembles the terminal result from collected values. Values have
	// passed their field validators, so Build never fails.
	Build func(values []string) Result
}

// Transition applies an event to a state. It is total: every pair not
// explicitly matched returns the input state unchanged, logged as a
// diagnostic only. Terminal states absorb all events.
func (s Spec) Transition(state State, ev Event) State {
	if s.IsTerminal(state) {
		return state
	}
	if state.Step == stepStarted {
		if ev.Kind == EventStart {
			return State{Step: 0}
		}
		return s.unexpected(state, ev)
	}
	input, ok := ev.Input()
	if !ok {
		return s.unexpected(state, ev)
	}
	values := make([]string, 0, len(state.Values)+1)
	values = append(values, state.Values...)
	values = append(values, input)
	return State{Step: state.Step + 1, Values: values}
}

// Prompt returns the text to show the user upon entering a state. The
// pre-start state has no prompt; the terminal prompt is the confirmation.
func (s Spec) Prompt(state State) (string, bool) {
	switch {
	case state.Step == stepStarted:
		return "", false
	case state.Step < len(s.Fields):
		return s.Fields[state.Step].Prompt, true
	default:
		return s.Confirm(state.Values), true
	}
}

// IsTerminal reports whether every field has been collected.
func (s Spec) IsTerminal(state State) bool {
	return state.Step >= len(s.Fields)
}

// TerminalResult returns the committed payload once the FSM reached its
// final state. Repeated calls return the same payload.
func (s Spec) TerminalResult(state State) (Result, bool) {
	if !s.IsTerminal(state) {
		return Result{}, false
	}
	return s.Build(state.Values), true
}

// ValidateInput runs the pending field's validator against the event's
// input. Events that carry no input, and states that await no field, pass.
func (s Spec) ValidateInput(state State, ev Event) error {
	if state.Step < 0 || state.Step >= len(s.Fields) {
		return nil
	}
	input, ok := ev.Input()
	if !ok {
		return nil
	}
	if validate := s.Fields[state.Step].Validate; validate != nil {
		return validate(input)
	}
	return nil
}

func (s Spec) unexpected(state State, ev Event) State {
	logger.Debug(context.Background(), "dialog", "transition.unexpected",
		slog.String("dialog_type", string(s.Type)),
		slog.Int("step", state.Step),
		slog.String("event_kind", string(ev.Kind)),
	)
	return state
}

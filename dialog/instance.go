package dialog

import "errors"

// Outcome is what a single step invocation reports back to the router:
// an optional message for the user (prompt, validation error, or terminal
// confirmation) and, once the dialog completes, its result.
type Outcome struct {
	Message string  `json:"message,omitempty"`
	Result  *Result `json:"result,omitempty"`
}

// Instance hosts one dialog's state. It is the unit a worker runs: the
// router never sees the State inside, only Outcomes.
type Instance struct {
	spec  Spec
	state State
}

// NewInstance creates an instance in the initial state.
func NewInstance(spec Spec) *Instance {
	return &Instance{spec: spec, state: Initial()}
}

// Step validates the event, advances the FSM, and describes what to tell
// the user. A completed instance keeps returning the same result without
// a message, so redelivered events are harmless.
func (i *Instance) Step(ev Event) Outcome {
	if res, ok := i.spec.TerminalResult(i.state); ok {
		return Outcome{Result: &res}
	}

	if err := i.spec.ValidateInput(i.state, ev); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return Outcome{Message: verr.Message}
		}
		return Outcome{Message: err.Error()}
	}

	i.state = i.spec.Transition(i.state, ev)

	var out Outcome
	if msg, ok := i.spec.Prompt(i.state); ok {
		out.Message = msg
	}
	if res, ok := i.spec.TerminalResult(i.state); ok {
		out.Result = &res
	}
	return out
}

// State exposes the current FSM state for inspection in tests.
func (i *Instance) State() State {
	return i.state
}

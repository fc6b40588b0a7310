package dialog

import (
	"reflect"
	"testing"
)

func TestTransitionIsTotal(t *testing.T) {
	spec := Specs()[TypeBook]
	states := []State{
		Initial(),
		{Step: 0},
		{Step: 1, Values: []string{"Dune"}},
		{Step: 2, Values: []string{"Dune", "Herbert"}},
		{Step: 3, Values: []string{"Dune", "Herbert", "5"}},
	}
	events := []Event{Start(), TextProvided("x"), CallbackProvided("y"), {Kind: "bogus"}}

	for _, st := range states {
		for _, ev := range events {
			next := spec.Transition(st, ev)
			if next.Step < stepStarted || next.Step > len(spec.Fields) {
				t.Errorf("Transition(%+v, %+v) produced out-of-range step %d", st, ev, next.Step)
			}
		}
	}
}

func TestTransitionUnmatchedIsNoop(t *testing.T) {
	spec := Specs()[TypeBook]
	tests := []struct {
		name  string
		state State
		event Event
	}{
		{"start on pre-start with text", Initial(), TextProvided("hello")},
		{"start event mid-dialog", State{Step: 1, Values: []string{"Dune"}}, Start()},
		{"unknown kind", State{Step: 0}, Event{Kind: "bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := spec.Transition(tt.state, tt.event)
			if !reflect.DeepEqual(next, tt.state) {
				t.Errorf("Transition = %+v, want unchanged %+v", next, tt.state)
			}
		})
	}
}

func TestTerminalStateAbsorbsEvents(t *testing.T) {
	spec := Specs()[TypeBook]
	terminal := State{Step: 3, Values: []string{"Dune", "Herbert", "5"}}
	for _, ev := range []Event{Start(), TextProvided("again"), CallbackProvided("z")} {
		next := spec.Transition(terminal, ev)
		if !reflect.DeepEqual(next, terminal) {
			t.Fatalf("terminal state changed by %+v: %+v", ev, next)
		}
	}
	first, ok := spec.TerminalResult(terminal)
	if !ok {
		t.Fatal("expected terminal result")
	}
	second, _ := spec.TerminalResult(terminal)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("terminal result not stable: %+v vs %+v", first, second)
	}
	if first.Book == nil || first.Book.Title != "Dune" || first.Book.Author != "Herbert" || first.Book.Rating != 5 {
		t.Fatalf("unexpected result %+v", first)
	}
}

func TestBookWalkthrough(t *testing.T) {
	spec := Specs()[TypeBook]
	st := Initial()

	steps := []struct {
		event      Event
		wantPrompt string
	}{
		{Start(), "Enter title"},
		{TextProvided("Dune"), "Enter author"},
		{TextProvided("Herbert"), "Enter rating"},
		{TextProvided("5"), "Added book Dune by Herbert with rating 5"},
	}
	for n, step := range steps {
		st = spec.Transition(st, step.event)
		prompt, ok := spec.Prompt(st)
		if !ok || prompt != step.wantPrompt {
			t.Fatalf("step %d: prompt = %q (%v), want %q", n, prompt, ok, step.wantPrompt)
		}
	}
	if !spec.IsTerminal(st) {
		t.Fatal("expected terminal state after all fields")
	}
}

func TestMovieWalkthrough(t *testing.T) {
	spec := Specs()[TypeMovie]
	st := Initial()
	for _, ev := range []Event{Start(), TextProvided("Alien"), TextProvided("1979"), TextProvided("5")} {
		st = spec.Transition(st, ev)
	}
	res, ok := spec.TerminalResult(st)
	if !ok || res.Movie == nil {
		t.Fatalf("expected movie result, got %+v", res)
	}
	if res.Movie.Title != "Alien" || res.Movie.Year != 1979 || res.Movie.Rating != 5 {
		t.Fatalf("unexpected movie %+v", res.Movie)
	}
	prompt, _ := spec.Prompt(st)
	if prompt != "Added movie Alien (1979) with rating 5" {
		t.Fatalf("confirmation = %q", prompt)
	}
}

func TestQuoteWalkthrough(t *testing.T) {
	spec := Specs()[TypeQuote]
	st := Initial()
	for _, ev := range []Event{Start(), TextProvided("Fear is the mind-killer"), TextProvided("Dune"), TextProvided("Herbert")} {
		st = spec.Transition(st, ev)
	}
	res, ok := spec.TerminalResult(st)
	if !ok || res.Quote == nil {
		t.Fatalf("expected quote result, got %+v", res)
	}
	prompt, _ := spec.Prompt(st)
	want := `Added quote: "Fear is the mind-killer" from Dune by Herbert`
	if prompt != want {
		t.Fatalf("confirmation = %q, want %q", prompt, want)
	}
}

func TestPreStartHasNoPrompt(t *testing.T) {
	spec := Specs()[TypeBook]
	if prompt, ok := spec.Prompt(Initial()); ok {
		t.Fatalf("pre-start state should have no prompt, got %q", prompt)
	}
}

func TestResultType(t *testing.T) {
	tests := []struct {
		result Result
		want   Type
	}{
		{Result{Book: &Book{}}, TypeBook},
		{Result{Movie: &Movie{}}, TypeMovie},
		{Result{Quote: &Quote{}}, TypeQuote},
	}
	for _, tt := range tests {
		if got := tt.result.Type(); got != tt.want {
			t.Errorf("Type() = %v, want %v", got, tt.want)
		}
	}
}

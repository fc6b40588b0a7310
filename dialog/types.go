package dialog

import "strconv"

// Type identifies a dialog type.
type Type string

const (
	TypeBook  Type = "book"
	TypeMovie Type = "movie"
	TypeQuote Type = "quote"
)

// EventKind discriminates dialog events.
type EventKind string

const (
	// EventStart opens a freshly created dialog.
	EventStart EventKind = "start"
	// EventText carries a free-text reply from the user.
	EventText EventKind = "text"
	// EventCallback carries a callback-button payload.
	EventCallback EventKind = "callback"
)

// Event is a single dialog input derived from a transport update.
// It carries no dialog identity; the router supplies that.
type Event struct {
	Kind EventKind `json:"kind"`
	Text string    `json:"text,omitempty"`
	Data string    `json:"data,omitempty"`
}

// Start returns the event that opens a dialog.
func Start() Event {
	return Event{Kind: EventStart}
}

// TextProvided wraps a free-text reply.
func TextProvided(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// CallbackProvided wraps a callback payload.
func CallbackProvided(data string) Event {
	return Event{Kind: EventCallback, Data: data}
}

// Input returns the user-supplied value carried by the event, if any.
func (e Event) Input() (string, bool) {
	switch e.Kind {
	case EventText:
		return e.Text, true
	case EventCallback:
		return e.Data, true
	default:
		return "", false
	}
}

// Book is a committed book record.
type Book struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Rating int    `json:"rating"`
}

// Movie is a committed movie record.
type Movie struct {
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Rating int    `json:"rating"`
}

// Quote is a committed quote record.
type Quote struct {
	Text   string `json:"text"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Result is the terminal payload of a completed dialog.
// Exactly one field is set, matching the dialog type that produced it.
type Result struct {
	Book  *Book  `json:"book,omitempty"`
	Movie *Movie `json:"movie,omitempty"`
	Quote *Quote `json:"quote,omitempty"`
}

// Type reports which dialog type produced the result.
func (r Result) Type() Type {
	switch {
	case r.Book != nil:
		return TypeBook
	case r.Movie != nil:
		return TypeMovie
	default:
		return TypeQuote
	}
}

// State is the FSM position plus the values collected so far.
// Step stepStarted precedes the first prompt; step i awaits field i;
// step len(fields) is terminal.
type State struct {
	Step   int      `json:"step"`
	Values []string `json:"values,omitempty"`
}

const stepStarted = -1

// Initial returns the state of a freshly created dialog.
func Initial() State {
	return State{Step: stepStarted}
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

package dialog

import "fmt"

// Specs returns the fixed set of dialog definitions keyed by type.
func Specs() map[Type]Spec {
	return map[Type]Spec{
		TypeBook:  bookSpec(),
		TypeMovie: movieSpec(),
		TypeQuote: quoteSpec(),
	}
}

func bookSpec() Spec {
	return Spec{
		Type: TypeBook,
		Fields: []Field{
			{Name: "title", Prompt: "Enter title", Validate: ValidateNonEmpty},
			{Name: "author", Prompt: "Enter author", Validate: ValidateNonEmpty},
			{Name: "rating", Prompt: "Enter rating", Validate: ValidateRating},
		},
		Confirm: func(v []string) string {
			return fmt.Sprintf("Added book %s by %s with rating %s", v[0], v[1], v[2])
		},
		Build: func(v []string) Result {
			return Result{Book: &Book{Title: v[0], Author: v[1], Rating: mustAtoi(v[2])}}
		},
	}
}

func movieSpec() Spec {
	return Spec{
		Type: TypeMovie,
		Fields: []Field{
			{Name: "title", Prompt: "Enter title", Validate: ValidateNonEmpty},
			{Name: "year", Prompt: "Enter year", Validate: ValidateYear},
			{Name: "rating", Prompt: "Enter rating", Validate: ValidateRating},
		},
		Confirm: func(v []string) string {
			return fmt.Sprintf("Added movie %s (%s) with rating %s", v[0], v[1], v[2])
		},
		Build: func(v []string) Result {
			return Result{Movie: &Movie{Title: v[0], Year: mustAtoi(v[1]), Rating: mustAtoi(v[2])}}
		},
	}
}

func quoteSpec() Spec {
	return Spec{
		Type: TypeQuote,
		Fields: []Field{
			{Name: "text", Prompt: "Enter text", Validate: ValidateNonEmpty},
			{Name: "title", Prompt: "Enter title", Validate: ValidateNonEmpty},
			{Name: "author", Prompt: "Enter author", Validate: ValidateNonEmpty},
		},
		Confirm: func(v []string) string {
			return fmt.Sprintf("Added quote: %q from %s by %s", v[0], v[1], v[2])
		},
		Build: func(v []string) Result {
			return Result{Quote: &Quote{Text: v[0], Title: v[1], Author: v[2]}}
		},
	}
}

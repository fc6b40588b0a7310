package bot

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/shelfbot/core/telegram"
	"github.com/m3rciful/shelfbot/core/telegram/commands"
	"github.com/m3rciful/shelfbot/core/telegram/router"
)

// BuildRegistry registers every user-facing command.
func BuildRegistry(h *Commands) *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Show available commands",
	})
	reg.RegisterCommand("/add_book", commands.Command{
		Handler:     h.AddBook,
		Description: "Add a book to your collection",
	})
	reg.RegisterCommand("/add_movie", commands.Command{
		Handler:     h.AddMovie,
		Description: "Add a movie to your collection",
	})
	reg.RegisterCommand("/add_quote", commands.Command{
		Handler:     h.AddQuote,
		Description: "Add a quote to your collection",
	})
	reg.RegisterCommand("/books", commands.Command{
		Handler:     h.Books,
		Description: "List your books",
	})
	reg.RegisterCommand("/movies", commands.Command{
		Handler:     h.Movies,
		Description: "List your movies",
	})
	reg.RegisterCommand("/quotes", commands.Command{
		Handler:     h.Quotes,
		Description: "List your quotes",
	})
	reg.RegisterCommand("/reset", commands.Command{
		Handler:     h.Reset,
		Description: "Cancel the current dialog",
	})

	// Stray button presses from stale keyboards get a toast instead of
	// silence, so the client does not keep the spinner forever.
	reg.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	})

	return reg
}

// Routes wires text and callback updates through the dialog-aware routers.
// Commands are resolved via text lookup so an active dialog always gets
// first claim on the update.
func Routes(r *Router, reg *tg.Registry) []tg.Route {
	routes := router.TextRoutes(r, reg, router.TextOptions{})
	routes = append(routes, router.CallbackRoute(r, reg, router.CallbackOptions{}))
	return routes
}

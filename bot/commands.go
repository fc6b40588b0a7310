package bot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shelfbot/collection"
	tghelpers "github.com/m3rciful/shelfbot/core/telegram/helpers"
	"github.com/m3rciful/shelfbot/dialog"
)

const helpText = "Use /add_book, /add_movie or /add_quote to add a new item. " +
	"Use /books, /movies or /quotes to list your items."

// Commands builds the bot's command handlers around the router and the
// collection store.
type Commands struct {
	router *Router
	store  collection.Store
}

func NewCommands(router *Router, store collection.Store) *Commands {
	return &Commands{router: router, store: store}
}

func (h *Commands) Start(c tele.Context) error {
	return tghelpers.SendText(c, helpText)
}

func (h *Commands) AddBook(c tele.Context) error {
	return h.router.StartDialog(c, dialog.TypeBook)
}

func (h *Commands) AddMovie(c tele.Context) error {
	return h.router.StartDialog(c, dialog.TypeMovie)
}

func (h *Commands) AddQuote(c tele.Context) error {
	return h.router.StartDialog(c, dialog.TypeQuote)
}

// Reset handles /reset outside a dialog. Mid-dialog the router consumes
// the command before it ever reaches command lookup.
func (h *Commands) Reset(c tele.Context) error {
	return h.router.Reset(c)
}

func (h *Commands) Books(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	books, err := h.store.Books(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return tghelpers.SendText(c, "You have no books")
	}
	var b strings.Builder
	b.WriteString("Your books:\n")
	for _, book := range books {
		fmt.Fprintf(&b, "%s by %s (rating: %d)\n", book.Title, book.Author, book.Rating)
	}
	return tghelpers.SendText(c, b.String())
}

func (h *Commands) Movies(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	movies, err := h.store.Movies(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if len(movies) == 0 {
		return tghelpers.SendText(c, "You have no movies")
	}
	var b strings.Builder
	b.WriteString("Your movies:\n")
	for _, movie := range movies {
		fmt.Fprintf(&b, "%s (%d) (rating: %d)\n", movie.Title, movie.Year, movie.Rating)
	}
	return tghelpers.SendText(c, b.String())
}

func (h *Commands) Quotes(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	quotes, err := h.store.Quotes(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		return tghelpers.SendText(c, "You have no quotes")
	}
	var b strings.Builder
	b.WriteString("Your quotes:\n")
	for _, quote := range quotes {
		fmt.Fprintf(&b, "%q from %s by %s\n", quote.Text, quote.Title, quote.Author)
	}
	return tghelpers.SendText(c, b.String())
}

// Package collection persists completed dialog results per user.
package collection

import (
	"context"

	"github.com/m3rciful/shelfbot/dialog"
)

// Store is where committed results land. Implementations are append-only:
// committing never deduplicates and never fails because an equal item
// already exists.
type Store interface {
	AddBook(ctx context.Context, userID int64, book dialog.Book) error
	AddMovie(ctx context.Context, userID int64, movie dialog.Movie) error
	AddQuote(ctx context.Context, userID int64, quote dialog.Quote) error

	Books(ctx context.Context, userID int64) ([]dialog.Book, error)
	Movies(ctx context.Context, userID int64) ([]dialog.Movie, error)
	Quotes(ctx context.Context, userID int64) ([]dialog.Quote, error)
}

package collection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/shelfbot/core/logger"
	"github.com/m3rciful/shelfbot/dialog"
)

// Collector commits terminal dialog results into a Store. Commits are
// append-only; redelivered results would append twice, so callers dispose
// the session before acknowledging to keep commits single-shot.
type Collector struct {
	store Store
}

func NewCollector(store Store) *Collector {
	return &Collector{store: store}
}

// Commit stores a completed result under the user's collection.
func (c *Collector) Commit(ctx context.Context, userID int64, result dialog.Result) error {
	start := time.Now()
	var err error
	switch {
	case result.Book != nil:
		err = c.store.AddBook(ctx, userID, *result.Book)
	case result.Movie != nil:
		err = c.store.AddMovie(ctx, userID, *result.Movie)
	case result.Quote != nil:
		err = c.store.AddQuote(ctx, userID, *result.Quote)
	default:
		err = fmt.Errorf("empty result")
	}

	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("dialog_type", string(result.Type())),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.Sanitize(err.Error())))
		logger.Error(ctx, "collection", "commit", attrs...)
		return fmt.Errorf("commit result: %w", err)
	}
	logger.Info(ctx, "collection", "commit", attrs...)
	return nil
}

package collection

import (
	"context"
	"testing"

	"github.com/m3rciful/shelfbot/dialog"
)

func TestCollectorCommitRoutesByType(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewCollector(store)

	book := dialog.Book{Title: "Dune", Author: "Herbert", Rating: 5}
	movie := dialog.Movie{Title: "Alien", Year: 1979, Rating: 5}
	quote := dialog.Quote{Text: "Fear is the mind-killer", Title: "Dune", Author: "Herbert"}

	if err := c.Commit(ctx, 7, dialog.Result{Book: &book}); err != nil {
		t.Fatalf("commit book: %v", err)
	}
	if err := c.Commit(ctx, 7, dialog.Result{Movie: &movie}); err != nil {
		t.Fatalf("commit movie: %v", err)
	}
	if err := c.Commit(ctx, 7, dialog.Result{Quote: &quote}); err != nil {
		t.Fatalf("commit quote: %v", err)
	}

	books, _ := store.Books(ctx, 7)
	if len(books) != 1 || books[0] != book {
		t.Errorf("books = %+v", books)
	}
	movies, _ := store.Movies(ctx, 7)
	if len(movies) != 1 || movies[0] != movie {
		t.Errorf("movies = %+v", movies)
	}
	quotes, _ := store.Quotes(ctx, 7)
	if len(quotes) != 1 || quotes[0] != quote {
		t.Errorf("quotes = %+v", quotes)
	}
}

func TestCollectorCommitAppendsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewCollector(store)

	book := dialog.Book{Title: "Dune", Author: "Herbert", Rating: 5}
	c.Commit(ctx, 7, dialog.Result{Book: &book})
	c.Commit(ctx, 7, dialog.Result{Book: &book})

	books, _ := store.Books(ctx, 7)
	if len(books) != 2 {
		t.Fatalf("len(books) = %d, want 2; commits are append-only", len(books))
	}
}

func TestCollectorCommitEmptyResult(t *testing.T) {
	c := NewCollector(NewMemoryStore())
	if err := c.Commit(context.Background(), 7, dialog.Result{}); err == nil {
		t.Fatal("empty result must not commit")
	}
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.AddBook(ctx, 1, dialog.Book{Title: "A", Author: "X", Rating: 1})
	store.AddBook(ctx, 2, dialog.Book{Title: "B", Author: "Y", Rating: 2})

	books, _ := store.Books(ctx, 1)
	if len(books) != 1 || books[0].Title != "A" {
		t.Errorf("user 1 books = %+v", books)
	}
	if other, _ := store.Books(ctx, 3); len(other) != 0 {
		t.Errorf("user 3 books = %+v, want none", other)
	}
}

package collection

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shelfbot/dialog"
)

// PostgresStore persists collections in Postgres. Schema lives under
// migrations/ and is applied at startup.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type bookRow struct {
	Title  string `db:"title"`
	Author string `db:"author"`
	Rating int    `db:"rating"`
}

type movieRow struct {
	Title  string `db:"title"`
	Year   int    `db:"year"`
	Rating int    `db:"rating"`
}

type quoteRow struct {
	Text   string `db:"quote_text"`
	Title  string `db:"title"`
	Author string `db:"author"`
}

func (p *PostgresStore) AddBook(ctx context.Context, userID int64, book dialog.Book) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO books (user_id, title, author, rating) VALUES ($1, $2, $3, $4)`,
		userID, book.Title, book.Author, book.Rating,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (p *PostgresStore) AddMovie(ctx context.Context, userID int64, movie dialog.Movie) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO movies (user_id, title, year, rating) VALUES ($1, $2, $3, $4)`,
		userID, movie.Title, movie.Year, movie.Rating,
	)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	return nil
}

func (p *PostgresStore) AddQuote(ctx context.Context, userID int64, quote dialog.Quote) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO quotes (user_id, quote_text, title, author) VALUES ($1, $2, $3, $4)`,
		userID, quote.Text, quote.Title, quote.Author,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (p *PostgresStore) Books(ctx context.Context, userID int64) ([]dialog.Book, error) {
	var rows []bookRow
	err := p.db.SelectContext(ctx, &rows,
		`SELECT title, author, rating FROM books WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	books := make([]dialog.Book, 0, len(rows))
	for _, r := range rows {
		books = append(books, dialog.Book{Title: r.Title, Author: r.Author, Rating: r.Rating})
	}
	return books, nil
}

func (p *PostgresStore) Movies(ctx context.Context, userID int64) ([]dialog.Movie, error) {
	var rows []movieRow
	err := p.db.SelectContext(ctx, &rows,
		`SELECT title, year, rating FROM movies WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("select movies: %w", err)
	}
	movies := make([]dialog.Movie, 0, len(rows))
	for _, r := range rows {
		movies = append(movies, dialog.Movie{Title: r.Title, Year: r.Year, Rating: r.Rating})
	}
	return movies, nil
}

func (p *PostgresStore) Quotes(ctx context.Context, userID int64) ([]dialog.Quote, error) {
	var rows []quoteRow
	err := p.db.SelectContext(ctx, &rows,
		`SELECT quote_text, title, author FROM quotes WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("select quotes: %w", err)
	}
	quotes := make([]dialog.Quote, 0, len(rows))
	for _, r := range rows {
		quotes = append(quotes, dialog.Quote{Text: r.Text, Title: r.Title, Author: r.Author})
	}
	return quotes, nil
}

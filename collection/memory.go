package collection

import (
	"context"
	"sync"

	"github.com/m3rciful/shelfbot/dialog"
)

// MemoryStore keeps collections in process memory. It is the default when
// no database is configured; contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	books  map[int64][]dialog.Book
	movies map[int64][]dialog.Movie
	quotes map[int64][]dialog.Quote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:  make(map[int64][]dialog.Book),
		movies: make(map[int64][]dialog.Movie),
		quotes: make(map[int64][]dialog.Quote),
	}
}

func (m *MemoryStore) AddBook(_ context.Context, userID int64, book dialog.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[userID] = append(m.books[userID], book)
	return nil
}

func (m *MemoryStore) AddMovie(_ context.Context, userID int64, movie dialog.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movies[userID] = append(m.movies[userID], movie)
	return nil
}

func (m *MemoryStore) AddQuote(_ context.Context, userID int64, quote dialog.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[userID] = append(m.quotes[userID], quote)
	return nil
}

func (m *MemoryStore) Books(_ context.Context, userID int64) ([]dialog.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dialog.Book(nil), m.books[userID]...), nil
}

func (m *MemoryStore) Movies(_ context.Context, userID int64) ([]dialog.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dialog.Movie(nil), m.movies[userID]...), nil
}

func (m *MemoryStore) Quotes(_ context.Context, userID int64) ([]dialog.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dialog.Quote(nil), m.quotes[userID]...), nil
}

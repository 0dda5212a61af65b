package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/shell"
)

// BookStore is an in-memory shell.Books implementation.
type BookStore struct {
	mu    sync.RWMutex
	books map[uuid.UUID]core.Book
}

// NewBookStore creates an empty BookStore.
func NewBookStore() *BookStore {
	return &BookStore{books: make(map[uuid.UUID]core.Book)}
}

// FindByID returns the book with the given id.
func (s *BookStore) FindByID(_ context.Context, id uuid.UUID) (core.Book, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, found := s.books[id]

	return book, found, nil
}

// FindByName returns the book with the given name.
func (s *BookStore) FindByName(_ context.Context, name string) (core.Book, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, book := range s.books {
		if book.Name == name {
			return book, true, nil
		}
	}

	return core.Book{}, false, nil
}

// FindMany returns one page of books, ordered by name.
func (s *BookStore) FindMany(_ context.Context, page shell.Page) ([]core.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]core.Book, 0, len(s.books))
	for _, book := range s.books {
		all = append(all, book)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	return paginate(all, page), nil
}

// Create stores a new book.
func (s *BookStore) Create(_ context.Context, book core.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books[book.ID] = book

	return nil
}

// Update replaces a stored book.
func (s *BookStore) Update(_ context.Context, book core.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books[book.ID] = book

	return nil
}

// Delete removes a book.
func (s *BookStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.books, id)

	return nil
}

// StockLedger is an in-memory shell.StockLedger operating on a BookStore.
// Its mutations run under the store's write lock, so the all-or-none
// guarantee holds under concurrent reservation attempts.
type StockLedger struct {
	store *BookStore
}

// NewStockLedger creates a ledger over the given BookStore.
func NewStockLedger(store *BookStore) *StockLedger {
	return &StockLedger{store: store}
}

// Reserve removes one available copy of every given book, all or none.
func (l *StockLedger) Reserve(_ context.Context, bookIDs []uuid.UUID) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	for _, bookID := range bookIDs {
		book, found := l.store.books[bookID]
		if !found {
			return core.ErrBookNotFound
		}

		if !book.HasAvailableCopy() {
			return core.ErrStockUnavailable
		}
	}

	for _, bookID := range bookIDs {
		book := l.store.books[bookID]

		reserved, err := core.ReserveCopies(book, 1)
		if err != nil {
			return err
		}

		l.store.books[bookID] = reserved
	}

	return nil
}

// Release puts quantity copies of a book back into the available count.
func (l *StockLedger) Release(_ context.Context, bookID uuid.UUID, quantity int) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	book, found := l.store.books[bookID]
	if !found {
		return core.ErrBookNotFound
	}

	released, err := core.ReleaseCopies(book, quantity)
	if err != nil {
		return err
	}

	l.store.books[bookID] = released

	return nil
}

// AuthorStore is an in-memory shell.Authors implementation.
type AuthorStore struct {
	mu      sync.RWMutex
	authors map[uuid.UUID]core.Author
}

// NewAuthorStore creates an empty AuthorStore.
func NewAuthorStore() *AuthorStore {
	return &AuthorStore{authors: make(map[uuid.UUID]core.Author)}
}

func (s *AuthorStore) FindByID(_ context.Context, id uuid.UUID) (core.Author, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	author, found := s.authors[id]

	return author, found, nil
}

func (s *AuthorStore) FindByName(_ context.Context, name string) (core.Author, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, author := range s.authors {
		if author.Name == name {
			return author, true, nil
		}
	}

	return core.Author{}, false, nil
}

func (s *AuthorStore) FindMany(_ context.Context, page shell.Page) ([]core.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]core.Author, 0, len(s.authors))
	for _, author := range s.authors {
		all = append(all, author)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	return paginate(all, page), nil
}

func (s *AuthorStore) Create(_ context.Context, author core.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authors[author.ID] = author

	return nil
}

func (s *AuthorStore) Update(_ context.Context, author core.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authors[author.ID] = author

	return nil
}

func (s *AuthorStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.authors, id)

	return nil
}

// PublisherStore is an in-memory shell.Publishers implementation.
type PublisherStore struct {
	mu         sync.RWMutex
	publishers map[uuid.UUID]core.Publisher
}

// NewPublisherStore creates an empty PublisherStore.
func NewPublisherStore() *PublisherStore {
	return &PublisherStore{publishers: make(map[uuid.UUID]core.Publisher)}
}

func (s *PublisherStore) FindByID(_ context.Context, id uuid.UUID) (core.Publisher, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	publisher, found := s.publishers[id]

	return publisher, found, nil
}

func (s *PublisherStore) FindByName(_ context.Context, name string) (core.Publisher, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, publisher := range s.publishers {
		if publisher.Name == name {
			return publisher, true, nil
		}
	}

	return core.Publisher{}, false, nil
}

func (s *PublisherStore) FindMany(_ context.Context, page shell.Page) ([]core.Publisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]core.Publisher, 0, len(s.publishers))
	for _, publisher := range s.publishers {
		all = append(all, publisher)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	return paginate(all, page), nil
}

func (s *PublisherStore) Create(_ context.Context, publisher core.Publisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.publishers[publisher.ID] = publisher

	return nil
}

func (s *PublisherStore) Update(_ context.Context, publisher core.Publisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.publishers[publisher.ID] = publisher

	return nil
}

func (s *PublisherStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.publishers, id)

	return nil
}

// UserStore is an in-memory shell.Users implementation.
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]core.User
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]core.User)}
}

func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (core.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, found := s.users[id]

	return user, found, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (core.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, true, nil
		}
	}

	return core.User{}, false, nil
}

func (s *UserStore) Create(_ context.Context, user core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = user

	return nil
}

func paginate[T any](all []T, page shell.Page) []T {
	if page.Size <= 0 {
		return all
	}

	offset := page.Offset()
	if offset >= len(all) {
		return nil
	}

	end := offset + page.Size
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end]
}

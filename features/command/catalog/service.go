package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/shell"
)

// Service wraps the catalog repositories with duplicate checks and the
// stock-removal bound.
type Service struct {
	authors    shell.Authors
	publishers shell.Publishers
	books      shell.Books
	users      shell.Users
	clock      shell.Clock
	newID      core.IDGenerator
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets a custom clock.
func WithClock(clock shell.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithIDGenerator sets a custom identity generator.
func WithIDGenerator(newID core.IDGenerator) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// NewService creates a catalog Service with optional configuration.
func NewService(
	authors shell.Authors,
	publishers shell.Publishers,
	books shell.Books,
	users shell.Users,
	options ...Option,
) Service {

	service := Service{
		authors:    authors,
		publishers: publishers,
		books:      books,
		users:      users,
		clock:      shell.SystemClock{},
		newID:      core.NewIDGenerator(),
	}

	for _, option := range options {
		option(&service)
	}

	return service
}

// CreateAuthor registers a new author. Duplicate names fail with core.ErrAlreadyExists.
func (s Service) CreateAuthor(ctx context.Context, name string) (core.Author, error) {
	var empty core.Author

	_, found, err := s.authors.FindByName(ctx, name)
	if err != nil {
		return empty, err
	}
	if found {
		return empty, core.ErrAlreadyExists
	}

	author := core.BuildAuthor(s.newID(), name, s.clock.Now())

	if createErr := s.authors.Create(ctx, author); createErr != nil {
		return empty, createErr
	}

	return author, nil
}

// CreatePublisher registers a new publisher. Duplicate names fail with core.ErrAlreadyExists.
func (s Service) CreatePublisher(ctx context.Context, name string) (core.Publisher, error) {
	var empty core.Publisher

	_, found, err := s.publishers.FindByName(ctx, name)
	if err != nil {
		return empty, err
	}
	if found {
		return empty, core.ErrAlreadyExists
	}

	publisher := core.BuildPublisher(s.newID(), name, s.clock.Now())

	if createErr := s.publishers.Create(ctx, publisher); createErr != nil {
		return empty, createErr
	}

	return publisher, nil
}

// CreateBook adds a new title to the catalog with all copies available.
// The name must be unique and the referenced authors and publisher must exist.
func (s Service) CreateBook(
	ctx context.Context,
	name string,
	totalCopies int,
	editions []core.Edition,
	authorIDs []uuid.UUID,
	publisherID uuid.UUID,
) (core.Book, error) {

	var empty core.Book

	_, found, err := s.books.FindByName(ctx, name)
	if err != nil {
		return empty, err
	}
	if found {
		return empty, core.ErrAlreadyExists
	}

	for _, authorID := range authorIDs {
		_, authorFound, findErr := s.authors.FindByID(ctx, authorID)
		if findErr != nil {
			return empty, findErr
		}
		if !authorFound {
			return empty, core.ErrAuthorNotFound
		}
	}

	_, publisherFound, err := s.publishers.FindByID(ctx, publisherID)
	if err != nil {
		return empty, err
	}
	if !publisherFound {
		return empty, core.ErrPublisherNotFound
	}

	book := core.BuildBook(s.newID(), name, totalCopies, editions, authorIDs, publisherID, s.clock.Now())

	if createErr := s.books.Create(ctx, book); createErr != nil {
		return empty, createErr
	}

	return book, nil
}

// ChangeBookTotalCopies grows or shrinks a book's total copy count.
// Shrinking below the number of checked-out copies fails with
// core.InvalidStockOperationError.
func (s Service) ChangeBookTotalCopies(ctx context.Context, bookID uuid.UUID, newTotal int) (core.Book, error) {
	var empty core.Book

	book, found, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return empty, err
	}
	if !found {
		return empty, core.ErrBookNotFound
	}

	adjusted, adjustErr := core.AdjustTotalCopies(book, newTotal)
	if adjustErr != nil {
		return empty, adjustErr
	}

	adjusted.Touch(s.clock.Now())

	if updateErr := s.books.Update(ctx, adjusted); updateErr != nil {
		return empty, updateErr
	}

	return adjusted, nil
}

// DeleteBook removes a title from the catalog.
func (s Service) DeleteBook(ctx context.Context, bookID uuid.UUID) error {
	_, found, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return err
	}
	if !found {
		return core.ErrBookNotFound
	}

	return s.books.Delete(ctx, bookID)
}

// RegisterUser registers a new user. Duplicate emails fail with core.ErrAlreadyExists.
func (s Service) RegisterUser(
	ctx context.Context,
	name string,
	email string,
	passwordHash string,
	role core.Role,
) (core.User, error) {

	var empty core.User

	_, found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return empty, err
	}
	if found {
		return empty, core.ErrAlreadyExists
	}

	user := core.BuildUser(s.newID(), name, email, passwordHash, role, s.clock.Now())

	if createErr := s.users.Create(ctx, user); createErr != nil {
		return empty, createErr
	}

	return user, nil
}

package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/features/command/catalog"
	"github.com/cslopes3/library-circulation-go/testutil/memory"
)

type fixture struct {
	books   *memory.BookStore
	service catalog.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{books: memory.NewBookStore()}

	f.service = catalog.NewService(
		memory.NewAuthorStore(),
		memory.NewPublisherStore(),
		f.books,
		memory.NewUserStore(),
		catalog.WithClock(memory.NewFixedClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))),
	)

	return f
}

func (f *fixture) givenCatalogBook(t *testing.T, name string, totalCopies int) core.Book {
	t.Helper()

	ctx := context.Background()

	author, err := f.service.CreateAuthor(ctx, name+" author")
	require.NoError(t, err)

	publisher, err := f.service.CreatePublisher(ctx, name+" publisher")
	require.NoError(t, err)

	editions := []core.Edition{{Number: 1, Description: "First edition", Year: 2003}}

	book, err := f.service.CreateBook(ctx, name, totalCopies, editions, []uuid.UUID{author.ID}, publisher.ID)
	require.NoError(t, err)

	return book
}

func Test_CreateAuthor_DuplicateName(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.service.CreateAuthor(ctx, "Eric Evans")
	require.NoError(t, err)

	_, err = f.service.CreateAuthor(ctx, "Eric Evans")
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func Test_CreateBook_Success(t *testing.T) {
	f := setup(t)

	book := f.givenCatalogBook(t, "Domain-Driven Design", 4)

	assert.Equal(t, 4, book.TotalCopies)
	assert.Equal(t, 4, book.AvailableCopies, "new books start with all copies available")
	require.Len(t, book.Editions, 1)
}

func Test_CreateBook_DuplicateName(t *testing.T) {
	f := setup(t)
	f.givenCatalogBook(t, "Domain-Driven Design", 4)

	ctx := context.Background()

	author, err := f.service.CreateAuthor(ctx, "Someone Else")
	require.NoError(t, err)

	publisher, err := f.service.CreatePublisher(ctx, "Another House")
	require.NoError(t, err)

	_, err = f.service.CreateBook(ctx, "Domain-Driven Design", 1, nil, []uuid.UUID{author.ID}, publisher.ID)
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func Test_CreateBook_MissingReferences(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	publisher, err := f.service.CreatePublisher(ctx, "Addison-Wesley")
	require.NoError(t, err)

	_, err = f.service.CreateBook(ctx, "Refactoring", 1, nil, []uuid.UUID{uuid.New()}, publisher.ID)
	assert.ErrorIs(t, err, core.ErrAuthorNotFound)

	author, err := f.service.CreateAuthor(ctx, "Martin Fowler")
	require.NoError(t, err)

	_, err = f.service.CreateBook(ctx, "Refactoring", 1, nil, []uuid.UUID{author.ID}, uuid.New())
	assert.ErrorIs(t, err, core.ErrPublisherNotFound)
}

func Test_ChangeBookTotalCopies_ShrinkBoundedByCheckedOut(t *testing.T) {
	// arrange - 4 copies total, 3 checked out
	f := setup(t)
	book := f.givenCatalogBook(t, "Domain-Driven Design", 4)

	ctx := context.Background()

	stored, _, err := f.books.FindByID(ctx, book.ID)
	require.NoError(t, err)
	stored.AvailableCopies = 1
	require.NoError(t, f.books.Update(ctx, stored))

	// act + assert - shrinking to 3 removes the one available copy
	adjusted, err := f.service.ChangeBookTotalCopies(ctx, book.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, adjusted.TotalCopies)
	assert.Equal(t, 0, adjusted.AvailableCopies)

	// act + assert - shrinking further would remove checked-out copies
	_, err = f.service.ChangeBookTotalCopies(ctx, book.ID, 2)

	var invalidOp core.InvalidStockOperationError
	assert.ErrorAs(t, err, &invalidOp)
}

func Test_RegisterUser_DuplicateEmail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.service.RegisterUser(ctx, "Jane Roe", "jane@example.com", "hash", core.RoleReader)
	require.NoError(t, err)

	_, err = f.service.RegisterUser(ctx, "Jane Again", "jane@example.com", "hash", core.RoleLibrarian)
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func Test_DeleteBook(t *testing.T) {
	f := setup(t)
	book := f.givenCatalogBook(t, "Domain-Driven Design", 4)

	ctx := context.Background()

	require.NoError(t, f.service.DeleteBook(ctx, book.ID))

	err := f.service.DeleteBook(ctx, book.ID)
	assert.ErrorIs(t, err, core.ErrBookNotFound)
}

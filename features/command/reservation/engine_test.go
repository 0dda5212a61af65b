package reservation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/features/command/reservation"
	"github.com/cslopes3/library-circulation-go/testutil/memory"
)

type fixture struct {
	users        *memory.UserStore
	books        *memory.BookStore
	reservations *memory.ReservationStore
	ledger       *memory.StockLedger
	clock        *memory.FixedClock
	logger       *memory.RecordingLogger
	engine       reservation.Engine
}

func setup(t *testing.T, now time.Time) *fixture {
	t.Helper()

	f := &fixture{
		users:  memory.NewUserStore(),
		books:  memory.NewBookStore(),
		clock:  memory.NewFixedClock(now),
		logger: memory.NewRecordingLogger(),
	}
	f.ledger = memory.NewStockLedger(f.books)
	f.reservations = memory.NewReservationStore(f.ledger)

	f.engine = reservation.NewEngine(
		f.users, f.books, f.reservations,
		reservation.WithClock(f.clock),
		reservation.WithLogger(f.logger),
	)

	return f
}

func (f *fixture) givenUser(t *testing.T) core.User {
	t.Helper()

	user := core.BuildUser(uuid.New(), "Jane Roe", "jane@example.com", "hash", core.RoleReader, f.clock.Now())
	require.NoError(t, f.users.Create(context.Background(), user))

	return user
}

func (f *fixture) givenBook(t *testing.T, name string, available int) core.Book {
	t.Helper()

	book := core.BuildBook(uuid.New(), name, available, nil, []uuid.UUID{uuid.New()}, uuid.New(), f.clock.Now())
	require.NoError(t, f.books.Create(context.Background(), book))

	return book
}

func (f *fixture) givenReservedBook(t *testing.T, user core.User, name string) core.ReservationItem {
	t.Helper()

	book := f.givenBook(t, name, 1)

	created, err := f.engine.Create(context.Background(), reservation.BuildCreateCommand(user.ID, []uuid.UUID{book.ID}))
	require.NoError(t, err)
	require.Len(t, created.Items, 1)

	return created.Items[0]
}

func (f *fixture) availableCopies(t *testing.T, bookID uuid.UUID) int {
	t.Helper()

	book, found, err := f.books.FindByID(context.Background(), bookID)
	require.NoError(t, err)
	require.True(t, found)

	return book.AvailableCopies
}

func Test_Create_Success(t *testing.T) {
	// arrange
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	f := setup(t, now)
	user := f.givenUser(t)
	first := f.givenBook(t, "Domain-Driven Design", 2)
	second := f.givenBook(t, "Refactoring", 1)

	// act
	created, err := f.engine.Create(context.Background(),
		reservation.BuildCreateCommand(user.ID, []uuid.UUID{first.ID, second.ID}))

	// assert
	require.NoError(t, err)
	require.Len(t, created.Items, 2)
	assert.Equal(t, "Domain-Driven Design", created.Items[0].BookName)
	assert.Equal(t, "Refactoring", created.Items[1].BookName)

	expectedDue := core.ToTimestamp(now.AddDate(0, 0, core.LoanPeriodDays))
	assert.Equal(t, expectedDue, created.Items[0].DueDate)

	assert.Equal(t, 1, f.availableCopies(t, first.ID))
	assert.Equal(t, 0, f.availableCopies(t, second.ID))

	persisted, found, err := f.reservations.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, user.ID, persisted.UserID)
}

func Test_Create_FailsWhenBookUnavailable_NoMutation(t *testing.T) {
	// arrange
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	user := f.givenUser(t)
	available := f.givenBook(t, "Domain-Driven Design", 1)
	depleted := f.givenBook(t, "Refactoring", 0)

	// act
	_, err := f.engine.Create(context.Background(),
		reservation.BuildCreateCommand(user.ID, []uuid.UUID{available.ID, depleted.ID}))

	// assert
	var unavailable core.BooksUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"Refactoring"}, unavailable.BookNames)

	assert.Equal(t, 1, f.availableCopies(t, available.ID), "rejected request must not touch stock")

	existing, err := f.reservations.FindByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, existing, "rejected request must not persist a reservation")
}

func Test_Create_ReservationLimitBoundary(t *testing.T) {
	// arrange - user with limit-1 outstanding items
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	user := f.givenUser(t)

	for i := 0; i < core.ReservationLimit-1; i++ {
		f.givenReservedBook(t, user, "Outstanding "+string(rune('A'+i)))
	}

	oneMore := f.givenBook(t, "One More", 1)
	twoMoreA := f.givenBook(t, "Two More A", 1)
	twoMoreB := f.givenBook(t, "Two More B", 1)

	// act + assert - two more at once exceeds the limit
	_, err := f.engine.Create(context.Background(),
		reservation.BuildCreateCommand(user.ID, []uuid.UUID{twoMoreA.ID, twoMoreB.ID}))

	var limitExceeded core.ReservationLimitExceededError
	require.ErrorAs(t, err, &limitExceeded)
	assert.Equal(t, core.ReservationLimit-1, limitExceeded.OutstandingCount)

	// act + assert - exactly one more is fine
	_, err = f.engine.Create(context.Background(),
		reservation.BuildCreateCommand(user.ID, []uuid.UUID{oneMore.ID}))
	assert.NoError(t, err)
}

func Test_Create_BlockedByOverdueItem(t *testing.T) {
	// arrange
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	user := f.givenUser(t)
	f.givenReservedBook(t, user, "Overdue Book")

	// the loan period passes without a return
	f.clock.Advance((core.LoanPeriodDays + 1) * 24 * time.Hour)

	fresh := f.givenBook(t, "Fresh Book", 1)

	// act
	_, err := f.engine.Create(context.Background(),
		reservation.BuildCreateCommand(user.ID, []uuid.UUID{fresh.ID}))

	// assert
	assert.ErrorIs(t, err, core.ErrExpiredReservation)
	assert.Equal(t, 1, f.availableCopies(t, fresh.ID))
}

func Test_Create_UnknownUserAndBook(t *testing.T) {
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	user := f.givenUser(t)

	_, err := f.engine.Create(context.Background(),
		reservation.BuildCreateCommand(uuid.New(), nil))
	assert.ErrorIs(t, err, core.ErrUserNotFound)

	_, err = f.engine.Create(context.Background(),
		reservation.BuildCreateCommand(user.ID, []uuid.UUID{uuid.New()}))
	assert.ErrorIs(t, err, core.ErrBookNotFound)
}

func Test_Extend_OnceThenRefused(t *testing.T) {
	// arrange
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	user := f.givenUser(t)
	item := f.givenReservedBook(t, user, "Domain-Driven Design")
	originalDue := item.DueDate

	// act - first extension succeeds
	extended, err := f.engine.Extend(context.Background(), reservation.BuildExtendCommand(item.ID))

	// assert
	require.NoError(t, err)
	expectedDue := core.ToTimestamp(originalDue.AddDate(0, 0, core.ExtensionPeriodDays))
	assert.Equal(t, expectedDue, extended.DueDate)
	assert.True(t, extended.Extended)

	persisted, found, err := f.reservations.FindItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expectedDue, persisted.DueDate)
	assert.True(t, persisted.Extended)

	// act + assert - second extension is refused
	_, err = f.engine.Extend(context.Background(), reservation.BuildExtendCommand(item.ID))
	assert.ErrorIs(t, err, core.ErrExtensionAlreadyUsed)
}

func Test_Extend_FailsOnLapsedItem(t *testing.T) {
	// arrange
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	user := f.givenUser(t)
	item := f.givenReservedBook(t, user, "Domain-Driven Design")

	f.clock.Advance((core.LoanPeriodDays + 1) * 24 * time.Hour)

	// act
	_, err := f.engine.Extend(context.Background(), reservation.BuildExtendCommand(item.ID))

	// assert
	assert.ErrorIs(t, err, core.ErrReservationAlreadyExpired)
}

func Test_Return_ReleasesStockOnce(t *testing.T) {
	// arrange
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	user := f.givenUser(t)
	item := f.givenReservedBook(t, user, "Domain-Driven Design")
	require.Equal(t, 0, f.availableCopies(t, item.BookID))

	returnDate := f.clock.Now().AddDate(0, 0, 7)

	// act
	returned, err := f.engine.Return(context.Background(), reservation.BuildReturnCommand(item.ID, returnDate))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.ToTimestamp(returnDate), returned.ReturnedAt)
	assert.False(t, returned.Outstanding())
	assert.Equal(t, 1, f.availableCopies(t, item.BookID))

	// act + assert - a second return is an error and leaves stock unchanged
	_, err = f.engine.Return(context.Background(), reservation.BuildReturnCommand(item.ID, returnDate))
	assert.ErrorIs(t, err, core.ErrAllItemsAlreadyReturned)
	assert.Equal(t, 1, f.availableCopies(t, item.BookID))
}

func Test_Return_FailedStockReleaseLeavesItemOutstanding(t *testing.T) {
	// arrange - the book row vanishes while the copy is out, so the release
	// inside the return cannot succeed
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	user := f.givenUser(t)
	item := f.givenReservedBook(t, user, "Domain-Driven Design")

	checkedOut, found, err := f.books.FindByID(context.Background(), item.BookID)
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, f.books.Delete(context.Background(), item.BookID))

	returnDate := f.clock.Now().AddDate(0, 0, 7)

	// act
	_, err = f.engine.Return(context.Background(), reservation.BuildReturnCommand(item.ID, returnDate))

	// assert - the failure must not record a return date, the copy stays out
	assert.ErrorIs(t, err, core.ErrBookNotFound)

	persisted, found, err := f.reservations.FindItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, persisted.Outstanding(), "failed return must leave the item outstanding")

	// act + assert - with the book row back, retrying the same return
	// succeeds and the copy rejoins circulation
	require.NoError(t, f.books.Create(context.Background(), checkedOut))

	returned, err := f.engine.Return(context.Background(), reservation.BuildReturnCommand(item.ID, returnDate))
	require.NoError(t, err)
	assert.False(t, returned.Outstanding())
	assert.Equal(t, 1, f.availableCopies(t, item.BookID))
}

func Test_Delete_WithOutstandingItems_LogsOverride(t *testing.T) {
	// arrange
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	user := f.givenUser(t)
	item := f.givenReservedBook(t, user, "Domain-Driven Design")

	reservations, err := f.reservations.FindByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, reservations, 1)

	// act
	err = f.engine.Delete(context.Background(), reservation.BuildDeleteCommand(reservations[0].ID))

	// assert
	require.NoError(t, err)

	_, found, err := f.reservations.FindByID(context.Background(), reservations[0].ID)
	require.NoError(t, err)
	assert.False(t, found)

	// stock stays as it was, the override is only logged
	assert.Equal(t, 0, f.availableCopies(t, item.BookID))

	entries := f.logger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0].Level)
}

func Test_Delete_UnknownReservation(t *testing.T) {
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

	err := f.engine.Delete(context.Background(), reservation.BuildDeleteCommand(uuid.New()))

	assert.ErrorIs(t, err, core.ErrReservationNotFound)
}

func Test_Create_ConcurrentRequestsForLastCopy(t *testing.T) {
	// arrange
	f := setup(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	firstUser := f.givenUser(t)

	secondUser := core.BuildUser(uuid.New(), "John Doe", "john@example.com", "hash", core.RoleReader, f.clock.Now())
	require.NoError(t, f.users.Create(context.Background(), secondUser))

	lastCopy := f.givenBook(t, "Domain-Driven Design", 1)

	// act - both users race for the single available copy
	results := make([]error, 2)
	group, ctx := errgroup.WithContext(context.Background())

	for i, userID := range []uuid.UUID{firstUser.ID, secondUser.ID} {
		i, userID := i, userID
		group.Go(func() error {
			_, results[i] = f.engine.Create(ctx, reservation.BuildCreateCommand(userID, []uuid.UUID{lastCopy.ID}))
			return nil
		})
	}
	require.NoError(t, group.Wait())

	// assert - exactly one wins, the loser sees unavailable stock, never negative
	winners := 0
	for _, resultErr := range results {
		if resultErr == nil {
			winners++
		} else {
			assert.True(t, isStockFailure(resultErr), "loser must fail with a stock failure, got: %v", resultErr)
		}
	}

	assert.Equal(t, 1, winners)
	assert.Equal(t, 0, f.availableCopies(t, lastCopy.ID))
}

// isStockFailure accepts both shapes the loser can see: the availability
// validator (when the winner committed before the loser's read) or the
// ledger (when both passed validation).
func isStockFailure(err error) bool {
	if errors.Is(err, core.ErrStockUnavailable) {
		return true
	}

	var unavailable core.BooksUnavailableError

	return errors.As(err, &unavailable)
}

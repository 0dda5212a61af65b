package shell

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
)

// Page carries pagination parameters for listing queries. Its shape is
// owned by the listing layer; the engines never interpret it.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}

	return (p.Number - 1) * p.Size
}

// Books is the repository port for the book catalog.
type Books interface {
	FindByID(ctx context.Context, id uuid.UUID) (core.Book, bool, error)
	FindByName(ctx context.Context, name string) (core.Book, bool, error)
	FindMany(ctx context.Context, page Page) ([]core.Book, error)
	Create(ctx context.Context, book core.Book) error
	Update(ctx context.Context, book core.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Authors is the repository port for authors.
type Authors interface {
	FindByID(ctx context.Context, id uuid.UUID) (core.Author, bool, error)
	FindByName(ctx context.Context, name string) (core.Author, bool, error)
	FindMany(ctx context.Context, page Page) ([]core.Author, error)
	Create(ctx context.Context, author core.Author) error
	Update(ctx context.Context, author core.Author) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Publishers is the repository port for publishers.
type Publishers interface {
	FindByID(ctx context.Context, id uuid.UUID) (core.Publisher, bool, error)
	FindByName(ctx context.Context, name string) (core.Publisher, bool, error)
	FindMany(ctx context.Context, page Page) ([]core.Publisher, error)
	Create(ctx context.Context, publisher core.Publisher) error
	Update(ctx context.Context, publisher core.Publisher) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Users is the repository port for users.
type Users interface {
	FindByID(ctx context.Context, id uuid.UUID) (core.User, bool, error)
	FindByEmail(ctx context.Context, email string) (core.User, bool, error)
	Create(ctx context.Context, user core.User) error
}

// Reservations is the repository port for reservations and their items.
// Implementations own the coupling between reservations and stock: Create
// and ReturnByItemID move copy counts together with the rows they write,
// atomically per call.
type Reservations interface {
	FindByID(ctx context.Context, id uuid.UUID) (core.Reservation, bool, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]core.Reservation, error)

	// Create persists the reservation with all its items and removes one
	// available copy of every item's book, all of it or none. Fails with
	// core.ErrStockUnavailable when any book has no available copy and with
	// ErrStockConflict on storage contention.
	Create(ctx context.Context, reservation core.Reservation) error

	Delete(ctx context.Context, id uuid.UUID) error

	// ChangeReservationInfoByID updates due date and extension flag of one
	// item together, as a full update of the reservation metadata.
	ChangeReservationInfoByID(ctx context.Context, itemID uuid.UUID, newDueDate time.Time, extended bool) error

	// ReturnByItemID sets the item's return date and puts its copy back
	// into the available count in the same transaction. On failure both
	// stay untouched, so the return can be retried.
	ReturnByItemID(ctx context.Context, itemID uuid.UUID, returnedAt time.Time) error

	FindItemByID(ctx context.Context, itemID uuid.UUID) (core.ReservationItem, bool, error)
}

// Schedules is the repository port for pickup schedules.
type Schedules interface {
	Create(ctx context.Context, schedule core.Schedule) error
	FindByID(ctx context.Context, id uuid.UUID) (core.Schedule, bool, error)
	FindByUserIDAndLastDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]core.Schedule, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status core.ScheduleStatus) error
}

// StockLedger is the port for copy-count accounting, the only shared
// mutable resource of the system. Reservation stores compose it so their
// writes and the stock movement commit together.
type StockLedger interface {
	// Reserve removes one available copy of every given book, all of them
	// or none. Fails with core.ErrStockUnavailable when any book has no
	// available copy and with ErrStockConflict on storage contention.
	Reserve(ctx context.Context, bookIDs []uuid.UUID) error

	// Release puts quantity copies of a book back into the available
	// count. Fails with core.InvalidStockOperationError when the release
	// would exceed the number of copies currently checked out.
	Release(ctx context.Context, bookID uuid.UUID, quantity int) error
}

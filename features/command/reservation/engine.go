package reservation

import (
	"context"
	"errors"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/shell"
)

const (
	logMsgDeleteWithOutstanding = "deleting reservation with outstanding items, stock is not auto-released"
	logAttrReservationID        = "reservation_id"
	logAttrOutstandingItems     = "outstanding_items"
)

// Engine validates and executes the reservation lifecycle against the
// repository ports. Stock movement is not orchestrated here: the
// reservation store decrements copies when it persists a reservation and
// releases one when it records a return, each inside its own transaction.
type Engine struct {
	users        shell.Users
	books        shell.Books
	reservations shell.Reservations
	clock        shell.Clock
	newID        core.IDGenerator
	logger       shell.Logger
	retryOptions []shell.RetryOption
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets a custom clock, typically a fixed one in tests.
func WithClock(clock shell.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithIDGenerator sets a custom identity generator.
func WithIDGenerator(newID core.IDGenerator) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(logger shell.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRetryOptions sets a custom retry configuration for stock contention.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(e *Engine) {
		e.retryOptions = opts
	}
}

// NewEngine creates a reservation Engine with optional configuration.
func NewEngine(
	users shell.Users,
	books shell.Books,
	reservations shell.Reservations,
	options ...Option,
) Engine {

	engine := Engine{
		users:        users,
		books:        books,
		reservations: reservations,
		clock:        shell.SystemClock{},
		newID:        core.NewIDGenerator(),
	}

	for _, option := range options {
		option(&engine)
	}

	return engine
}

// Create validates and executes a new reservation: no overdue items, every
// requested book available, reservation limit respected. Persisting the
// reservation and decrementing the stock for all its books is one atomic
// store operation; contention is retried and surfaces as unavailable stock
// once the retry budget is exhausted.
func (e Engine) Create(ctx context.Context, command CreateCommand) (core.Reservation, error) {
	var empty core.Reservation

	_, found, err := e.users.FindByID(ctx, command.UserID)
	if err != nil {
		return empty, err
	}
	if !found {
		return empty, core.ErrUserNotFound
	}

	existing, err := e.reservations.FindByUserID(ctx, command.UserID)
	if err != nil {
		return empty, err
	}

	outstanding := core.OutstandingItems(existing)
	now := e.clock.Now()

	if validateErr := core.CheckNoOverdueItems(outstanding, now); validateErr != nil {
		return empty, validateErr
	}

	books := make([]core.Book, 0, len(command.BookIDs))
	for _, bookID := range command.BookIDs {
		book, bookFound, findErr := e.books.FindByID(ctx, bookID)
		if findErr != nil {
			return empty, findErr
		}
		if !bookFound {
			return empty, core.ErrBookNotFound
		}

		books = append(books, book)
	}

	if validateErr := core.CheckAvailability(books); validateErr != nil {
		return empty, validateErr
	}

	if validateErr := core.CheckReservationLimit(len(outstanding), len(books)); validateErr != nil {
		return empty, validateErr
	}

	reservation := core.BuildReservation(e.newID, command.UserID, books, now)

	createErr := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return e.reservations.Create(retryCtx, reservation)
	}, e.retryOptions...)

	if createErr != nil {
		if errors.Is(createErr, shell.ErrStockConflict) {
			return empty, core.ErrStockUnavailable
		}

		return empty, createErr
	}

	return reservation, nil
}

// Extend pushes an item's due date forward by the fixed extension period
// and consumes its single extension. A lapsed item cannot be extended.
// Due date and extension flag are persisted together as one metadata update.
func (e Engine) Extend(ctx context.Context, command ExtendCommand) (core.ReservationItem, error) {
	var empty core.ReservationItem

	item, found, err := e.reservations.FindItemByID(ctx, command.ItemID)
	if err != nil {
		return empty, err
	}
	if !found {
		return empty, core.ErrReservationItemNotFound
	}

	now := e.clock.Now()

	if validateErr := core.CheckExtendable(item, now); validateErr != nil {
		return empty, validateErr
	}

	newDueDate := core.ToTimestamp(item.DueDate.AddDate(0, 0, core.ExtensionPeriodDays))

	if changeErr := e.reservations.ChangeReservationInfoByID(ctx, item.ID, newDueDate, true); changeErr != nil {
		return empty, changeErr
	}

	item.DueDate = newDueDate
	item.Extended = true
	item.Touch(now)

	return item, nil
}

// Return sets the item's return date. The store puts the copy back into the
// available count in the same transaction, so a failed return leaves both
// the item and the stock untouched and can simply be retried. Returning an
// already-returned item is an error.
func (e Engine) Return(ctx context.Context, command ReturnCommand) (core.ReservationItem, error) {
	var empty core.ReservationItem

	item, found, err := e.reservations.FindItemByID(ctx, command.ItemID)
	if err != nil {
		return empty, err
	}
	if !found {
		return empty, core.ErrReservationItemNotFound
	}

	if validateErr := core.CheckReturnable(item); validateErr != nil {
		return empty, validateErr
	}

	returnedAt := core.ToTimestamp(command.ReturnedAt)

	if returnErr := e.reservations.ReturnByItemID(ctx, item.ID, returnedAt); returnErr != nil {
		return empty, returnErr
	}

	item.ReturnedAt = returnedAt
	item.Touch(e.clock.Now())

	return item, nil
}

// Delete removes a reservation regardless of return status. This is a
// librarian override: stock is NOT auto-released for outstanding items,
// the discrepancy is logged instead.
func (e Engine) Delete(ctx context.Context, command DeleteCommand) error {
	reservation, found, err := e.reservations.FindByID(ctx, command.ReservationID)
	if err != nil {
		return err
	}
	if !found {
		return core.ErrReservationNotFound
	}

	if outstanding := core.OutstandingItems([]core.Reservation{reservation}); len(outstanding) > 0 && e.logger != nil {
		e.logger.Warn(logMsgDeleteWithOutstanding,
			logAttrReservationID, reservation.ID.String(),
			logAttrOutstandingItems, len(outstanding))
	}

	return e.reservations.Delete(ctx, reservation.ID)
}

package schedule

import (
	"context"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/shell"
)

// Engine validates and executes the schedule lifecycle against the
// repository ports. It never touches the stock ledger.
type Engine struct {
	users     shell.Users
	books     shell.Books
	schedules shell.Schedules
	clock     shell.Clock
	newID     core.IDGenerator
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

// NewEngine creates a schedule Engine with optional configuration.
func NewEngine(
	users shell.Users,
	books shell.Books,
	schedules shell.Schedules,
	options ...Option,
) Engine {

	engine := Engine{
		users:     users,
		books:     books,
		schedules: schedules,
		clock:     shell.SystemClock{},
		newID:     core.NewIDGenerator(),
	}

	for _, option := range options {
		option(&engine)
	}

	return engine
}

// Create validates and books a new pickup schedule: the pickup date must
// fall within the working-day deadline and the user must not already hold
// too many pending schedules for any requested book. The schedule is
// created pending with one item per book.
func (e Engine) Create(ctx context.Context, command CreateCommand) (core.Schedule, error) {
	var empty core.Schedule

	_, found, err := e.users.FindByID(ctx, command.UserID)
	if err != nil {
		return empty, err
	}
	if !found {
		return empty, core.ErrUserNotFound
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

	now := e.clock.Now()

	if validateErr := core.CheckScheduleDeadline(now, command.PickupDate); validateErr != nil {
		return empty, validateErr
	}

	since := now.AddDate(0, 0, -core.ScheduleLookbackDays)

	recent, err := e.schedules.FindByUserIDAndLastDays(ctx, command.UserID, since)
	if err != nil {
		return empty, err
	}

	if validateErr := core.CheckDuplicateBookLimit(recent, books); validateErr != nil {
		return empty, validateErr
	}

	schedule := core.BuildSchedule(e.newID, command.UserID, books, command.PickupDate, now)

	if createErr := e.schedules.Create(ctx, schedule); createErr != nil {
		return empty, createErr
	}

	return schedule, nil
}

// ChangeStatus moves a pending schedule into finished or canceled. Any
// other transition fails with core.ErrInvalidScheduleStatus.
func (e Engine) ChangeStatus(ctx context.Context, command ChangeStatusCommand) (core.Schedule, error) {
	var empty core.Schedule

	schedule, found, err := e.schedules.FindByID(ctx, command.ScheduleID)
	if err != nil {
		return empty, err
	}
	if !found {
		return empty, core.ErrScheduleNotFound
	}

	if validateErr := core.CheckStatusTransition(schedule.Status, command.Status); validateErr != nil {
		return empty, validateErr
	}

	if changeErr := e.schedules.ChangeStatus(ctx, schedule.ID, command.Status); changeErr != nil {
		return empty, changeErr
	}

	schedule.Status = command.Status
	schedule.Touch(e.clock.Now())

	return schedule, nil
}

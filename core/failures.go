package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// All business rule violations are returned as values from this taxonomy.
// They are recoverable by the caller and are never retried by the engines.

var (
	// ErrAlreadyExists indicates a duplicate author, book, publisher or user.
	ErrAlreadyExists = errors.New("record with the same identifier already exists")

	// ErrBookNotFound indicates a requested book is absent from the catalog.
	ErrBookNotFound = errors.New("book not found")

	// ErrAuthorNotFound indicates a referenced author is absent.
	ErrAuthorNotFound = errors.New("author not found")

	// ErrPublisherNotFound indicates a referenced publisher is absent.
	ErrPublisherNotFound = errors.New("publisher not found")

	// ErrUserNotFound indicates a referenced user is absent.
	ErrUserNotFound = errors.New("user not found")

	// ErrReservationNotFound indicates a referenced reservation is absent.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrReservationItemNotFound indicates a referenced reservation item is absent.
	ErrReservationItemNotFound = errors.New("reservation item not found")

	// ErrScheduleNotFound indicates a referenced schedule is absent.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrBookInCirculation blocks deleting a title that reservation or
	// schedule records still reference.
	ErrBookInCirculation = errors.New("book is still referenced by reservations or schedules")

	// ErrStockUnavailable indicates there are not enough available copies in stock.
	ErrStockUnavailable = errors.New("not enough available copies in stock")

	// ErrExpiredReservation blocks new reservations while the user has overdue items.
	ErrExpiredReservation = errors.New("user has an expired reservation that must be resolved first")

	// ErrReservationAlreadyExpired blocks extending a lapsed loan; the book
	// must be returned and reserved again.
	ErrReservationAlreadyExpired = errors.New("reservation already expired, return the book and reserve it again")

	// ErrExtensionAlreadyUsed blocks a second extension of the same item.
	ErrExtensionAlreadyUsed = errors.New("reservation was already extended once")

	// ErrAllItemsAlreadyReturned indicates a return request with nothing left to return.
	ErrAllItemsAlreadyReturned = errors.New("all reservation items were already returned")

	// ErrInvalidScheduleStatus indicates an illegal schedule status transition.
	ErrInvalidScheduleStatus = errors.New("invalid schedule status")
)

// BooksUnavailableError reports every requested book without an available
// copy, not just the first one.
type BooksUnavailableError struct {
	BookNames []string
}

func (e BooksUnavailableError) Error() string {
	return fmt.Sprintf("books unavailable: %s", strings.Join(e.BookNames, ", "))
}

// ReservationLimitExceededError carries the user's current outstanding item count.
type ReservationLimitExceededError struct {
	OutstandingCount int
}

func (e ReservationLimitExceededError) Error() string {
	return fmt.Sprintf(
		"reservation limit of %d items exceeded, user already has %d outstanding",
		ReservationLimit, e.OutstandingCount)
}

// InvalidStockOperationError reports a stock movement that would break the
// 0 <= available <= total invariant.
type InvalidStockOperationError struct {
	Quantity int
	Limit    int
}

func (e InvalidStockOperationError) Error() string {
	return fmt.Sprintf("invalid stock operation: quantity %d exceeds limit of %d copies", e.Quantity, e.Limit)
}

// ScheduleDeadlineExceededError reports a pickup date beyond the working-day window.
type ScheduleDeadlineExceededError struct {
	PickupDate time.Time
	Deadline   time.Time
}

func (e ScheduleDeadlineExceededError) Error() string {
	return fmt.Sprintf(
		"schedule deadline exceeded: pickup on %s is past the deadline of %s",
		e.PickupDate.Format("2006-01-02"), e.Deadline.Format("2006-01-02"))
}

// DuplicateBookScheduleError reports every requested book the user already
// has too many open schedules for.
type DuplicateBookScheduleError struct {
	BookNames []string
}

func (e DuplicateBookScheduleError) Error() string {
	return fmt.Sprintf("user already has open schedules for: %s", strings.Join(e.BookNames, ", "))
}

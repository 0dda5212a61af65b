package core

import (
	"time"
)

// Validators for the reservation workflow. Each one is a pure function over
// already-loaded data; the engine runs them in a fixed order and stops at
// the first failure, before any mutation.

// CheckNoOverdueItems fails with ErrExpiredReservation when any outstanding
// item's due date lies strictly before today. The user has to resolve
// overdue items before borrowing more.
func CheckNoOverdueItems(outstanding []ReservationItem, today time.Time) error {
	for _, item := range outstanding {
		if IsBeforeToday(item.DueDate, today) {
			return ErrExpiredReservation
		}
	}

	return nil
}

// CheckAvailability fails with BooksUnavailableError when any requested
// book has no available copy, reporting the names of all of them.
func CheckAvailability(books []Book) error {
	var unavailable []string

	for _, book := range books {
		if !book.HasAvailableCopy() {
			unavailable = append(unavailable, book.Name)
		}
	}

	if len(unavailable) > 0 {
		return BooksUnavailableError{BookNames: unavailable}
	}

	return nil
}

// CheckReservationLimit fails with ReservationLimitExceededError when the
// outstanding item count plus the newly requested count would exceed
// ReservationLimit.
func CheckReservationLimit(outstandingCount int, requestedCount int) error {
	if outstandingCount+requestedCount > ReservationLimit {
		return ReservationLimitExceededError{OutstandingCount: outstandingCount}
	}

	return nil
}

// CheckExtendable validates a single extension request. The expiration
// check runs first: a lapsed loan cannot be extended even when the
// extension was never used.
func CheckExtendable(item ReservationItem, today time.Time) error {
	if IsOnOrBeforeToday(item.DueDate, today) {
		return ErrReservationAlreadyExpired
	}

	if item.Extended {
		return ErrExtensionAlreadyUsed
	}

	return nil
}

// CheckReturnable fails with ErrAllItemsAlreadyReturned when the item's
// return date is already set. A no-op return batch is an error, not a
// silent success.
func CheckReturnable(item ReservationItem) error {
	if !item.Outstanding() {
		return ErrAllItemsAlreadyReturned
	}

	return nil
}

package core

import (
	"time"

	"github.com/google/uuid"
)

const (
	// LoanPeriodDays is the number of days a reserved copy may be kept.
	LoanPeriodDays = 30

	// ExtensionPeriodDays is the number of days a single extension adds to the due date.
	ExtensionPeriodDays = 30

	// ReservationLimit is the maximum number of outstanding items per user.
	ReservationLimit = 3
)

// ReservationItem is one borrowed copy within a reservation. The book name
// is copied on creation for error messages and history; a later rename of
// the book does not change it.
type ReservationItem struct {
	Identity
	BookID     uuid.UUID
	BookName   string
	DueDate    time.Time
	ReturnedAt time.Time // zero while the copy is still out
	Extended   bool
}

// Outstanding reports whether the copy has not been returned yet.
func (it ReservationItem) Outstanding() bool {
	return it.ReturnedAt.IsZero()
}

// Reservation is a user's borrowing transaction. Items keep the order in
// which the books were requested.
type Reservation struct {
	Identity
	UserID uuid.UUID
	Items  []ReservationItem
}

// BuildReservation creates a Reservation with one item per requested book,
// each due LoanPeriodDays from now.
func BuildReservation(newID IDGenerator, userID uuid.UUID, books []Book, now time.Time) Reservation {
	dueDate := ToTimestamp(now.AddDate(0, 0, LoanPeriodDays))

	items := make([]ReservationItem, 0, len(books))
	for _, book := range books {
		items = append(items, ReservationItem{
			Identity: BuildIdentity(newID(), now),
			BookID:   book.ID,
			BookName: book.Name,
			DueDate:  dueDate,
		})
	}

	return Reservation{
		Identity: BuildIdentity(newID(), now),
		UserID:   userID,
		Items:    items,
	}
}

// OutstandingItems returns the items of all given reservations that have
// not been returned yet, preserving order.
func OutstandingItems(reservations []Reservation) []ReservationItem {
	var outstanding []ReservationItem

	for _, reservation := range reservations {
		for _, item := range reservation.Items {
			if item.Outstanding() {
				outstanding = append(outstanding, item)
			}
		}
	}

	return outstanding
}

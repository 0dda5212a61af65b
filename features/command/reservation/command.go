package reservation

import (
	"time"

	"github.com/google/uuid"
)

// CreateCommand represents the intent to borrow one copy of each given
// book. Book order is preserved on the created items.
type CreateCommand struct {
	UserID  uuid.UUID
	BookIDs []uuid.UUID
}

// BuildCreateCommand creates a new CreateCommand.
func BuildCreateCommand(userID uuid.UUID, bookIDs []uuid.UUID) CreateCommand {
	return CreateCommand{
		UserID:  userID,
		BookIDs: bookIDs,
	}
}

// ExtendCommand represents the intent to push an item's due date forward by
// the fixed extension period. At most one extension per item, ever.
type ExtendCommand struct {
	ItemID uuid.UUID
}

// BuildExtendCommand creates a new ExtendCommand.
func BuildExtendCommand(itemID uuid.UUID) ExtendCommand {
	return ExtendCommand{ItemID: itemID}
}

// ReturnCommand represents the intent to return one borrowed copy on the
// given date.
type ReturnCommand struct {
	ItemID     uuid.UUID
	ReturnedAt time.Time
}

// BuildReturnCommand creates a new ReturnCommand.
func BuildReturnCommand(itemID uuid.UUID, returnedAt time.Time) ReturnCommand {
	return ReturnCommand{
		ItemID:     itemID,
		ReturnedAt: returnedAt,
	}
}

// DeleteCommand represents the administrative removal of a whole
// reservation, independent of return status.
type DeleteCommand struct {
	ReservationID uuid.UUID
}

// BuildDeleteCommand creates a new DeleteCommand.
func BuildDeleteCommand(reservationID uuid.UUID) DeleteCommand {
	return DeleteCommand{ReservationID: reservationID}
}

package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
)

// CreateCommand represents the intent to book a pickup slot for the given
// books on the given date.
type CreateCommand struct {
	UserID     uuid.UUID
	BookIDs    []uuid.UUID
	PickupDate time.Time
}

// BuildCreateCommand creates a new CreateCommand.
func BuildCreateCommand(userID uuid.UUID, bookIDs []uuid.UUID, pickupDate time.Time) CreateCommand {
	return CreateCommand{
		UserID:     userID,
		BookIDs:    bookIDs,
		PickupDate: pickupDate,
	}
}

// ChangeStatusCommand represents the intent to move a schedule into a
// terminal status.
type ChangeStatusCommand struct {
	ScheduleID uuid.UUID
	Status     core.ScheduleStatus
}

// BuildChangeStatusCommand creates a new ChangeStatusCommand.
func BuildChangeStatusCommand(scheduleID uuid.UUID, status core.ScheduleStatus) ChangeStatusCommand {
	return ChangeStatusCommand{
		ScheduleID: scheduleID,
		Status:     status,
	}
}

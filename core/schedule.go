package core

import (
	"time"

	"github.com/google/uuid"
)

const (
	// ScheduleDeadlineWorkingDays is the pickup window, counted in working days.
	ScheduleDeadlineWorkingDays = 5

	// DuplicateScheduleLimit is the maximum number of open schedules a user
	// may hold for the same book.
	DuplicateScheduleLimit = 2

	// ScheduleLookbackDays is how far back recent schedules are loaded when
	// the duplicate rule is evaluated.
	ScheduleLookbackDays = 30
)

// ScheduleStatus is the lifecycle state of a pickup schedule.
type ScheduleStatus string

const (
	ScheduleStatusPending  ScheduleStatus = "pending"
	ScheduleStatusFinished ScheduleStatus = "finished"
	ScheduleStatusCanceled ScheduleStatus = "canceled"
)

// ScheduleItem is one book within a pickup schedule. The book name is
// copied on creation, like on reservation items.
type ScheduleItem struct {
	Identity
	BookID   uuid.UUID
	BookName string
}

// Schedule is a booked future pickup slot. It reserves a calendar slot, not
// a copy; stock is only touched when the pickup is converted into a
// reservation.
type Schedule struct {
	Identity
	UserID     uuid.UUID
	Items      []ScheduleItem
	Status     ScheduleStatus
	PickupDate time.Time
}

// BuildSchedule creates a pending Schedule with one item per requested book.
func BuildSchedule(newID IDGenerator, userID uuid.UUID, books []Book, pickupDate time.Time, now time.Time) Schedule {
	items := make([]ScheduleItem, 0, len(books))
	for _, book := range books {
		items = append(items, ScheduleItem{
			Identity: BuildIdentity(newID(), now),
			BookID:   book.ID,
			BookName: book.Name,
		})
	}

	return Schedule{
		Identity:   BuildIdentity(newID(), now),
		UserID:     userID,
		Items:      items,
		Status:     ScheduleStatusPending,
		PickupDate: ToTimestamp(pickupDate),
	}
}

// CheckStatusTransition validates a schedule status change. Only a pending
// schedule may move, and only to finished or canceled.
func CheckStatusTransition(current ScheduleStatus, target ScheduleStatus) error {
	if current != ScheduleStatusPending {
		return ErrInvalidScheduleStatus
	}

	if target != ScheduleStatusFinished && target != ScheduleStatusCanceled {
		return ErrInvalidScheduleStatus
	}

	return nil
}

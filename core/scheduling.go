package core

import (
	"time"
)

// Validators for the schedule workflow.

// CheckScheduleDeadline fails with ScheduleDeadlineExceededError when the
// pickup date lies beyond ScheduleDeadlineWorkingDays working days after
// the creation date. Saturdays and Sundays do not count into the window.
func CheckScheduleDeadline(createdAt time.Time, pickupDate time.Time) error {
	deadline := AddWorkingDays(createdAt, ScheduleDeadlineWorkingDays)

	if !IsOnOrBeforeDay(pickupDate, deadline) {
		return ScheduleDeadlineExceededError{
			PickupDate: ToTimestamp(pickupDate),
			Deadline:   ToTimestamp(deadline),
		}
	}

	return nil
}

// CheckDuplicateBookLimit fails with DuplicateBookScheduleError when the
// user already holds DuplicateScheduleLimit or more pending schedules for
// any of the requested books, reporting all offending book names.
func CheckDuplicateBookLimit(recent []Schedule, requested []Book) error {
	pendingPerBook := make(map[string]int)

	for _, schedule := range recent {
		if schedule.Status != ScheduleStatusPending {
			continue
		}

		for _, item := range schedule.Items {
			pendingPerBook[item.BookID.String()]++
		}
	}

	var duplicates []string

	for _, book := range requested {
		if pendingPerBook[book.ID.String()] >= DuplicateScheduleLimit {
			duplicates = append(duplicates, book.Name)
		}
	}

	if len(duplicates) > 0 {
		return DuplicateBookScheduleError{BookNames: duplicates}
	}

	return nil
}

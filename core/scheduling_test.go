package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cslopes3/library-circulation-go/core"
)

func givenPendingSchedule(t *testing.T, userID uuid.UUID, createdAt time.Time, books ...core.Book) core.Schedule {
	t.Helper()

	return core.BuildSchedule(core.NewIDGenerator(), userID, books, createdAt.AddDate(0, 0, 2), createdAt)
}

func Test_CheckScheduleDeadline(t *testing.T) {
	// Monday, 2024-01-08
	monday := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	t.Run("pickup exactly five working days out succeeds", func(t *testing.T) {
		// five working days from Monday is the following Monday
		pickup := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

		assert.NoError(t, core.CheckScheduleDeadline(monday, pickup))
	})

	t.Run("pickup six working days out fails", func(t *testing.T) {
		pickup := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)

		err := core.CheckScheduleDeadline(monday, pickup)

		var deadlineExceeded core.ScheduleDeadlineExceededError
		require.ErrorAs(t, err, &deadlineExceeded)
		assert.Equal(t, core.ToTimestamp(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)), deadlineExceeded.Deadline)
	})

	t.Run("pickup within the same week succeeds", func(t *testing.T) {
		friday := time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)

		assert.NoError(t, core.CheckScheduleDeadline(monday, friday))
	})
}

func Test_CheckDuplicateBookLimit(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	bookX := givenBook(t, "Domain-Driven Design", 3, 3)
	bookY := givenBook(t, "Refactoring", 2, 2)

	t.Run("two pending schedules for the same book block a third", func(t *testing.T) {
		recent := []core.Schedule{
			givenPendingSchedule(t, userID, now.AddDate(0, 0, -3), bookX),
			givenPendingSchedule(t, userID, now.AddDate(0, 0, -1), bookX),
		}

		err := core.CheckDuplicateBookLimit(recent, []core.Book{bookX})

		var duplicate core.DuplicateBookScheduleError
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, []string{"Domain-Driven Design"}, duplicate.BookNames)
	})

	t.Run("a different book passes despite duplicates for another", func(t *testing.T) {
		recent := []core.Schedule{
			givenPendingSchedule(t, userID, now.AddDate(0, 0, -3), bookX),
			givenPendingSchedule(t, userID, now.AddDate(0, 0, -1), bookX),
		}

		assert.NoError(t, core.CheckDuplicateBookLimit(recent, []core.Book{bookY}))
	})

	t.Run("finished and canceled schedules do not count", func(t *testing.T) {
		finished := givenPendingSchedule(t, userID, now.AddDate(0, 0, -3), bookX)
		finished.Status = core.ScheduleStatusFinished

		canceled := givenPendingSchedule(t, userID, now.AddDate(0, 0, -2), bookX)
		canceled.Status = core.ScheduleStatusCanceled

		recent := []core.Schedule{finished, canceled, givenPendingSchedule(t, userID, now.AddDate(0, 0, -1), bookX)}

		assert.NoError(t, core.CheckDuplicateBookLimit(recent, []core.Book{bookX}))
	})
}

func Test_CheckStatusTransition(t *testing.T) {
	testCases := []struct {
		name    string
		current core.ScheduleStatus
		target  core.ScheduleStatus
		wantErr bool
	}{
		{name: "pending to finished", current: core.ScheduleStatusPending, target: core.ScheduleStatusFinished},
		{name: "pending to canceled", current: core.ScheduleStatusPending, target: core.ScheduleStatusCanceled},
		{name: "pending to pending is invalid", current: core.ScheduleStatusPending, target: core.ScheduleStatusPending, wantErr: true},
		{name: "pending to unknown is invalid", current: core.ScheduleStatusPending, target: core.ScheduleStatus("done"), wantErr: true},
		{name: "finished is terminal", current: core.ScheduleStatusFinished, target: core.ScheduleStatusCanceled, wantErr: true},
		{name: "canceled is terminal", current: core.ScheduleStatusCanceled, target: core.ScheduleStatusFinished, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := core.CheckStatusTransition(tc.current, tc.target)

			if tc.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidScheduleStatus)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package core

import (
	"time"
)

// The calendar policy is a set of pure functions over calendar days. Times
// are compared by day in UTC so that results do not depend on the hour an
// operation happens to run at.

// dayOf strips a time down to its calendar day in UTC.
func dayOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// IsOnOrBeforeDay reports whether date falls on the same calendar day as
// day or earlier.
func IsOnOrBeforeDay(date time.Time, day time.Time) bool {
	return !dayOf(date).After(dayOf(day))
}

// IsOnOrBeforeToday reports whether date falls on the same calendar day as
// today or earlier. A due date for which this holds has lapsed.
func IsOnOrBeforeToday(date time.Time, today time.Time) bool {
	return IsOnOrBeforeDay(date, today)
}

// IsBeforeToday reports whether date falls on a calendar day strictly
// earlier than today.
func IsBeforeToday(date time.Time, today time.Time) bool {
	return dayOf(date).Before(dayOf(today))
}

// AddWorkingDays returns the date that lies the given number of working
// days after start, skipping Saturdays and Sundays.
func AddWorkingDays(start time.Time, days int) time.Time {
	result := start

	for added := 0; added < days; {
		result = result.AddDate(0, 0, 1)

		if weekday := result.Weekday(); weekday != time.Saturday && weekday != time.Sunday {
			added++
		}
	}

	return result
}

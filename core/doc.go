// Package core contains the pure domain model of the circulation backend:
// the aggregates (books, reservations, schedules, users), the calendar
// policy, and the rule validators the engines run before any mutation.
//
// Everything in this package is free of I/O and side effects. Validators
// operate on data that has already been loaded and either return nil or a
// typed failure carrying the context needed for a precise error message.
package core

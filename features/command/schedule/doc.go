// Package schedule implements the schedule engine: booking a future pickup
// slot within the working-day deadline and moving a schedule through its
// status transitions.
//
// A pickup slot reserves a calendar slot, not a copy; stock is only touched
// when a pickup is converted into a reservation, which is a workflow
// external to this engine.
package schedule

package core

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces a fresh unique identifier. It is injected into the
// engines as a collaborator so that identity creation stays deterministic
// under test.
type IDGenerator func() uuid.UUID

// NewIDGenerator returns the default generator backed by uuid.New.
func NewIDGenerator() IDGenerator {
	return uuid.New
}

// Identity carries the identifier and lifecycle timestamps shared by all
// aggregates and their child records. It is embedded by field, never
// inherited.
type Identity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BuildIdentity creates a new Identity with both timestamps set to the given time.
func BuildIdentity(id uuid.UUID, at time.Time) Identity {
	ts := ToTimestamp(at)

	return Identity{
		ID:        id,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Touch records a modification time.
func (i *Identity) Touch(at time.Time) {
	i.UpdatedAt = ToTimestamp(at)
}

// ToTimestamp normalizes a time to UTC with microsecond precision, matching
// the resolution of the timestamp columns in storage.
func ToTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

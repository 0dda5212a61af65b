package shell

import (
	"time"
)

// Clock supplies the current time to the engines. Injected so that
// date-dependent rules can be tested against fixed dates.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Logger is the dependency-free logging contract used by the engines and
// the Postgres store. Args are slog-style alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

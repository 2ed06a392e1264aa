package reminder

import (
	"context"
	"time"
)

// Store is the contract every reminder backend (file, memory, SQL) satisfies.
// Create assigns id = number of stored reminders + 1 and the creation time.
type Store interface {
	List(ctx context.Context) ([]Reminder, error)
	Create(ctx context.Context, fields Reminder) (Reminder, error)
}

// Clock returns the current time; stores take one so tests can pin it.
type Clock func() time.Time

// LocalClock returns a Clock reading wall time in loc.
func LocalClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}

package store

import (
	"context"
	"sync"

	"github.com/i474232898/voice-assistant/internal/reminder"
)

// MemoryStore is a concurrency-safe in-memory reminder store. Its contents
// are lost when the process exits.
type MemoryStore struct {
	mu sync.RWMutex

	reminders []reminder.Reminder
	now       reminder.Clock
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(now reminder.Clock) *MemoryStore {
	return &MemoryStore{
		now: now,
	}
}

// List returns a snapshot of the stored reminders in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]reminder.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]reminder.Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out, nil
}

// Create appends a new reminder.
func (s *MemoryStore) Create(_ context.Context, fields reminder.Reminder) (reminder.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := reminder.Stamp(fields, len(s.reminders)+1, s.now())
	s.reminders = append(s.reminders, r)
	return r, nil
}

package engine

import (
	"context"
	"sync"

	"github.com/roach88/bto/internal/domain"
)

// Journal receives one event per committed mutation.
//
// Append is called while the registry write transaction is still open. If it
// returns an error the mutation is rolled back and the error is returned to
// the caller, so the journal never misses a committed change. The store
// package's *Store implements Journal on SQLite.
type Journal interface {
	Append(ctx context.Context, ev domain.Event) error
}

// MemoryJournal keeps events in memory.
// Thread-safety: safe for concurrent use.
type MemoryJournal struct {
	mu     sync.Mutex
	events []domain.Event
}

// Append records ev.
func (j *MemoryJournal) Append(_ context.Context, ev domain.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
	return nil
}

// Events returns a copy of the recorded events in append order.
func (j *MemoryJournal) Events() []domain.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.Event(nil), j.events...)
}

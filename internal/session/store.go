// internal/session/store.go
package session

import (
	"context"
	"errors"
	"sync"

	"policy-assistant/internal/models"
)

// ErrNotFound is returned when a session id has no stored transcript.
var ErrNotFound = errors.New("session not found")

// Store persists conversation sessions keyed by an opaque id. History is
// append-only; a successfully answered request appends exactly one user turn
// and one assistant turn.
type Store interface {
	// GetOrCreate returns the session for id, creating it with the seed
	// history when it does not exist yet. The seed is ignored for existing
	// sessions.
	GetOrCreate(ctx context.Context, id string, seed []models.Turn) (*models.Session, error)

	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Session, error)

	// AppendTurns appends turns to an existing session and refreshes its
	// activity timestamp.
	AppendTurns(ctx context.Context, id string, turns ...models.Turn) error

	// Lock serializes request processing for one session. The returned
	// function releases the lock.
	Lock(id string) func()
}

// lockTable hands out one mutex per session id. Locks are process-local:
// each session is pinned to a single server instance.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: map[string]*sync.Mutex{}}
}

func (t *lockTable) Lock(id string) func() {
	t.mu.Lock()
	m, ok := t.locks[id]
	if !ok {
		m = &sync.Mutex{}
		t.locks[id] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (t *lockTable) Forget(id string) {
	t.mu.Lock()
	delete(t.locks, id)
	t.mu.Unlock()
}

func copyTurns(turns []models.Turn) []models.Turn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out
}

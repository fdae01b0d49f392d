// internal/session/memory_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

func newMemStore(t *testing.T, ttl time.Duration, max int) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(ttl, max, logger.NewNoOpLogger())
	t.Cleanup(s.Close)
	return s
}

func TestMemoryStore_GetOrCreate(t *testing.T) {
	store := newMemStore(t, time.Minute, 10)
	ctx := context.Background()

	seed := []models.Turn{{Role: models.RoleUser, Content: "earlier question"}}
	sess, err := store.GetOrCreate(ctx, "s1", seed)
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, seed, sess.History)

	// seed is ignored for an existing session
	again, err := store.GetOrCreate(ctx, "s1", []models.Turn{{Role: models.RoleUser, Content: "other"}})
	require.NoError(t, err)
	assert.Equal(t, seed, again.History)
}

func TestMemoryStore_AppendTurns(t *testing.T) {
	store := newMemStore(t, time.Minute, 10)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s1", nil)
	require.NoError(t, err)

	err = store.AppendTurns(ctx, "s1",
		models.Turn{Role: models.RoleUser, Content: "what is covered?"},
		models.Turn{Role: models.RoleAssistant, Content: "Your travel plan covers..."},
	)
	require.NoError(t, err)

	sess, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, sess.History, 2)
	assert.Equal(t, models.RoleAssistant, sess.History[1].Role)
}

func TestMemoryStore_AppendMissingSession(t *testing.T) {
	store := newMemStore(t, time.Minute, 10)
	err := store.AppendTurns(context.Background(), "nope", models.Turn{Role: models.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := newMemStore(t, 10*time.Millisecond, 10)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s1", nil)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CapacityEviction(t *testing.T) {
	store := newMemStore(t, time.Minute, 2)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "old", nil)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = store.GetOrCreate(ctx, "mid", nil)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	// third session evicts "old", the least recently active
	_, err = store.GetOrCreate(ctx, "new", nil)
	require.NoError(t, err)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "mid")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	store := newMemStore(t, time.Minute, 10)
	ctx := context.Background()

	sess, err := store.GetOrCreate(ctx, "s1", []models.Turn{{Role: models.RoleUser, Content: "a"}})
	require.NoError(t, err)
	sess.History[0].Content = "mutated"

	fresh, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a", fresh.History[0].Content)
}

func TestLockTable_Serializes(t *testing.T) {
	store := newMemStore(t, time.Minute, 10)

	unlock := store.Lock("s1")
	acquired := make(chan struct{})
	go func() {
		u := store.Lock("s1")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

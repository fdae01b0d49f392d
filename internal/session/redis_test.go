// internal/session/redis_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, 30*time.Minute, logger.NewNoOpLogger()), mr
}

func TestRedisStore_GetOrCreate(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	seed := []models.Turn{{Role: models.RoleUser, Content: "hello"}}
	sess, err := store.GetOrCreate(ctx, "r1", seed)
	require.NoError(t, err)
	assert.Equal(t, seed, sess.History)

	assert.True(t, mr.Exists("session:r1"))

	again, err := store.GetOrCreate(ctx, "r1", nil)
	require.NoError(t, err)
	assert.Equal(t, seed, again.History)
}

func TestRedisStore_AppendTurns(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "r1", nil)
	require.NoError(t, err)

	err = store.AppendTurns(ctx, "r1",
		models.Turn{Role: models.RoleUser, Content: "is dental covered?"},
		models.Turn{Role: models.RoleAssistant, Content: "Dental is covered after..."},
	)
	require.NoError(t, err)

	sess, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, sess.History, 2)
	assert.Equal(t, "is dental covered?", sess.History[0].Content)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newRedisStore(t)
	_, err := store.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_TTLSet(t *testing.T) {
	store, mr := newRedisStore(t)

	_, err := store.GetOrCreate(context.Background(), "r1", nil)
	require.NoError(t, err)

	ttl := mr.TTL("session:r1")
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestRedisStore_ExpiredSessionIsGone(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "r1", nil)
	require.NoError(t, err)

	mr.FastForward(time.Hour)

	_, err = store.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

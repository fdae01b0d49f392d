// internal/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

const keyPrefix = "session:"

// RedisStore persists sessions as JSON blobs under session:<id> with a TTL
// refreshed on every write. Locks stay process-local: a session is served by
// one instance at a time.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	locks  *lockTable
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		locks:  newLockTable(),
		logger: log.WithFields(map[string]interface{}{"component": "session-redis"}),
	}
}

func (s *RedisStore) GetOrCreate(ctx context.Context, id string, seed []models.Turn) (*models.Session, error) {
	sess, err := s.load(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	sess = &models.Session{
		ID:           id,
		History:      copyTurns(seed),
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Debug("session created", map[string]interface{}{
		"session_id": id,
		"seed_turns": len(seed),
	})
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	return s.load(ctx, id)
}

func (s *RedisStore) AppendTurns(ctx context.Context, id string, turns ...models.Turn) error {
	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	sess.History = append(sess.History, turns...)
	sess.LastActivity = time.Now().UTC()
	return s.save(ctx, sess)
}

func (s *RedisStore) Lock(id string) func() {
	return s.locks.Lock(id)
}

func (s *RedisStore) load(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *RedisStore) save(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

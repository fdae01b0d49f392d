// internal/session/memory.go
package session

import (
	"context"
	"sync"
	"time"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/common/metrics"
	"policy-assistant/internal/models"
)

const sweepInterval = time.Minute

// MemoryStore keeps sessions in process memory with TTL expiry and a hard
// capacity cap. When the cap is reached the least recently active session is
// evicted to make room.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session

	ttl         time.Duration
	maxSessions int

	locks  *lockTable
	logger logger.Logger
	done   chan struct{}
	once   sync.Once
}

func NewMemoryStore(ttl time.Duration, maxSessions int, log logger.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if maxSessions <= 0 {
		maxSessions = 1000
	}

	s := &MemoryStore{
		sessions:    map[string]*models.Session{},
		ttl:         ttl,
		maxSessions: maxSessions,
		locks:       newLockTable(),
		logger:      log.WithFields(map[string]interface{}{"component": "session-memory"}),
		done:        make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *MemoryStore) GetOrCreate(_ context.Context, id string, seed []models.Turn) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && !s.expired(sess) {
		sess.LastActivity = time.Now().UTC()
		return snapshot(sess), nil
	}

	s.evictIfFullLocked()

	now := time.Now().UTC()
	sess := &models.Session{
		ID:           id,
		History:      copyTurns(seed),
		CreatedAt:    now,
		LastActivity: now,
	}
	s.sessions[id] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))

	s.logger.Debug("session created", map[string]interface{}{
		"session_id": id,
		"seed_turns": len(seed),
	})
	return snapshot(sess), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return nil, ErrNotFound
	}
	return snapshot(sess), nil
}

func (s *MemoryStore) AppendTurns(_ context.Context, id string, turns ...models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return ErrNotFound
	}
	sess.History = append(sess.History, turns...)
	sess.LastActivity = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Lock(id string) func() {
	return s.locks.Lock(id)
}

// Close stops the background sweeper.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) expired(sess *models.Session) bool {
	return time.Since(sess.LastActivity) > s.ttl
}

// evictIfFullLocked drops the least recently active session when the store
// is at capacity. Caller holds s.mu.
func (s *MemoryStore) evictIfFullLocked() {
	if len(s.sessions) < s.maxSessions {
		return
	}

	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.LastActivity.Before(oldest) {
			oldestID = id
			oldest = sess.LastActivity
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		s.locks.Forget(oldestID)
		s.logger.Info("session evicted at capacity", map[string]interface{}{
			"session_id": oldestID,
		})
	}
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			s.locks.Forget(id)
			removed++
		}
	}
	if removed > 0 {
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
		s.logger.Debug("expired sessions swept", map[string]interface{}{
			"removed":   removed,
			"remaining": len(s.sessions),
		})
	}
}

// snapshot copies the session so callers never share the internal slice.
func snapshot(sess *models.Session) *models.Session {
	out := *sess
	out.History = copyTurns(sess.History)
	return &out
}

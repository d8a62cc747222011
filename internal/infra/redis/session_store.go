package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quizmaster/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Controllers (and their timers) live in process; Redis carries a liveness
// marker per session so other instances and operators can see what is running.
type SessionStore struct {
	client    *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
	mu        sync.RWMutex
	sessions  map[string]*app.Controller
}

// DefaultOpTimeout bounds each marker write so a slow Redis never stalls a session.
const DefaultOpTimeout = 2 * time.Second

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:    client,
		ttl:       ttl,
		opTimeout: DefaultOpTimeout,
		sessions:  make(map[string]*app.Controller),
	}
}

func (s *SessionStore) Put(id string, c *app.Controller) {
	s.mu.Lock()
	s.sessions[id] = c
	s.mu.Unlock()
	// best-effort liveness marker
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	_ = s.client.Set(ctx, s.key(id), c.UserName(), s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*app.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[id]
	return c, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
		defer cancel()
		_ = s.client.Del(ctx, s.key(id)).Err()
	}
}

// Live counts sessions marked live across every instance sharing this Redis.
func (s *SessionStore) Live(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, "quiz:session:*", 100).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}

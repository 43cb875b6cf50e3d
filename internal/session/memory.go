package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	userID    uint
	createdAt time.Time
	expiresAt time.Time
}

// MemoryStore keeps sessions in a guarded map owned by the instance.
// A zero ttl means sessions never expire.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) CreateSession(ctx context.Context, userID uint) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	e := entry{userID: userID, createdAt: now}
	if s.ttl > 0 {
		e.expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[token] = e
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryStore) ResolveSession(ctx context.Context, token string) (uint, bool, error) {
	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return 0, false, nil
	}

	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return 0, false, nil
	}

	return e.userID, true, nil
}

func (s *MemoryStore) DestroySession(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// size is the number of stored sessions, expired ones included.
func (s *MemoryStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type ttlEntry struct {
	token   string
	expires time.Time
}

type ttlSet struct {
	mu      sync.Mutex
	entries map[string]ttlEntry
	now     func() time.Time
}

func newTTLSet() *ttlSet {
	return &ttlSet{entries: make(map[string]ttlEntry), now: time.Now}
}

// add returns false while an unexpired entry for key exists. The returned
// token identifies this holder to remove.
func (s *ttlSet) add(key string, ttl time.Duration) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		return "", false
	}
	token := uuid.NewString()
	s.entries[key] = ttlEntry{token: token, expires: now.Add(ttl)}
	return token, true
}

// remove is a no-op once another holder has taken over the key.
func (s *ttlSet) remove(key, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && e.token == token {
		delete(s.entries, key)
	}
}

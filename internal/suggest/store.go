package suggest

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/atip/dashboard/internal/observability"
)

// Store holds search sessions in a bounded LRU; the least recently used
// session is dropped once capacity is reached.
type Store struct {
	cache   *lru.Cache[string, *Session]
	metrics *observability.Metrics
}

// NewStore creates a Store holding at most capacity sessions.
func NewStore(capacity int, metrics *observability.Metrics) (*Store, error) {
	s := &Store{metrics: metrics}
	cache, err := lru.NewWithEvict[string, *Session](capacity, func(string, *Session) {
		s.metrics.SetSearchSessions(s.cache.Len())
	})
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Session returns the session for id, creating one when id is unknown or not
// a valid session identifier. The boolean reports whether a session was
// created; callers then hand its ID back to the browser.
func (s *Store) Session(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err == nil {
		if sess, ok := s.cache.Get(id); ok {
			return sess, false
		}
	} else {
		id = uuid.NewString()
	}

	candidate := NewSession(id)
	if prev, ok, _ := s.cache.PeekOrAdd(id, candidate); ok {
		return prev, false
	}
	s.metrics.SetSearchSessions(s.cache.Len())
	return candidate, true
}

// Lookup returns an existing session without creating one.
func (s *Store) Lookup(id string) (*Session, bool) {
	return s.cache.Get(id)
}

// Remove drops a session.
func (s *Store) Remove(id string) {
	s.cache.Remove(id)
	s.metrics.SetSearchSessions(s.cache.Len())
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	return s.cache.Len()
}

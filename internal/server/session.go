package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

// DefaultSessionTTL is how long an unused session is kept.
const DefaultSessionTTL = time.Hour

// session is one client's tree. The tree core is not safe for concurrent
// use, so every request touching it holds mu for its whole duration.
type session struct {
	mu      sync.Mutex
	id      uuid.UUID
	tree    *pipeline.Loaded
	created time.Time
	used    time.Time
}

// touch marks the session used. Callers hold s.mu.
func (s *session) touch(now time.Time) { s.used = now }

func (s *session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.used) > ttl
}

// registry maps session ids to sessions.
type registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	max      int
}

func newRegistry(max int) *registry {
	return &registry{sessions: make(map[uuid.UUID]*session), max: max}
}

func (r *registry) add(l *pipeline.Loaded, now time.Time) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.sessions) >= r.max {
		return nil, errTooManySessions
	}
	s := &session{id: uuid.New(), tree: l, created: now, used: now}
	r.sessions[s.id] = s
	return s, nil
}

func (r *registry) get(raw string) (*session, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "invalid session id %q", raw)
	}
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "session %s not found", id)
	}
	return s, nil
}

func (r *registry) remove(raw string) error {
	s, err := r.get(raw)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.sessions, s.id)
	r.mu.Unlock()
	return nil
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// cleanup drops sessions unused for longer than ttl and returns how many
// were removed. Expiry is checked without holding the registry lock, so a
// slow request on one session does not stall lookups of the others.
func (r *registry) cleanup(now time.Time, ttl time.Duration) int {
	r.mu.RLock()
	all := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	var stale []*session
	for _, s := range all {
		if s.expired(now, ttl) {
			stale = append(stale, s)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range stale {
		if cur, ok := r.sessions[s.id]; ok && cur == s {
			delete(r.sessions, s.id)
			n++
		}
	}
	return n
}

package session

import (
	"sync"
	"time"
)

// Store is the in-memory session map. The store mutex only guards the map
// itself; per-session state is guarded by each session's own lock, so
// requests for different identifiers proceed fully in parallel.
//
// Lock order is always store -> session. No caller acquires the store mutex
// while holding a session lock, which keeps Sweep (store then session)
// deadlock-free.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	now         func() time.Time
	maxSessions int
}

// New creates a store with an injected clock. maxSessions <= 0 disables the
// capacity limit.
func New(now func() time.Time, maxSessions int) *Store {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Store{
		sessions:    make(map[string]*Session),
		now:         now,
		maxSessions: maxSessions,
	}
}

// GetOrCreate returns the session for id, creating it on first sight.
// When the store is at capacity, the least-recently-active session is
// evicted to make room; capacity is a limit, not an error.
func (st *Store) GetOrCreate(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s, false
	}

	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		st.evictOldestLocked()
	}

	now := st.now()
	s := &Session{
		ID:           id,
		CreatedAt:    now,
		LastActivity: now,
		Status:       StatusActive,
	}
	st.sessions[id] = s
	return s, true
}

// Get returns the session for id, or nil when absent.
func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// Remove deletes the session for id.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Sweep removes sessions idle for longer than ttl and reports how many were
// removed. It takes each session's lock before inspecting it, so it never
// races an in-flight mutation for the same identifier.
func (st *Store) Sweep(ttl time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		s.Lock()
		expired := s.Expired(now, ttl)
		s.Unlock()
		if expired {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Snapshots returns operator summaries for every stored session.
func (st *Store) Snapshots() []Summary {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]Summary, 0, len(st.sessions))
	for _, s := range st.sessions {
		s.Lock()
		out = append(out, s.Snapshot())
		s.Unlock()
	}
	return out
}

// evictOldestLocked drops the session with the oldest last-activity.
// Caller holds the store mutex.
func (st *Store) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, s := range st.sessions {
		s.Lock()
		at := s.LastActivity
		s.Unlock()
		if oldestID == "" || at.Before(oldestAt) {
			oldestID = id
			oldestAt = at
		}
	}
	if oldestID != "" {
		delete(st.sessions, oldestID)
	}
}

package session

import (
	"sync"
	"time"

	"github.com/lurelabs/lure/internal/detect"
	"github.com/lurelabs/lure/internal/intel"
)

// Status is the session lifecycle state. A session transitions
// active -> terminated exactly once and never reverses.
type Status string

const (
	StatusActive     Status = "active"
	StatusTerminated Status = "terminated"
)

// Message is one exchanged turn kept in the conversation history.
type Message struct {
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Session is the accumulated state of one conversation. All field access
// must happen while holding the session lock; the store hands out *Session
// and callers serialize per identifier with Lock/Unlock.
type Session struct {
	mu sync.Mutex

	ID                string
	Messages          []Message
	MessageCount      int
	Intents           []detect.Intent
	BestConfidence    float64
	Intel             intel.Record
	CreatedAt         time.Time
	LastActivity      time.Time
	Status            Status
	TerminationReason string
}

// Lock acquires exclusive access to the session state.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// AddMessage appends to the history, bumps the count and refreshes
// last-activity. Caller must hold the lock.
func (s *Session) AddMessage(sender, text string, now time.Time) {
	s.Messages = append(s.Messages, Message{Sender: sender, Text: text, At: now})
	s.MessageCount++
	s.LastActivity = now
}

// MergeIntents unions newly matched categories into the accumulated set and
// raises the best confidence. The set never shrinks. Caller must hold the
// lock. Returns the labels that were not seen before.
func (s *Session) MergeIntents(res detect.Result) []detect.Intent {
	var added []detect.Intent
	for _, in := range res.Intents {
		if !s.HasIntent(in) {
			s.Intents = append(s.Intents, in)
			added = append(added, in)
		}
	}
	if res.Confidence > s.BestConfidence {
		s.BestConfidence = res.Confidence
	}
	return added
}

// HasIntent reports whether the category was already matched this session.
func (s *Session) HasIntent(in detect.Intent) bool {
	for _, v := range s.Intents {
		if v == in {
			return true
		}
	}
	return false
}

// Terminate marks the session closed. Idempotent callers must check Status
// first; the first reason sticks.
func (s *Session) Terminate(reason string) {
	if s.Status == StatusTerminated {
		return
	}
	s.Status = StatusTerminated
	s.TerminationReason = reason
}

// Expired reports whether the idle timeout elapsed since the last activity.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}

// Summary is a lock-free snapshot for operator listings.
type Summary struct {
	ID             string          `json:"sessionId"`
	MessageCount   int             `json:"messageCount"`
	Intents        []detect.Intent `json:"intents"`
	BestConfidence float64         `json:"bestConfidence"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastActivity   time.Time       `json:"lastActivity"`
}

// Snapshot copies the fields operators care about. Caller must hold the lock.
func (s *Session) Snapshot() Summary {
	return Summary{
		ID:             s.ID,
		MessageCount:   s.MessageCount,
		Intents:        append([]detect.Intent(nil), s.Intents...),
		BestConfidence: s.BestConfidence,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
		LastActivity:   s.LastActivity,
	}
}

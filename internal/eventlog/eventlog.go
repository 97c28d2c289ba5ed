package eventlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of engagement event
type EventType string

const (
	EventSessionStarted    EventType = "session_started"
	EventMessageReceived   EventType = "message_received"
	EventIntentMatched     EventType = "intent_matched"
	EventIntelExtracted    EventType = "intel_extracted"
	EventSessionTerminated EventType = "session_terminated"
	EventReportDelivered   EventType = "report_delivered"
	EventReportFailed      EventType = "report_failed"
	EventSessionSwept      EventType = "session_swept"
)

// Event is one engagement lifecycle record.
type Event struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	At        time.Time      `json:"at"`
}

// Logger keeps a bounded in-memory ring of events and fans them out to
// subscribers. Publishing never blocks: a subscriber that falls behind
// drops events.
type Logger struct {
	mu     sync.Mutex
	events []Event
	start  int
	count  int
	subs   map[chan Event]struct{}
	now    func() time.Time
}

// New creates a logger retaining at most capacity events, stamping them
// with the injected clock (nil for wall time).
func New(capacity int, now func() time.Time) *Logger {
	if capacity <= 0 {
		capacity = 1024
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Logger{
		events: make([]Event, capacity),
		subs:   make(map[chan Event]struct{}),
		now:    now,
	}
}

// Log records an event and fans it out.
func (l *Logger) Log(sessionID string, eventType EventType, data map[string]any) {
	ev := Event{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Type:      eventType,
		Data:      data,
		At:        l.now(),
	}

	l.mu.Lock()
	idx := (l.start + l.count) % len(l.events)
	l.events[idx] = ev
	if l.count < len(l.events) {
		l.count++
	} else {
		l.start = (l.start + 1) % len(l.events)
	}
	for ch := range l.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	l.mu.Unlock()
}

// Recent returns up to n most recent events, oldest first.
func (l *Logger) Recent(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > l.count {
		n = l.count
	}
	out := make([]Event, 0, n)
	for i := l.count - n; i < l.count; i++ {
		out = append(out, l.events[(l.start+i)%len(l.events)])
	}
	return out
}

// Subscribe registers a buffered channel receiving future events.
func (l *Logger) Subscribe() chan Event {
	ch := make(chan Event, 64)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (l *Logger) Unsubscribe(ch chan Event) {
	l.mu.Lock()
	if _, ok := l.subs[ch]; ok {
		delete(l.subs, ch)
		close(ch)
	}
	l.mu.Unlock()
}

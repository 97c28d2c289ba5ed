// Package engine drives one conversation turn end to end: load the session,
// classify, extract, merge, decide on termination and pick the next reply.
// All per-session work happens under that session's lock, so two requests
// for the same identifier are serialized while different identifiers run in
// parallel.
package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lurelabs/lure/internal/detect"
	"github.com/lurelabs/lure/internal/eventlog"
	"github.com/lurelabs/lure/internal/intel"
	"github.com/lurelabs/lure/internal/reply"
	"github.com/lurelabs/lure/internal/session"
)

var (
	// ErrInvalidInput rejects empty or oversized message text before any
	// session mutation.
	ErrInvalidInput = errors.New("invalid message text")

	// ErrSessionTerminated rejects messages to an already closed session.
	ErrSessionTerminated = errors.New("session already terminated")

	// ErrUnknownSession is returned by explicit operations on absent ids.
	ErrUnknownSession = errors.New("unknown session")
)

// Termination reasons recorded on the session and in events.
const (
	ReasonMaxMessages = "max_messages_reached"
	ReasonIdleTimeout = "session_timeout"
	ReasonExternal    = "manually_terminated"
)

// Config bounds a single conversation.
type Config struct {
	MaxMessages     int           // terminate when the count reaches this
	MinForReport    int           // minimum engagement before a report is owed
	SessionTTL      time.Duration // idle timeout
	MaxMessageBytes int           // invalid-input threshold
	CallbackTimeout time.Duration // bound on fire-and-forget delivery
}

// Sink receives finished reports. Delivery failures never affect the
// already-final termination decision.
type Sink interface {
	Deliver(ctx context.Context, rep *Report) error
}

// Engine is the conversation orchestrator.
type Engine struct {
	cfg    Config
	logger *log.Logger
	store  *session.Store
	sink   Sink
	events *eventlog.Logger
	now    func() time.Time
}

// New creates an engine. sink may be nil when no callback is configured.
func New(cfg Config, logger *log.Logger, store *session.Store, sink Sink, events *eventlog.Logger, now func() time.Time) *Engine {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 20
	}
	if cfg.MinForReport <= 0 {
		cfg.MinForReport = 3
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 8192
	}
	if cfg.CallbackTimeout <= 0 {
		cfg.CallbackTimeout = 10 * time.Second
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		store:  store,
		sink:   sink,
		events: events,
		now:    now,
	}
}

// Outcome is the result of one processed inbound message.
type Outcome struct {
	Reply      string
	Stage      reply.Stage
	Terminated bool
	Report     *Report // nil unless the termination produced one
}

// HandleMessage processes one inbound message for a session. Steps run in
// order under the session lock: terminated check, history append,
// classification merge, extraction merge, termination evaluation, reply
// selection, and (on a reportable termination) fire-and-forget delivery.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, text string) (Outcome, error) {
	if text == "" || len(text) > e.cfg.MaxMessageBytes {
		return Outcome{}, ErrInvalidInput
	}

	s, created := e.store.GetOrCreate(sessionID)
	if created {
		e.events.Log(sessionID, eventlog.EventSessionStarted, nil)
	}

	s.Lock()
	defer s.Unlock()

	if s.Status == session.StatusTerminated {
		return Outcome{}, ErrSessionTerminated
	}

	// Idle timeout only applies on a subsequent check, never to the first
	// message of a fresh session. Evaluate against the previous activity
	// before this message refreshes it.
	now := e.now()
	idleExpired := s.MessageCount > 0 && s.Expired(now, e.cfg.SessionTTL)

	s.AddMessage("scammer", text, now)
	e.events.Log(sessionID, eventlog.EventMessageReceived, map[string]any{"count": s.MessageCount})

	res := e.classify(text)
	if added := s.MergeIntents(res); len(added) > 0 {
		e.events.Log(sessionID, eventlog.EventIntentMatched, map[string]any{
			"intents":    added,
			"confidence": res.Confidence,
		})
	}

	rec := e.extract(text)
	if rec.Count() > 0 {
		e.events.Log(sessionID, eventlog.EventIntelExtracted, map[string]any{"items": rec.Count()})
	}
	s.Intel.Merge(rec)

	reason := ""
	switch {
	case s.MessageCount >= e.cfg.MaxMessages:
		reason = ReasonMaxMessages
	case idleExpired:
		reason = ReasonIdleTimeout
	}

	if reason == "" {
		return Outcome{
			Reply: reply.Select(text, s.Intents, s.MessageCount),
			Stage: reply.StageFor(s.MessageCount),
		}, nil
	}

	rep := e.terminateLocked(s, reason, now)
	return Outcome{
		Reply:      reply.Goodbye(s.MessageCount),
		Stage:      reply.StageGoodbye,
		Terminated: true,
		Report:     rep,
	}, nil
}

// Terminate closes a session on explicit external request. Termination is
// final; a second call fails with ErrSessionTerminated.
func (e *Engine) Terminate(sessionID string) (*Report, error) {
	s := e.store.Get(sessionID)
	if s == nil {
		return nil, ErrUnknownSession
	}

	s.Lock()
	defer s.Unlock()

	if s.Status == session.StatusTerminated {
		return nil, ErrSessionTerminated
	}
	return e.terminateLocked(s, ReasonExternal, e.now()), nil
}

// Cleanup sweeps sessions idle beyond ttl; ttl <= 0 uses the configured TTL.
func (e *Engine) Cleanup(ttl time.Duration) int {
	if ttl <= 0 {
		ttl = e.cfg.SessionTTL
	}
	removed := e.store.Sweep(ttl)
	if removed > 0 {
		e.events.Log("", eventlog.EventSessionSwept, map[string]any{"removed": removed})
		e.logger.Printf("engine: swept %d expired sessions", removed)
	}
	return removed
}

// ActiveSessions returns the number of stored sessions.
func (e *Engine) ActiveSessions() int { return e.store.Len() }

// terminateLocked finalizes the session and, when the engagement produced
// enough evidence, builds the report and hands it to the sink without
// blocking the reply path. Caller holds the session lock.
func (e *Engine) terminateLocked(s *session.Session, reason string, now time.Time) *Report {
	s.Terminate(reason)
	e.events.Log(s.ID, eventlog.EventSessionTerminated, map[string]any{"reason": reason})
	e.logger.Printf("engine: session %s terminated (%s) after %d messages", s.ID, reason, s.MessageCount)

	if len(s.Intents) == 0 || s.MessageCount < e.cfg.MinForReport {
		return nil
	}

	rep := buildReport(s, now)
	go e.deliver(rep)
	return rep
}

// deliver runs the fire-and-forget callback with a bounded timeout. Failure
// is logged and captured, never retried here and never rolled back into the
// session.
func (e *Engine) deliver(rep *Report) {
	if e.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CallbackTimeout)
	defer cancel()

	if err := e.sink.Deliver(ctx, rep); err != nil {
		e.logger.Printf("engine: report delivery failed for session %s: %v", rep.SessionID, err)
		sentry.CaptureException(err)
		e.events.Log(rep.SessionID, eventlog.EventReportFailed, map[string]any{"error": err.Error()})
		return
	}
	e.events.Log(rep.SessionID, eventlog.EventReportDelivered, map[string]any{"reportId": rep.ReportID})
}

// classify never lets a pattern anomaly escape: it degrades to "no match".
func (e *Engine) classify(text string) (res detect.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("engine: classifier panic recovered: %v", r)
			res = detect.Result{}
		}
	}()
	return detect.Classify(text)
}

// extract mirrors classify's degrade-to-empty behavior.
func (e *Engine) extract(text string) (rec intel.Record) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("engine: extractor panic recovered: %v", r)
			rec = intel.Record{}
		}
	}()
	return intel.Extract(text)
}

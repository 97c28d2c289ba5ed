package httpapi

import (
	"context"
	"sync"
)

// IntakeGate admits honeypot requests and supports graceful drain. It keeps
// an in-flight count per session identifier, so operators can see not just
// how many requests are running but how many conversations they belong to.
//
// Once Drain is called no new request is admitted; DrainWait then blocks
// until the last in-flight request releases or the context expires.
type IntakeGate struct {
	mu       sync.Mutex
	draining bool
	inflight map[string]int
	total    int
	idle     chan struct{} // closed when draining and total reaches zero
}

func NewIntakeGate() *IntakeGate {
	return &IntakeGate{
		inflight: make(map[string]int),
		idle:     make(chan struct{}),
	}
}

// Acquire admits one request for the given session identifier. It returns
// a release function that must be called exactly once when the request
// finishes, or ok=false when the gate is draining. The admission check and
// the count update happen under one lock, so no request slips in after
// Drain returns.
func (g *IntakeGate) Acquire(sessionID string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.draining {
		return nil, false
	}
	g.inflight[sessionID]++
	g.total++

	var once sync.Once
	return func() {
		once.Do(func() { g.release(sessionID) })
	}, true
}

func (g *IntakeGate) release(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inflight[sessionID] <= 1 {
		delete(g.inflight, sessionID)
	} else {
		g.inflight[sessionID]--
	}
	g.total--
	if g.draining && g.total == 0 {
		close(g.idle)
	}
}

// Drain stops admitting new requests. In-flight requests keep running.
func (g *IntakeGate) Drain() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.draining {
		return
	}
	g.draining = true
	if g.total == 0 {
		close(g.idle)
	}
}

// DrainWait drains the gate and blocks until every in-flight request has
// released, or until ctx expires.
func (g *IntakeGate) DrainWait(ctx context.Context) error {
	g.Drain()
	select {
	case <-g.idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Draining reports whether the gate has stopped admitting requests.
func (g *IntakeGate) Draining() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.draining
}

// InFlight returns the number of requests currently admitted.
func (g *IntakeGate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total
}

// InFlightSessions returns how many distinct session identifiers currently
// have at least one admitted request.
func (g *IntakeGate) InFlightSessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}

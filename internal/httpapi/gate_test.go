package httpapi

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestIntakeGateCounts(t *testing.T) {
	g := NewIntakeGate()

	rel1, ok := g.Acquire("s1")
	if !ok {
		t.Fatal("Acquire should admit before drain")
	}
	rel2, _ := g.Acquire("s1")
	rel3, _ := g.Acquire("s2")

	if g.InFlight() != 3 {
		t.Errorf("InFlight() = %d, want 3", g.InFlight())
	}
	if g.InFlightSessions() != 2 {
		t.Errorf("InFlightSessions() = %d, want 2", g.InFlightSessions())
	}

	rel1()
	if g.InFlight() != 2 || g.InFlightSessions() != 2 {
		t.Errorf("after one release: InFlight() = %d, InFlightSessions() = %d", g.InFlight(), g.InFlightSessions())
	}

	rel2()
	if g.InFlightSessions() != 1 {
		t.Errorf("s1 fully released but InFlightSessions() = %d", g.InFlightSessions())
	}

	// A release function fires only once.
	rel2()
	if g.InFlight() != 1 {
		t.Errorf("double release changed InFlight() to %d, want 1", g.InFlight())
	}

	rel3()
	if g.InFlight() != 0 || g.InFlightSessions() != 0 {
		t.Errorf("gate not empty: InFlight() = %d, InFlightSessions() = %d", g.InFlight(), g.InFlightSessions())
	}
}

func TestIntakeGateDrainWait(t *testing.T) {
	g := NewIntakeGate()
	release, _ := g.Acquire("s1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := g.DrainWait(ctx); err == nil {
		t.Fatal("DrainWait should time out while a request is in flight")
	}

	if _, ok := g.Acquire("s2"); ok {
		t.Error("Acquire should be refused once draining")
	}

	release()
	if err := g.DrainWait(context.Background()); err != nil {
		t.Fatalf("DrainWait after release: %v", err)
	}
}

func TestIntakeGateEmptyDrain(t *testing.T) {
	g := NewIntakeGate()
	if err := g.DrainWait(context.Background()); err != nil {
		t.Fatalf("DrainWait on an idle gate: %v", err)
	}
	// Drain is idempotent.
	g.Drain()
	if !g.Draining() {
		t.Error("gate should stay draining")
	}
}

func TestDrainClosesHoneypotIntake(t *testing.T) {
	g := NewIntakeGate()
	h := newTestHandlerWithGate(t, g)
	apiAuth := map[string]string{"X-API-Key": testAPIKey}

	rec := doJSON(t, h, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz before drain = %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/honeypot", `{"sessionId":"g1","message":"hello"}`, apiAuth)
	if rec.Code != http.StatusOK {
		t.Fatalf("honeypot before drain = %d, want 200", rec.Code)
	}

	g.Drain()

	rec = doJSON(t, h, http.MethodPost, "/api/honeypot", `{"sessionId":"g1","message":"hello again"}`, apiAuth)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("honeypot during drain = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "shutting down") {
		t.Errorf("body = %q, want shutdown error", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz during drain = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "draining") {
		t.Errorf("readyz body = %q, want draining status", rec.Body.String())
	}

	// Liveness is unaffected by drain.
	rec = doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz during drain = %d, want 200", rec.Code)
	}
}

func TestHealthzReportsInFlight(t *testing.T) {
	g := NewIntakeGate()
	h := newTestHandlerWithGate(t, g)

	release, _ := g.Acquire("busy-session")
	defer release()

	rec := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"inFlightRequests":1`) {
		t.Errorf("healthz body = %q, want inFlightRequests 1", body)
	}
	if !strings.Contains(body, `"inFlightSessions":1`) {
		t.Errorf("healthz body = %q, want inFlightSessions 1", body)
	}
}

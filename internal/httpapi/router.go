package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lurelabs/lure/internal/engine"
	"github.com/lurelabs/lure/internal/eventlog"
	"github.com/lurelabs/lure/internal/session"
)

type RouterConfig struct {
	// API key for the honeypot endpoint (X-API-Key header)
	APIKey string

	// JWT for operator endpoints
	JWTSecret string
	JWTExpiry time.Duration
}

type Router struct {
	cfg      RouterConfig
	logger   *log.Logger
	engine   *engine.Engine
	store    *session.Store
	eventLog *eventlog.Logger
	gate     *IntakeGate
	mux      *http.ServeMux
}

func NewRouter(cfg RouterConfig, logger *log.Logger, e *engine.Engine, st *session.Store, eventLog *eventlog.Logger, gate *IntakeGate) http.Handler {
	r := &Router{
		cfg:      cfg,
		logger:   logger,
		engine:   e,
		store:    st,
		eventLog: eventLog,
		gate:     gate,
		mux:      http.NewServeMux(),
	}

	r.routes()
	return withSentryRecovery(withCORS(r.mux))
}

func (r *Router) routes() {
	// Health and readiness checks
	r.mux.HandleFunc("GET /healthz", r.handleHealthz)
	r.mux.HandleFunc("GET /readyz", r.handleReadyz)

	// Honeypot endpoint (API key). GET/HEAD answer the endpoint tester.
	r.mux.HandleFunc("POST /api/honeypot", r.withAPIKey(r.handleHoneypot))
	r.mux.HandleFunc("GET /api/honeypot", r.withAPIKey(r.handleHoneypotProbe))
	r.mux.HandleFunc("HEAD /api/honeypot", r.withAPIKey(r.handleHoneypotProbe))

	// Operator token exchange (API key -> JWT)
	r.mux.HandleFunc("POST /auth/token", r.handleIssueToken)

	// Operator endpoints (JWT)
	r.mux.HandleFunc("POST /api/v1/cleanup", r.withOperator(r.handleCleanup))
	r.mux.HandleFunc("GET /admin/sessions", r.withOperator(r.handleListSessions))
	r.mux.HandleFunc("POST /admin/sessions/{id}/terminate", r.withOperator(r.handleTerminateSession))
	r.mux.HandleFunc("GET /admin/events", r.withOperator(r.handleRecentEvents))

	// Live event feed (JWT via query parameter, websocket)
	r.mux.HandleFunc("GET /ws/events", r.handleEventsWS)
}

func (r *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"activeSessions":   r.engine.ActiveSessions(),
		"inFlightRequests": r.gate.InFlight(),
		"inFlightSessions": r.gate.InFlightSessions(),
	})
}

// handleReadyz reports readiness for load balancers. Once draining has
// started the process should receive no new traffic.
func (r *Router) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if r.gate.Draining() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "draining"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-API-Key")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// captureError sends an error to Sentry with request context
func captureError(req *http.Request, err error, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetExtra("message", msg)
		sentry.CaptureException(err)
	})
}

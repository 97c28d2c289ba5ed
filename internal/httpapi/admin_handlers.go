package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/lurelabs/lure/internal/engine"
)

func (r *Router) handleCleanup(w http.ResponseWriter, req *http.Request) {
	// Optional ?ttl=30m overrides the configured idle timeout for this sweep.
	ttl := time.Duration(0)
	if raw := req.URL.Query().Get("ttl"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, `{"error": "invalid ttl"}`, http.StatusBadRequest)
			return
		}
		ttl = parsed
	}

	removed := r.engine.Cleanup(ttl)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "success",
		"removed":        removed,
		"activeSessions": r.engine.ActiveSessions(),
	})
}

func (r *Router) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, r.store.Snapshots())
}

func (r *Router) handleTerminateSession(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	if id == "" {
		http.Error(w, `{"error": "missing id"}`, http.StatusBadRequest)
		return
	}

	rep, err := r.engine.Terminate(id)
	switch {
	case errors.Is(err, engine.ErrUnknownSession):
		http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
		return
	case errors.Is(err, engine.ErrSessionTerminated):
		http.Error(w, `{"error": "session already terminated"}`, http.StatusConflict)
		return
	case err != nil:
		captureError(req, err, "session termination failed")
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"status": "success", "reported": rep != nil}
	if rep != nil {
		resp["reportId"] = rep.ReportID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (r *Router) handleRecentEvents(w http.ResponseWriter, req *http.Request) {
	n := 100
	if raw := req.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, `{"error": "invalid limit"}`, http.StatusBadRequest)
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, r.eventLog.Recent(n))
}

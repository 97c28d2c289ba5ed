package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// handleEventsWS streams engagement events to an operator over a websocket.
// Browsers cannot set an Authorization header on websocket handshakes, so
// the operator token is passed as a query parameter instead.
func (r *Router) handleEventsWS(w http.ResponseWriter, req *http.Request) {
	token := req.URL.Query().Get("token")
	if !r.validOperatorToken(token) {
		http.Error(w, `{"error": "invalid token"}`, http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Printf("events_ws: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events := r.eventLog.Subscribe()
	defer r.eventLog.Unsubscribe(events)

	r.logger.Printf("events_ws: operator connected from %s", req.RemoteAddr)

	// Discard inbound frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-req.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				r.logger.Printf("events_ws: write failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

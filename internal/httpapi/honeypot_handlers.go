package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lurelabs/lure/internal/engine"
)

// honeypotRequest is the inbound payload. The message field accepts either
// a plain string or an object with a text field, because upstream senders
// use both shapes.
type honeypotRequest struct {
	SessionID string       `json:"sessionId"`
	Message   messageField `json:"message"`
}

type messageField struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func (m *messageField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Sender = "scammer"
		m.Text = s
		return nil
	}

	type alias messageField
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*m = messageField(obj)
	return nil
}

// honeypotResponse is the full response to the sender side. Detection and
// intelligence stay internal: only the reply crosses the wire.
type honeypotResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

func (r *Router) handleHoneypot(w http.ResponseWriter, req *http.Request) {
	var body honeypotRequest
	if req.Body != nil {
		// An empty or malformed body is answered with a generic greeting so
		// endpoint testers see a live service.
		_ = json.NewDecoder(req.Body).Decode(&body)
	}

	release, ok := r.gate.Acquire(body.SessionID)
	if !ok {
		http.Error(w, `{"error": "shutting down"}`, http.StatusServiceUnavailable)
		return
	}
	defer release()

	if body.SessionID == "" || body.Message.Text == "" {
		writeJSON(w, http.StatusOK, honeypotResponse{
			Status: "success",
			Reply:  "Hello. How can I help you?",
		})
		return
	}

	out, err := r.engine.HandleMessage(req.Context(), body.SessionID, body.Message.Text)
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		http.Error(w, `{"error": "invalid message text"}`, http.StatusBadRequest)
		return
	case errors.Is(err, engine.ErrSessionTerminated):
		http.Error(w, `{"error": "session already terminated"}`, http.StatusConflict)
		return
	case err != nil:
		captureError(req, err, "honeypot message handling failed")
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, honeypotResponse{
		Status: "success",
		Reply:  out.Reply,
	})
}

func (r *Router) handleHoneypotProbe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, honeypotResponse{
		Status: "success",
		Reply:  "Honeypot API is active",
	})
}

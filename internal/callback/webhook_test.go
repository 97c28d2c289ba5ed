package callback

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lurelabs/lure/internal/engine"
	"github.com/lurelabs/lure/internal/intel"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func sampleReport() *engine.Report {
	return &engine.Report{
		ReportID:               "r-1",
		SessionID:              "s-1",
		ScamDetected:           true,
		TotalMessagesExchanged: 7,
		ExtractedIntelligence: intel.Record{
			UPIIDs: []string{"winner@paytm"},
		},
		AgentNotes:  "Detected fake_prize attempt. Engaged for 7 messages. Extracted 1 intelligence items.",
		CompletedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhook_Deliver(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, 5*time.Second, testLogger())
	if err := w.Deliver(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if got["sessionId"] != "s-1" {
		t.Errorf("sessionId = %v, want s-1", got["sessionId"])
	}
	if got["scamDetected"] != true {
		t.Errorf("scamDetected = %v, want true", got["scamDetected"])
	}
	if got["totalMessagesExchanged"] != float64(7) {
		t.Errorf("totalMessagesExchanged = %v, want 7", got["totalMessagesExchanged"])
	}
}

func TestWebhook_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, 5*time.Second, testLogger())
	if err := w.Deliver(context.Background(), sampleReport()); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestWebhook_DisabledWhenUnconfigured(t *testing.T) {
	w := NewWebhook("", 0, testLogger())
	if w.Enabled() {
		t.Error("empty URL should disable the sink")
	}
	if err := w.Deliver(context.Background(), sampleReport()); err != nil {
		t.Errorf("disabled sink should silently skip, got %v", err)
	}
}

func TestWebhook_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, 5*time.Second, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.Deliver(ctx, sampleReport()); err == nil {
		t.Fatal("expected timeout error")
	}
}

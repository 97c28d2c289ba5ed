package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/lurelabs/lure/internal/engine"
)

// Webhook posts finished reports to the configured callback URL. If the URL
// is empty, delivery is silently skipped. Delivery failures are the sink's
// problem to report, never the engine's problem to retry.
type Webhook struct {
	url    string
	logger *log.Logger
	client *http.Client
}

// NewWebhook creates a new report sink. timeout bounds the whole request.
func NewWebhook(url string, timeout time.Duration, logger *log.Logger) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		url:    url,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// Enabled returns true if the callback URL is configured.
func (w *Webhook) Enabled() bool {
	return w.url != ""
}

// Deliver posts the report as JSON. A non-2xx status is an error; callers
// treat any error as log-only.
func (w *Webhook) Deliver(ctx context.Context, rep *engine.Report) error {
	if !w.Enabled() {
		return nil
	}

	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}

	w.logger.Printf("callback: report %s for session %s delivered", rep.ReportID, rep.SessionID)
	return nil
}

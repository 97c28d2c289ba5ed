package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lurelabs/lure/internal/intel"
	"github.com/lurelabs/lure/internal/session"
)

// Report is the final summary handed to the callback sink when a session
// terminates with sufficient evidence. Built once, immutable afterwards.
type Report struct {
	ReportID               string       `json:"reportId"`
	SessionID              string       `json:"sessionId"`
	ScamDetected           bool         `json:"scamDetected"`
	TotalMessagesExchanged int          `json:"totalMessagesExchanged"`
	ExtractedIntelligence  intel.Record `json:"extractedIntelligence"`
	AgentNotes             string       `json:"agentNotes"`
	CompletedAt            time.Time    `json:"completedAt"`
}

// buildReport snapshots the session into a report. Caller holds the session
// lock; the record is deep-copied so the report cannot alias live state.
func buildReport(s *session.Session, now time.Time) *Report {
	return &Report{
		ReportID:               uuid.NewString(),
		SessionID:              s.ID,
		ScamDetected:           len(s.Intents) > 0,
		TotalMessagesExchanged: s.MessageCount,
		ExtractedIntelligence:  s.Intel.Clone(),
		AgentNotes:             agentNotes(s),
		CompletedAt:            now,
	}
}

func agentNotes(s *session.Session) string {
	labels := make([]string, 0, len(s.Intents))
	for _, in := range s.Intents {
		labels = append(labels, string(in))
	}
	kind := "generic scam"
	if len(labels) > 0 {
		kind = strings.Join(labels, ", ")
	}
	return fmt.Sprintf("Detected %s attempt. Engaged for %d messages. Extracted %d intelligence items.",
		kind, s.MessageCount, s.Intel.Count())
}

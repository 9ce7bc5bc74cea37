package domain

import "time"

// EventType names a ledger event published to downstream consumers.
type EventType string

const (
	EventAccrualRunCompleted   EventType = "accrual_run.completed"
	EventDebtSweepCompleted    EventType = "debt_sweep.completed"
	EventDebtCaseTransitioned  EventType = "debt_case.transitioned"
	EventCheckClosingCreated   EventType = "check_closing.created"
	EventCheckClosingConfirmed EventType = "check_closing.confirmed"
	EventCheckClosingCancelled EventType = "check_closing.cancelled"
	EventStatementImported     EventType = "bank_statement.imported"
)

// LedgerEvent is the envelope published for every event.
type LedgerEvent struct {
	EventID    string         `json:"eventID"`
	Type       EventType      `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Actor      string         `json:"actor"`
	SubjectID  string         `json:"subjectID"`
	Payload    map[string]any `json:"payload,omitempty"`
}

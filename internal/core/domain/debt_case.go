package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtCaseStatus is the state of a debt case.
type DebtCaseStatus string

const (
	CaseMonitoring  DebtCaseStatus = "MONITORING"
	CaseWarningSent DebtCaseStatus = "WARNING_SENT"
	CasePreLegal    DebtCaseStatus = "PRE_LEGAL"
	CaseLegalAction DebtCaseStatus = "LEGAL_ACTION"
	CaseClosed      DebtCaseStatus = "CLOSED"
)

// Closed is terminal and reachable from every other state.
var debtCaseTransitions = map[DebtCaseStatus][]DebtCaseStatus{
	CaseMonitoring:  {CaseWarningSent, CaseClosed},
	CaseWarningSent: {CasePreLegal, CaseClosed},
	CasePreLegal:    {CaseLegalAction, CaseClosed},
	CaseLegalAction: {CaseClosed},
	CaseClosed:      {},
}

func (s DebtCaseStatus) IsValid() bool {
	_, ok := debtCaseTransitions[s]
	return ok
}

// CanTransitionTo reports whether target is directly reachable from s.
func (s DebtCaseStatus) CanTransitionTo(target DebtCaseStatus) bool {
	for _, next := range debtCaseTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s DebtCaseStatus) IsTerminal() bool {
	return s == CaseClosed
}

// DebtCaseHistoryEntry is one auditable action on a case. FromStatus equals ToStatus for notes
// and penalties.
type DebtCaseHistoryEntry struct {
	EntryID    string         `json:"entryID"`
	CaseID     string         `json:"caseID"`
	At         time.Time      `json:"at"`
	Actor      string         `json:"actor"`
	FromStatus DebtCaseStatus `json:"fromStatus"`
	ToStatus   DebtCaseStatus `json:"toStatus"`
	Action     string         `json:"action"`
}

// DebtCase tracks the overdue balance of one account.
type DebtCase struct {
	CaseID      string                 `json:"caseID"`
	AccountID   string                 `json:"accountID"`
	DebtAmount  decimal.Decimal        `json:"debtAmount"` // abs(balance) at the last update
	DebtAgeDays int                    `json:"debtAgeDays"`
	Status      DebtCaseStatus         `json:"status"`
	OpenedAt    time.Time              `json:"openedAt"`
	ClosedAt    *time.Time             `json:"closedAt,omitempty"`
	History     []DebtCaseHistoryEntry `json:"history,omitempty"`
	AuditFields
}

// Penalty is the daily late charge applied to an account.
type Penalty struct {
	PenaltyID   string          `json:"penaltyID"`
	AccountID   string          `json:"accountID"`
	CaseID      string          `json:"caseID"`
	PenaltyDate time.Time       `json:"penaltyDate"`
	BaseDebt    decimal.Decimal `json:"baseDebt"`
	DaysOver    int             `json:"daysOver"` // days overdue beyond the grace period
	RatePercent decimal.Decimal `json:"ratePercent"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   string          `json:"createdBy"`
}

// DebtPolicy holds the thresholds that drive case creation, escalation and penalties.
type DebtPolicy struct {
	GracePeriodDays  int
	MinDebtForAction decimal.Decimal
}

// SweepResult summarizes a daily debt sweep.
type SweepResult struct {
	Day              string           `json:"day"`
	CasesOpened      []string         `json:"casesOpened"`
	CasesEscalated   []string         `json:"casesEscalated"`
	CasesClosed      []string         `json:"casesClosed"`
	Penalties        []Penalty        `json:"penalties"`
	PenaltiesSkipped []string         `json:"penaltiesSkipped"` // already applied today
	Failures         []AccountFailure `json:"failures"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtCase is a row of the debt_cases table.
type DebtCase struct {
	CaseID      string          `db:"case_id"`
	AccountID   string          `db:"account_id"`
	DebtAmount  decimal.Decimal `db:"debt_amount"`
	DebtAgeDays int             `db:"debt_age_days"`
	Status      string          `db:"status"`
	OpenedAt    time.Time       `db:"opened_at"`
	ClosedAt    *time.Time      `db:"closed_at"`
	AuditFields
}

// DebtCaseHistory is a row of the debt_case_history table.
type DebtCaseHistory struct {
	EntryID    string    `db:"entry_id"`
	CaseID     string    `db:"case_id"`
	At         time.Time `db:"at"`
	Actor      string    `db:"actor"`
	FromStatus string    `db:"from_status"`
	ToStatus   string    `db:"to_status"`
	Action     string    `db:"action"`
}

// Penalty is a row of the penalties table.
type Penalty struct {
	PenaltyID   string          `db:"penalty_id"`
	AccountID   string          `db:"account_id"`
	CaseID      string          `db:"case_id"`
	PenaltyDate time.Time       `db:"penalty_date"`
	BaseDebt    decimal.Decimal `db:"base_debt"`
	DaysOver    int             `db:"days_over"`
	RatePercent decimal.Decimal `db:"rate_percent"`
	Amount      decimal.Decimal `db:"amount"`
	CreatedAt   time.Time       `db:"created_at"`
	CreatedBy   string          `db:"created_by"`
}

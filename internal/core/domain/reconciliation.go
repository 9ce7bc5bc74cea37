package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchStatus is the reconciliation state of a bank statement line.
type MatchStatus string

const (
	Unmatched MatchStatus = "UNMATCHED"
	Matched   MatchStatus = "MATCHED"
	Manual    MatchStatus = "MANUAL"
)

func (s MatchStatus) IsValid() bool {
	return s == Unmatched || s == Matched || s == Manual
}

// CanAdvanceTo reports whether the status may move to target. Status only moves forward.
func (s MatchStatus) CanAdvanceTo(target MatchStatus) bool {
	return s == Unmatched && (target == Matched || target == Manual)
}

// BankStatement is one imported statement file.
type BankStatement struct {
	StatementID string    `json:"statementID"`
	SourceBank  string    `json:"sourceBank"`
	FileName    string    `json:"fileName"`
	Fingerprint string    `json:"fingerprint"`
	RowCount    int       `json:"rowCount"`
	ArchiveKey  string    `json:"archiveKey,omitempty"`
	ImportedAt  time.Time `json:"importedAt"`
	ImportedBy  string    `json:"importedBy"`
}

// BankStatementTransaction is one line of a bank statement.
type BankStatementTransaction struct {
	TransactionID string          `json:"transactionID"`
	StatementID   string          `json:"statementID"`
	LineNumber    int             `json:"lineNumber"`
	TxnDate       time.Time       `json:"txnDate"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	SourceBank    string          `json:"sourceBank"`
	Status        MatchStatus     `json:"status"`
	AccountID     *string         `json:"accountID,omitempty"`
	PaymentID     *string         `json:"paymentID,omitempty"`
	MatchedAt     *time.Time      `json:"matchedAt,omitempty"`
	MatchedBy     *string         `json:"matchedBy,omitempty"`
}

// StatementRow is a parsed but not yet persisted statement line.
type StatementRow struct {
	Line        int
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// MatchCandidate is an account/payment pair that satisfies the auto-match rule.
type MatchCandidate struct {
	AccountID       string `json:"accountID"`
	PersonalAccount string `json:"personalAccount"`
	FullName        string `json:"fullName"`
	PaymentID       string `json:"paymentID"`
}

// AutoMatch is a transaction that resolved to exactly one candidate.
type AutoMatch struct {
	TransactionID string         `json:"transactionID"`
	Candidate     MatchCandidate `json:"candidate"`
}

// AmbiguousTransaction is a transaction left for manual resolution.
type AmbiguousTransaction struct {
	TransactionID string           `json:"transactionID"`
	Candidates    []MatchCandidate `json:"candidates"`
}

// ReconciliationResult is the outcome of one matching pass.
type ReconciliationResult struct {
	Matched        []AutoMatch            `json:"matched"`
	Ambiguous      []AmbiguousTransaction `json:"ambiguous"`
	StillUnmatched []string               `json:"stillUnmatched"` // includes the ambiguous ones
}

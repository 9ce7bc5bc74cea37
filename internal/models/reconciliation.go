package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatement is a row of the bank_statements table.
type BankStatement struct {
	StatementID string    `db:"statement_id"`
	SourceBank  string    `db:"source_bank"`
	FileName    string    `db:"file_name"`
	Fingerprint string    `db:"fingerprint"`
	RowCount    int       `db:"row_count"`
	ArchiveKey  *string   `db:"archive_key"`
	ImportedAt  time.Time `db:"imported_at"`
	ImportedBy  string    `db:"imported_by"`
}

// BankTransaction is a row of the bank_transactions table.
type BankTransaction struct {
	TransactionID string          `db:"transaction_id"`
	StatementID   string          `db:"statement_id"`
	LineNumber    int             `db:"line_number"`
	TxnDate       time.Time       `db:"txn_date"`
	Amount        decimal.Decimal `db:"amount"`
	Description   string          `db:"description"`
	SourceBank    string          `db:"source_bank"`
	Status        string          `db:"status"`
	AccountID     *string         `db:"account_id"`
	PaymentID     *string         `db:"payment_id"`
	MatchedAt     *time.Time      `db:"matched_at"`
	MatchedBy     *string         `db:"matched_by"`
}

// CheckClosing is a row of the check_closings table.
type CheckClosing struct {
	ClosingID    string          `db:"closing_id"`
	ClosingDate  time.Time       `db:"closing_date"`
	ControllerID string          `db:"controller_id"`
	PaymentIDs   []string        `db:"payment_ids"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	Status       string          `db:"status"`
	Notes        *string         `db:"notes"`
	CancelReason *string         `db:"cancel_reason"`
	ClosedBy     *string         `db:"closed_by"`
	AuditFields
}

package dto

import "github.com/SscSPs/water_billing_ledger/internal/core/domain"

// ImportSheetRequest imports statement rows from the configured spreadsheet.
type ImportSheetRequest struct {
	SourceBank string `json:"sourceBank" binding:"required,max=64"`
	Range      string `json:"range" binding:"required"` // A1 notation, e.g. "Statement!A2:C"
}

// ImportStatementResponse reports an imported statement.
type ImportStatementResponse struct {
	Statement    domain.BankStatement              `json:"statement"`
	Transactions []domain.BankStatementTransaction `json:"transactions"`
}

// ManualMatchRequest assigns a statement line to an account. Without PaymentID a BANK payment
// is recorded for the line amount.
type ManualMatchRequest struct {
	AccountID string  `json:"accountID" binding:"required"`
	PaymentID *string `json:"paymentID"`
}

// ListBankTransactionsParams defines query parameters for listing statement lines.
type ListBankTransactionsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=UNMATCHED MATCHED MANUAL"`
}

// ListBankTransactionsResponse wraps the list of statement lines.
type ListBankTransactionsResponse struct {
	Transactions []domain.BankStatementTransaction `json:"transactions"`
}

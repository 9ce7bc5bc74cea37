package dto

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AdjustmentRequest defines a manual balance correction. Positive amounts credit the account.
type AdjustmentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Memo   string          `json:"memo" binding:"required,max=500"`
}

// ListLedgerEntriesParams defines query parameters for listing ledger entries.
type ListLedgerEntriesParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListLedgerEntriesResponse is one page of an account's ledger.
type ListLedgerEntriesResponse struct {
	Entries   []domain.LedgerEntry `json:"entries"`
	NextToken *string              `json:"nextToken,omitempty"`
}

package services

import (
	"context"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerWriterSvc is the single way to move an account balance.
type LedgerWriterSvc interface {
	// ApplyDelta posts one balance change with its explaining record atomically.
	ApplyDelta(ctx context.Context, posting domain.Posting) (*domain.LedgerEntry, error)

	// Adjust posts a manual correction with a mandatory memo.
	Adjust(ctx context.Context, accountID string, amount decimal.Decimal, memo string, actor string) (*domain.LedgerEntry, error)
}

// LedgerReaderSvc defines read operations for balances and ledger history
type LedgerReaderSvc interface {
	// GetBalance returns the account with its current balance and overdue marker.
	GetBalance(ctx context.Context, accountID string) (*domain.Account, error)

	// ListEntries returns one page of the account ledger, newest first.
	ListEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}

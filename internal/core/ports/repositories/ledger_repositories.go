package repositories

import (
	"context"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// LedgerRepositoryFacade is the only writer of account balances.
type LedgerRepositoryFacade interface {
	// ApplyPosting locks the account, persists the attached record, moves the balance and appends
	// the ledger entry, all in one database transaction.
	ApplyPosting(ctx context.Context, posting domain.Posting) (*domain.LedgerEntry, error)

	// ListEntries returns one page of an account's ledger, newest first, and the token of the next page.
	ListEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

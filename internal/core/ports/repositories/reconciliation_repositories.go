package repositories

import (
	"context"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// BankStatementRepositoryFacade defines persistence for imported statements and their lines
type BankStatementRepositoryFacade interface {
	// SaveStatement inserts the statement and all of its lines in one transaction.
	// A statement with a known fingerprint fails with ErrDuplicate.
	SaveStatement(ctx context.Context, statement domain.BankStatement, txns []domain.BankStatementTransaction) error

	FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankStatementTransaction, error)

	// ListTransactions returns lines in status, or all lines when status is empty, oldest first.
	ListTransactions(ctx context.Context, status domain.MatchStatus) ([]domain.BankStatementTransaction, error)

	// LinkTransaction moves an UNMATCHED line to match.Status and links it to an account and an
	// existing payment. It fails with ErrConflict when the line is no longer UNMATCHED or the
	// payment is already linked to another line.
	LinkTransaction(ctx context.Context, match domain.BankMatch, accountID string, paymentID string) error
}

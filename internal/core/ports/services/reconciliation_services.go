package services

import (
	"context"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// StatementImportSvc ingests bank statements.
type StatementImportSvc interface {
	// ImportStatement parses date,amount,description rows, archives the raw file and stores the
	// lines as UNMATCHED. A file imported before fails with ErrDuplicate.
	ImportStatement(ctx context.Context, sourceBank string, fileName string, data []byte, actor string) (*domain.BankStatement, []domain.BankStatementTransaction, error)
	// ImportStatementFromSheet reads the same columns from a spreadsheet range.
	ImportStatementFromSheet(ctx context.Context, sourceBank string, readRange string, actor string) (*domain.BankStatement, []domain.BankStatementTransaction, error)
}

// ReconciliationSvc matches statement lines to payments.
type ReconciliationSvc interface {
	// Reconcile runs one auto-match pass over every UNMATCHED line.
	Reconcile(ctx context.Context, actor string) (*domain.ReconciliationResult, error)
	// ManualMatch assigns a line to an account, linking paymentID or, when nil, recording a new
	// BANK payment for the line amount.
	ManualMatch(ctx context.Context, transactionID string, accountID string, paymentID *string, actor string) (*domain.BankStatementTransaction, error)
	ListTransactions(ctx context.Context, status domain.MatchStatus) ([]domain.BankStatementTransaction, error)
}

// ReconciliationSvcFacade combines all reconciliation service interfaces
type ReconciliationSvcFacade interface {
	StatementImportSvc
	ReconciliationSvc
}

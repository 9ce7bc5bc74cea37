package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByPersonalAccount retrieves an account by the number printed on its bills.
	FindAccountByPersonalAccount(ctx context.Context, personalAccount string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a page of accounts, optionally filtered by status.
	ListAccounts(ctx context.Context, status domain.AccountStatus, limit int, offset int) ([]domain.Account, error)

	// ListActiveAccounts retrieves every account that takes part in billing.
	ListActiveAccounts(ctx context.Context) ([]domain.Account, error)

	// ListAccountsInDebt retrieves every non-archived account with a negative balance.
	ListAccountsInDebt(ctx context.Context) ([]domain.Account, error)

	// NextPersonalAccountSequence returns the next free 4-digit sequence for a YYMM prefix.
	NextPersonalAccountSequence(ctx context.Context, prefix string) (int, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SaveAccounts persists a batch of new accounts in one transaction.
	SaveAccounts(ctx context.Context, accounts []domain.Account) error

	// UpdateAccount updates an existing account's details. Balance is never touched here.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// ArchiveAccount marks an account as archived.
	ArchiveAccount(ctx context.Context, accountID string, actor string, now time.Time) error
}

// AccountTransactionSupport defines operations used inside a ledger posting transaction
type AccountTransactionSupport interface {
	// FindAccountForUpdate selects an account and locks its row for the rest of the transaction.
	FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// UpdateBalanceInTx writes the new balance and overdue-since marker.
	UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal, overdueSince *time.Time, actor string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

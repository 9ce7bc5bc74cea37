package services

import (
	"context"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a page of accounts, optionally filtered by status.
	ListAccounts(ctx context.Context, status domain.AccountStatus, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount registers a new abonent with a zero balance.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details. The balance is never touched.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error)

	// ArchiveAccount marks an account as archived. Accounts are never deleted.
	ArchiveAccount(ctx context.Context, accountID string, actor string) error

	// ImportAccounts validates every row of an account list and commits them all in one transaction.
	ImportAccounts(ctx context.Context, data []byte, actor string) ([]domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}

package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DebtCaseReader defines read operations for debt cases
type DebtCaseReader interface {
	// FindCaseByID returns the case with its full history.
	FindCaseByID(ctx context.Context, caseID string) (*domain.DebtCase, error)

	// FindOpenCaseByAccount returns the non-closed case of an account, or ErrNotFound.
	FindOpenCaseByAccount(ctx context.Context, accountID string) (*domain.DebtCase, error)

	// ListCases returns cases in status, or all cases when status is empty. History is not loaded.
	ListCases(ctx context.Context, status domain.DebtCaseStatus) ([]domain.DebtCase, error)

	// ListOpenCases returns every non-closed case.
	ListOpenCases(ctx context.Context) ([]domain.DebtCase, error)

	// ListPenalties returns the penalties charged under a case, newest first.
	ListPenalties(ctx context.Context, caseID string) ([]domain.Penalty, error)
}

// DebtCaseWriter defines write operations for debt cases
type DebtCaseWriter interface {
	// SaveCase inserts a new case with its opening history entry. A second open case for the
	// same account fails with ErrDuplicate.
	SaveCase(ctx context.Context, debtCase domain.DebtCase, opening domain.DebtCaseHistoryEntry) error

	// TransitionCase moves a case from entry.FromStatus to entry.ToStatus and appends entry.
	// It fails with ErrConflict when the stored status is no longer entry.FromStatus.
	TransitionCase(ctx context.Context, caseID string, entry domain.DebtCaseHistoryEntry, closedAt *time.Time) error

	// AddHistory appends an entry without changing the status.
	AddHistory(ctx context.Context, entry domain.DebtCaseHistoryEntry) error

	// UpdateSnapshot refreshes the debt amount and age of an open case.
	UpdateSnapshot(ctx context.Context, caseID string, debtAmount decimal.Decimal, debtAgeDays int, actor string, now time.Time) error
}

// DebtCaseRepositoryFacade combines all debt-case repository interfaces
type DebtCaseRepositoryFacade interface {
	DebtCaseReader
	DebtCaseWriter
}

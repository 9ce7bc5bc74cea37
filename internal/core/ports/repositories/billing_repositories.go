package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// MeterReadingRepositoryFacade defines persistence for meter readings
type MeterReadingRepositoryFacade interface {
	SaveReading(ctx context.Context, reading domain.MeterReading) error

	// FindLatestReadingBefore returns the latest reading dated strictly before 'before', or ErrNotFound.
	FindLatestReadingBefore(ctx context.Context, accountID string, before time.Time) (*domain.MeterReading, error)

	// FindEarliestReadingAfter returns the earliest reading dated strictly after 'after', or ErrNotFound.
	FindEarliestReadingAfter(ctx context.Context, accountID string, after time.Time) (*domain.MeterReading, error)

	// FindLatestReadingInRange returns the latest reading dated in [from, to), or ErrNotFound.
	FindLatestReadingInRange(ctx context.Context, accountID string, from, to time.Time) (*domain.MeterReading, error)

	// ListReadings returns the readings of an account, newest first.
	ListReadings(ctx context.Context, accountID string) ([]domain.MeterReading, error)
}

// AccrualFilter narrows ListAccruals. Empty fields match everything.
type AccrualFilter struct {
	AccountID string
	Period    string
}

// AccrualRepositoryFacade defines read access to accruals. Accruals are written only by the ledger.
type AccrualRepositoryFacade interface {
	FindAccrualByID(ctx context.Context, accrualID string) (*domain.Accrual, error)

	// ListAccruals returns accruals matching filter, newest period first.
	ListAccruals(ctx context.Context, filter AccrualFilter) ([]domain.Accrual, error)

	// ListBilledAccountIDs returns the accounts that already have an accrual for period.
	ListBilledAccountIDs(ctx context.Context, period string) (map[string]bool, error)
}

// PaymentFilter narrows ListPayments. Zero fields match everything.
type PaymentFilter struct {
	AccountID    string
	ControllerID string
	From         *time.Time
	To           *time.Time
}

// PaymentRepositoryFacade defines read access to payments. Payments are written only by the ledger.
type PaymentRepositoryFacade interface {
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPayments returns payments matching filter, newest first.
	ListPayments(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error)

	// ListOpenPayments returns payments that no bank statement line is linked to yet.
	ListOpenPayments(ctx context.Context) ([]domain.Payment, error)
}

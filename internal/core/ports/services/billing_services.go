package services

import (
	"context"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
)

// MeterReadingSvcFacade records and lists meter readings.
type MeterReadingSvcFacade interface {
	// RecordReading rejects a value below the previous reading with ErrInvalidConsumption unless
	// the request sets ManualOverride.
	RecordReading(ctx context.Context, req dto.RecordReadingRequest, actor string) (*domain.MeterReading, error)
	ListReadings(ctx context.Context, accountID string) ([]domain.MeterReading, error)
}

// AccrualGeneratorSvc computes and posts monthly accruals.
type AccrualGeneratorSvc interface {
	// GenerateMonthlyAccruals bills every given active account not yet billed for period.
	// Per-account failures are collected in the result; the error is reserved for failures that
	// stop the whole batch.
	GenerateMonthlyAccruals(ctx context.Context, period domain.BillingPeriod, accounts []domain.Account, tariff domain.Tariff, actor string) (*domain.AccrualRunResult, error)

	// RunMonthlyAccruals loads the active tariff and the active accounts and generates the period.
	RunMonthlyAccruals(ctx context.Context, period domain.BillingPeriod, actor string) (*domain.AccrualRunResult, error)
}

// AccrualReaderSvc defines read operations for accruals
type AccrualReaderSvc interface {
	GetAccrual(ctx context.Context, accrualID string) (*domain.Accrual, error)
	ListAccruals(ctx context.Context, filter portsrepo.AccrualFilter) ([]domain.Accrual, error)
}

// AccrualSvcFacade combines all accrual-related service interfaces
type AccrualSvcFacade interface {
	AccrualGeneratorSvc
	AccrualReaderSvc
}

// PaymentSvcFacade records and lists payments.
type PaymentSvcFacade interface {
	// RecordPayment credits the account through the ledger.
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actor string) (*domain.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter portsrepo.PaymentFilter) ([]domain.Payment, error)
}

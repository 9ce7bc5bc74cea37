package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, status domain.AccountStatus, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ArchiveAccount(ctx context.Context, accountID string, actor string) error {
	args := m.Called(ctx, accountID, actor)
	return args.Error(0)
}
func (m *MockAccountService) ImportAccounts(ctx context.Context, data []byte, actor string) ([]domain.Account, error) {
	args := m.Called(ctx, data, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) ApplyDelta(ctx context.Context, posting domain.Posting) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, posting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockLedgerService) Adjust(ctx context.Context, accountID string, amount decimal.Decimal, memo string, actor string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID, amount, memo, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockLedgerService) GetBalance(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockLedgerService) ListEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var token *string
	if t := args.Get(1); t != nil {
		token = t.(*string)
	}
	if args.Get(0) == nil {
		return nil, token, args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), token, args.Error(2)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock DebtCaseService ---
type MockDebtCaseService struct {
	mock.Mock
}

func (m *MockDebtCaseService) RunDailySweep(ctx context.Context, day time.Time, actor string) (*domain.SweepResult, error) {
	args := m.Called(ctx, day, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepResult), args.Error(1)
}
func (m *MockDebtCaseService) Transition(ctx context.Context, caseID string, target domain.DebtCaseStatus, actor string, action string) (*domain.DebtCase, error) {
	args := m.Called(ctx, caseID, target, actor, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebtCase), args.Error(1)
}
func (m *MockDebtCaseService) AddNote(ctx context.Context, caseID string, actor string, action string) (*domain.DebtCase, error) {
	args := m.Called(ctx, caseID, actor, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebtCase), args.Error(1)
}
func (m *MockDebtCaseService) GetCase(ctx context.Context, caseID string) (*domain.DebtCase, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebtCase), args.Error(1)
}
func (m *MockDebtCaseService) ListCases(ctx context.Context, status domain.DebtCaseStatus) ([]domain.DebtCase, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DebtCase), args.Error(1)
}
func (m *MockDebtCaseService) ListPenalties(ctx context.Context, caseID string) ([]domain.Penalty, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Penalty), args.Error(1)
}

var _ portssvc.DebtCaseSvcFacade = (*MockDebtCaseService)(nil)

// --- Mock CheckClosingService ---
type MockCheckClosingService struct {
	mock.Mock
}

func (m *MockCheckClosingService) CreateCheckClosing(ctx context.Context, date time.Time, controllerID string, notes string, actor string) (*domain.CheckClosing, error) {
	args := m.Called(ctx, date, controllerID, notes, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckClosing), args.Error(1)
}
func (m *MockCheckClosingService) ConfirmCheckClosing(ctx context.Context, closingID string, actor string) (*domain.CheckClosing, error) {
	args := m.Called(ctx, closingID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckClosing), args.Error(1)
}
func (m *MockCheckClosingService) CancelCheckClosing(ctx context.Context, closingID string, reason string, actor string) (*domain.CheckClosing, error) {
	args := m.Called(ctx, closingID, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckClosing), args.Error(1)
}
func (m *MockCheckClosingService) GetCheckClosing(ctx context.Context, closingID string) (*domain.CheckClosing, error) {
	args := m.Called(ctx, closingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckClosing), args.Error(1)
}
func (m *MockCheckClosingService) ListCheckClosings(ctx context.Context, controllerID string, from, to time.Time) ([]domain.CheckClosing, error) {
	args := m.Called(ctx, controllerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckClosing), args.Error(1)
}

var _ portssvc.CheckClosingSvcFacade = (*MockCheckClosingService)(nil)

// --- Mock AccrualService ---
type MockAccrualService struct {
	mock.Mock
}

func (m *MockAccrualService) GenerateMonthlyAccruals(ctx context.Context, period domain.BillingPeriod, accounts []domain.Account, tariff domain.Tariff, actor string) (*domain.AccrualRunResult, error) {
	args := m.Called(ctx, period, accounts, tariff, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccrualRunResult), args.Error(1)
}
func (m *MockAccrualService) RunMonthlyAccruals(ctx context.Context, period domain.BillingPeriod, actor string) (*domain.AccrualRunResult, error) {
	args := m.Called(ctx, period, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccrualRunResult), args.Error(1)
}
func (m *MockAccrualService) GetAccrual(ctx context.Context, accrualID string) (*domain.Accrual, error) {
	args := m.Called(ctx, accrualID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Accrual), args.Error(1)
}
func (m *MockAccrualService) ListAccruals(ctx context.Context, filter portsrepo.AccrualFilter) ([]domain.Accrual, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Accrual), args.Error(1)
}

var _ portssvc.AccrualSvcFacade = (*MockAccrualService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actor string) (*domain.Payment, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) ListPayments(ctx context.Context, filter portsrepo.PaymentFilter) ([]domain.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) ImportStatement(ctx context.Context, sourceBank string, fileName string, data []byte, actor string) (*domain.BankStatement, []domain.BankStatementTransaction, error) {
	args := m.Called(ctx, sourceBank, fileName, data, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.BankStatement), args.Get(1).([]domain.BankStatementTransaction), args.Error(2)
}
func (m *MockReconciliationService) ImportStatementFromSheet(ctx context.Context, sourceBank string, readRange string, actor string) (*domain.BankStatement, []domain.BankStatementTransaction, error) {
	args := m.Called(ctx, sourceBank, readRange, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.BankStatement), args.Get(1).([]domain.BankStatementTransaction), args.Error(2)
}
func (m *MockReconciliationService) Reconcile(ctx context.Context, actor string) (*domain.ReconciliationResult, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationResult), args.Error(1)
}
func (m *MockReconciliationService) ManualMatch(ctx context.Context, transactionID string, accountID string, paymentID *string, actor string) (*domain.BankStatementTransaction, error) {
	args := m.Called(ctx, transactionID, accountID, paymentID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankStatementTransaction), args.Error(1)
}
func (m *MockReconciliationService) ListTransactions(ctx context.Context, status domain.MatchStatus) ([]domain.BankStatementTransaction, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankStatementTransaction), args.Error(1)
}

var _ portssvc.ReconciliationSvcFacade = (*MockReconciliationService)(nil)

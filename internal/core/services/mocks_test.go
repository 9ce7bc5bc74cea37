package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Account repository ---

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByPersonalAccount(ctx context.Context, personalAccount string) (*domain.Account, error) {
	args := m.Called(ctx, personalAccount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, status domain.AccountStatus, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsInDebt(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) NextPersonalAccountSequence(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) ArchiveAccount(ctx context.Context, accountID string, actor string, now time.Time) error {
	args := m.Called(ctx, accountID, actor, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal, overdueSince *time.Time, actor string, now time.Time) error {
	args := m.Called(ctx, tx, accountID, balance, overdueSince, actor, now)
	return args.Error(0)
}

// --- Tariff repository ---

type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) FindActiveTariff(ctx context.Context) (*domain.Tariff, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tariff), args.Error(1)
}

func (m *MockTariffRepository) FindTariffByID(ctx context.Context, tariffID string) (*domain.Tariff, error) {
	args := m.Called(ctx, tariffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tariff), args.Error(1)
}

func (m *MockTariffRepository) ListTariffs(ctx context.Context) ([]domain.Tariff, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tariff), args.Error(1)
}

func (m *MockTariffRepository) SaveTariffVersion(ctx context.Context, tariff domain.Tariff) (*domain.Tariff, error) {
	args := m.Called(ctx, tariff)
	if rf, ok := args.Get(0).(func(context.Context, domain.Tariff) *domain.Tariff); ok {
		return rf(ctx, tariff), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tariff), args.Error(1)
}

// --- Meter reading repository ---

type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) SaveReading(ctx context.Context, reading domain.MeterReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockReadingRepository) FindLatestReadingBefore(ctx context.Context, accountID string, before time.Time) (*domain.MeterReading, error) {
	args := m.Called(ctx, accountID, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeterReading), args.Error(1)
}

func (m *MockReadingRepository) FindEarliestReadingAfter(ctx context.Context, accountID string, after time.Time) (*domain.MeterReading, error) {
	args := m.Called(ctx, accountID, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeterReading), args.Error(1)
}

func (m *MockReadingRepository) FindLatestReadingInRange(ctx context.Context, accountID string, from, to time.Time) (*domain.MeterReading, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeterReading), args.Error(1)
}

func (m *MockReadingRepository) ListReadings(ctx context.Context, accountID string) ([]domain.MeterReading, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MeterReading), args.Error(1)
}

// --- Accrual repository ---

type MockAccrualRepository struct {
	mock.Mock
}

func (m *MockAccrualRepository) FindAccrualByID(ctx context.Context, accrualID string) (*domain.Accrual, error) {
	args := m.Called(ctx, accrualID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Accrual), args.Error(1)
}

func (m *MockAccrualRepository) ListAccruals(ctx context.Context, filter portsrepo.AccrualFilter) ([]domain.Accrual, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Accrual), args.Error(1)
}

func (m *MockAccrualRepository) ListBilledAccountIDs(ctx context.Context, period string) (map[string]bool, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

// --- Payment repository ---

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, filter portsrepo.PaymentFilter) ([]domain.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListOpenPayments(ctx context.Context) ([]domain.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// --- Ledger repository ---

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) ApplyPosting(ctx context.Context, posting domain.Posting) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, posting)
	if rf, ok := args.Get(0).(func(context.Context, domain.Posting) *domain.LedgerEntry); ok {
		return rf(ctx, posting), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), next, args.Error(2)
}

// --- Debt case repository ---

type MockDebtCaseRepository struct {
	mock.Mock
}

func (m *MockDebtCaseRepository) FindCaseByID(ctx context.Context, caseID string) (*domain.DebtCase, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebtCase), args.Error(1)
}

func (m *MockDebtCaseRepository) FindOpenCaseByAccount(ctx context.Context, accountID string) (*domain.DebtCase, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebtCase), args.Error(1)
}

func (m *MockDebtCaseRepository) ListCases(ctx context.Context, status domain.DebtCaseStatus) ([]domain.DebtCase, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DebtCase), args.Error(1)
}

func (m *MockDebtCaseRepository) ListOpenCases(ctx context.Context) ([]domain.DebtCase, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DebtCase), args.Error(1)
}

func (m *MockDebtCaseRepository) ListPenalties(ctx context.Context, caseID string) ([]domain.Penalty, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Penalty), args.Error(1)
}

func (m *MockDebtCaseRepository) SaveCase(ctx context.Context, debtCase domain.DebtCase, opening domain.DebtCaseHistoryEntry) error {
	args := m.Called(ctx, debtCase, opening)
	return args.Error(0)
}

func (m *MockDebtCaseRepository) TransitionCase(ctx context.Context, caseID string, entry domain.DebtCaseHistoryEntry, closedAt *time.Time) error {
	args := m.Called(ctx, caseID, entry, closedAt)
	return args.Error(0)
}

func (m *MockDebtCaseRepository) AddHistory(ctx context.Context, entry domain.DebtCaseHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDebtCaseRepository) UpdateSnapshot(ctx context.Context, caseID string, debtAmount decimal.Decimal, debtAgeDays int, actor string, now time.Time) error {
	args := m.Called(ctx, caseID, debtAmount, debtAgeDays, actor, now)
	return args.Error(0)
}

// --- Bank statement repository ---

type MockStatementRepository struct {
	mock.Mock
}

func (m *MockStatementRepository) SaveStatement(ctx context.Context, statement domain.BankStatement, txns []domain.BankStatementTransaction) error {
	args := m.Called(ctx, statement, txns)
	return args.Error(0)
}

func (m *MockStatementRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankStatementTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankStatementTransaction), args.Error(1)
}

func (m *MockStatementRepository) ListTransactions(ctx context.Context, status domain.MatchStatus) ([]domain.BankStatementTransaction, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankStatementTransaction), args.Error(1)
}

func (m *MockStatementRepository) LinkTransaction(ctx context.Context, match domain.BankMatch, accountID string, paymentID string) error {
	args := m.Called(ctx, match, accountID, paymentID)
	return args.Error(0)
}

// --- Check closing repository ---

type MockCheckClosingRepository struct {
	mock.Mock
}

func (m *MockCheckClosingRepository) CreateClosing(ctx context.Context, closing domain.CheckClosing) (*domain.CheckClosing, error) {
	args := m.Called(ctx, closing)
	if rf, ok := args.Get(0).(func(context.Context, domain.CheckClosing) *domain.CheckClosing); ok {
		return rf(ctx, closing), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckClosing), args.Error(1)
}

func (m *MockCheckClosingRepository) ConfirmClosing(ctx context.Context, closingID string, actor string, now time.Time) error {
	args := m.Called(ctx, closingID, actor, now)
	return args.Error(0)
}

func (m *MockCheckClosingRepository) CancelClosing(ctx context.Context, closingID string, reason string, actor string, now time.Time) error {
	args := m.Called(ctx, closingID, reason, actor, now)
	return args.Error(0)
}

func (m *MockCheckClosingRepository) FindClosingByID(ctx context.Context, closingID string) (*domain.CheckClosing, error) {
	args := m.Called(ctx, closingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckClosing), args.Error(1)
}

func (m *MockCheckClosingRepository) ListClosings(ctx context.Context, controllerID string, from, to time.Time) ([]domain.CheckClosing, error) {
	args := m.Called(ctx, controllerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckClosing), args.Error(1)
}

// --- Ledger writer used by the batch services ---

type MockLedgerWriter struct {
	mock.Mock
}

func (m *MockLedgerWriter) ApplyDelta(ctx context.Context, posting domain.Posting) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, posting)
	if rf, ok := args.Get(0).(func(context.Context, domain.Posting) *domain.LedgerEntry); ok {
		return rf(ctx, posting), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerWriter) Adjust(ctx context.Context, accountID string, amount decimal.Decimal, memo string, actor string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID, amount, memo, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

// --- Infrastructure ---

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}

type MockStatementArchive struct {
	mock.Mock
}

func (m *MockStatementArchive) Store(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

type MockSheetReader struct {
	mock.Mock
}

func (m *MockSheetReader) ReadRange(ctx context.Context, readRange string) ([][]string, error) {
	args := m.Called(ctx, readRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// entryFor echoes a posting back as the ledger entry the repository would have written.
func entryFor(p domain.Posting, balanceAfter decimal.Decimal) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		EntryID:      p.EntryID,
		AccountID:    p.AccountID,
		Reason:       p.Reason,
		Amount:       p.Delta,
		BalanceAfter: balanceAfter,
		ReferenceID:  p.ReferenceID,
		Memo:         p.Memo,
		CreatedAt:    p.At,
		CreatedBy:    p.Actor,
	}
}
